package ranking

import "sort"

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	// Anchor on the smaller root so component ids stay stable.
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}

// connectivityReport builds the opponent graph over the master roster:
// one vertex per roster team, one edge per distinct pair of roster
// teams that met inside the window. Component ids are the smallest
// member's position in key order, so output is stable across runs.
func connectivityReport(rosterKeys []string, edges map[[2]string]struct{}) []ConnectivityRow {
	idx := make(map[string]int, len(rosterKeys))
	for i, k := range rosterKeys {
		idx[k] = i
	}

	uf := newUnionFind(len(rosterKeys))
	degree := make([]map[string]struct{}, len(rosterKeys))
	for e := range edges {
		a, okA := idx[e[0]]
		b, okB := idx[e[1]]
		if !okA || !okB || a == b {
			continue
		}
		uf.union(a, b)
		if degree[a] == nil {
			degree[a] = make(map[string]struct{})
		}
		if degree[b] == nil {
			degree[b] = make(map[string]struct{})
		}
		degree[a][e[1]] = struct{}{}
		degree[b][e[0]] = struct{}{}
	}

	componentID := make([]int, len(rosterKeys))
	componentSize := make(map[int]int, len(rosterKeys))
	for i := range rosterKeys {
		root := uf.find(i)
		componentID[i] = root
		componentSize[root]++
	}

	rows := make([]ConnectivityRow, 0, len(rosterKeys))
	for i, key := range rosterKeys {
		rows = append(rows, ConnectivityRow{
			TeamKey:       key,
			ComponentID:   componentID[i],
			ComponentSize: componentSize[componentID[i]],
			Degree:        len(degree[i]),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TeamKey < rows[j].TeamKey })
	return rows
}
