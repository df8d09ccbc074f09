package ranking

import (
	"sort"
	"time"
)

// view is one directed observation: the owning team saw opponent opp
// (an index into the run's team table) on date.
type view struct {
	opp        int
	gf, ga     int
	date       time.Time
	ageContext string
	crossState bool
}

// sortViews orders a team's history most recent first. Date ties fall
// back to the opponent key and then scores so the cap is stable across
// runs.
func sortViews(vs []view, keyOf func(int) string) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if !a.date.Equal(b.date) {
			return a.date.After(b.date)
		}
		if ka, kb := keyOf(a.opp), keyOf(b.opp); ka != kb {
			return ka < kb
		}
		if a.gf != b.gf {
			return a.gf < b.gf
		}
		return a.ga < b.ga
	})
}

// taperedWeights assigns each of n views (most recent first) the
// per-slot weight of its segment, then normalizes the vector to sum to
// one. A full 30-view history lands exactly on the segment shares; a
// short history degrades toward uniform weighting.
func taperedWeights(cfg Config, n int) []float64 {
	if n <= 0 {
		return nil
	}

	w := make([]float64, n)
	total := 0.0
	for i := 0; i < n; i++ {
		seg := segmentOf(cfg, i)
		per := cfg.SegmentShares[seg] / float64(cfg.SegmentSlots[seg])
		w[i] = per
		total += per
	}
	for i := range w {
		w[i] /= total
	}
	return w
}

func segmentOf(cfg Config, i int) int {
	if i < cfg.SegmentSlots[0] {
		return 0
	}
	if i < cfg.SegmentSlots[0]+cfg.SegmentSlots[1] {
		return 1
	}
	return 2
}
