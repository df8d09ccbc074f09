package match

import (
	"fmt"
	"sort"
	"time"
)

const (
	AgeOwn     = "own"
	AgeOlder   = "older"
	AgeYounger = "younger"
	AgeUnknown = "unknown"
)

// Match is one canonical gold row. Sides are held in lexicographic key
// order so the same fixture scraped from either team's page collapses
// to one row.
type Match struct {
	Date            time.Time
	TeamAKey        string
	TeamAName       string
	TeamBKey        string
	TeamBName       string
	ScoreA          int
	ScoreB          int
	Competition     string
	SourceURL       string
	AgeContext      string
	MatchConfidence string
}

func (m Match) Validate() error {
	if m.Date.IsZero() {
		return fmt.Errorf("match date is required")
	}
	if m.TeamAKey == "" || m.TeamBKey == "" {
		return fmt.Errorf("match team keys are required")
	}
	if m.ScoreA < 0 || m.ScoreB < 0 {
		return fmt.Errorf("match scores must be non-negative")
	}
	switch m.AgeContext {
	case AgeOwn, AgeOlder, AgeYounger, AgeUnknown:
	default:
		return fmt.Errorf("unknown age context %q", m.AgeContext)
	}

	return nil
}

// Canonical returns the row with sides in lexicographic key order,
// swapping scores and names along with the keys.
func (m Match) Canonical() Match {
	if m.TeamAKey <= m.TeamBKey {
		return m
	}
	m.TeamAKey, m.TeamBKey = m.TeamBKey, m.TeamAKey
	m.TeamAName, m.TeamBName = m.TeamBName, m.TeamAName
	m.ScoreA, m.ScoreB = m.ScoreB, m.ScoreA
	return m
}

// Involves reports whether key plays on either side.
func (m Match) Involves(key string) bool {
	return m.TeamAKey == key || m.TeamBKey == key
}

// Opponent returns the other side's key, or "" when key does not play.
func (m Match) Opponent(key string) string {
	switch key {
	case m.TeamAKey:
		return m.TeamBKey
	case m.TeamBKey:
		return m.TeamAKey
	default:
		return ""
	}
}

// Sort orders rows by (team_a_key, team_b_key, date) so repeated runs
// over unchanged upstream data produce byte-identical output.
func Sort(rows []Match) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TeamAKey != b.TeamAKey {
			return a.TeamAKey < b.TeamAKey
		}
		if a.TeamBKey != b.TeamBKey {
			return a.TeamBKey < b.TeamBKey
		}
		return a.Date.Before(b.Date)
	})
}

// Dedupe collapses rows sharing (date, team_a_key, team_b_key), first
// occurrence wins. Rows must already be canonical.
func Dedupe(rows []Match) []Match {
	type identity struct {
		date string
		a, b string
	}

	seen := make(map[identity]struct{}, len(rows))
	out := make([]Match, 0, len(rows))
	for _, m := range rows {
		id := identity{date: m.Date.Format("2006-01-02"), a: m.TeamAKey, b: m.TeamBKey}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, m)
	}
	return out
}
