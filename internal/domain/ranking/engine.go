package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/copperpitch/youthrank/internal/domain/match"
)

// Compute runs one division's full rank: window filtering, view
// explosion, the iterative opponent-strength solver, normalization and
// the composite score. It is pure and deterministic; the same input
// always produces the same outcome.
func Compute(cfg Config, in Input) (*Outcome, error) {
	rosterInfo := make(map[string]TeamInfo, len(in.Roster))
	rosterKeys := make([]string, 0, len(in.Roster))
	for _, t := range in.Roster {
		if t.Key == "" {
			continue
		}
		if _, ok := rosterInfo[t.Key]; ok {
			continue
		}
		rosterInfo[t.Key] = t
		rosterKeys = append(rosterKeys, t.Key)
	}
	if len(rosterKeys) == 0 {
		return nil, ErrEmptyRoster
	}
	sort.Strings(rosterKeys)

	// The window anchors on the newest match in the input, not the wall
	// clock, so re-running over an unchanged gold file is reproducible.
	var asOf time.Time
	for _, m := range in.Matches {
		if m.Date.After(asOf) {
			asOf = m.Date
		}
	}

	var windowStart time.Time
	kept := make([]match.Match, 0, len(in.Matches))
	if !asOf.IsZero() {
		windowStart = asOf.AddDate(0, 0, -cfg.WindowDays)
		for _, m := range in.Matches {
			if m.Date.Before(windowStart) {
				continue
			}
			c := m.Canonical()
			_, aIn := rosterInfo[c.TeamAKey]
			_, bIn := rosterInfo[c.TeamBKey]
			if !aIn && !bIn {
				continue
			}
			kept = append(kept, c)
		}
		match.Sort(kept)
		kept = match.Dedupe(kept)
	}

	contextOf := func(key string) string {
		if _, ok := rosterInfo[key]; ok {
			return match.AgeOwn
		}
		if _, ok := in.Older[key]; ok {
			return match.AgeOlder
		}
		if _, ok := in.Younger[key]; ok {
			return match.AgeYounger
		}
		return match.AgeUnknown
	}
	stateOf := func(key string) string {
		if t, ok := rosterInfo[key]; ok {
			return t.State
		}
		if t, ok := in.Older[key]; ok {
			return t.State
		}
		if t, ok := in.Younger[key]; ok {
			return t.State
		}
		return ""
	}
	crossState := func(key string) bool {
		s := stateOf(key)
		return s != "" && in.DivisionState != "" && s != in.DivisionState
	}

	// Flat team table: roster in key order, then every other
	// participant. Solver state references teams by index only.
	index := make(map[string]int, len(rosterKeys))
	keys := make([]string, 0, len(rosterKeys))
	for _, k := range rosterKeys {
		index[k] = len(keys)
		keys = append(keys, k)
	}
	var outsiders []string
	for _, m := range kept {
		for _, k := range [2]string{m.TeamAKey, m.TeamBKey} {
			if _, ok := index[k]; !ok {
				index[k] = -1 // placeholder until sorted
				outsiders = append(outsiders, k)
			}
		}
	}
	sort.Strings(outsiders)
	for _, k := range outsiders {
		index[k] = len(keys)
		keys = append(keys, k)
	}

	st := &ratingState{
		rating: make([]float64, len(keys)),
		fixed:  make([]bool, len(keys)),
		games:  make([]int, len(keys)),
	}
	for i, k := range keys {
		st.fixed[i] = contextOf(k) == match.AgeUnknown
	}

	pairs := make([]pair, 0, len(kept))
	edges := make(map[[2]string]struct{})
	viewsByTeam := make([][]view, len(keys))
	appearances := make([]int, len(keys))
	for _, m := range kept {
		a, b := index[m.TeamAKey], index[m.TeamBKey]
		appearances[a]++
		appearances[b]++
		pairs = append(pairs, pair{
			a: a, b: b, gfA: m.ScoreA, gfB: m.ScoreB,
			ctxA: contextOf(m.TeamBKey), ctxB: contextOf(m.TeamAKey),
		})

		_, aIn := rosterInfo[m.TeamAKey]
		_, bIn := rosterInfo[m.TeamBKey]
		if aIn && bIn {
			edges[[2]string{m.TeamAKey, m.TeamBKey}] = struct{}{}
		}
		if aIn {
			viewsByTeam[a] = append(viewsByTeam[a], view{
				opp: b, gf: m.ScoreA, ga: m.ScoreB, date: m.Date,
				ageContext: contextOf(m.TeamBKey), crossState: crossState(m.TeamBKey),
			})
		}
		if bIn {
			viewsByTeam[b] = append(viewsByTeam[b], view{
				opp: a, gf: m.ScoreB, ga: m.ScoreA, date: m.Date,
				ageContext: contextOf(m.TeamAKey), crossState: crossState(m.TeamAKey),
			})
		}
	}
	for i := range st.games {
		st.games[i] = min(appearances[i], cfg.MaxViews)
	}

	keyOf := func(i int) string { return keys[i] }
	weightsByTeam := make([][]float64, len(keys))
	rankedIdx := make([]int, 0, len(rosterKeys))
	for _, k := range rosterKeys {
		i := index[k]
		vs := viewsByTeam[i]
		if len(vs) == 0 {
			continue
		}
		sortViews(vs, keyOf)
		if len(vs) > cfg.MaxViews {
			vs = vs[:cfg.MaxViews]
		}
		viewsByTeam[i] = vs
		weightsByTeam[i] = taperedWeights(cfg, len(vs))
		rankedIdx = append(rankedIdx, i)
	}

	initRatings(cfg, st, pairs, rankedIdx)
	iterations, converged, meanDelta := solve(cfg, st, pairs)

	var ratedVals []float64
	for i := range st.rating {
		if !st.fixed[i] {
			ratedVals = append(ratedVals, st.rating[i])
		}
	}
	muOpp, sigmaOpp := meanStd(ratedVals)
	lo := muOpp - cfg.OutlierSigma*sigmaOpp
	hi := muOpp + cfg.OutlierSigma*sigmaOpp

	// Per-team aggregation is embarrassingly parallel: every slot is
	// written by exactly one goroutine.
	rows := make([]Row, len(rankedIdx))
	iter.ForEachIdx(rows, func(n int, r *Row) {
		i := rankedIdx[n]
		info := rosterInfo[keys[i]]
		vs, w := viewsByTeam[i], weightsByTeam[i]
		t := tallyViews(cfg, vs, w)

		*r = Row{
			TeamKey:         keys[i],
			TeamName:        info.Name,
			State:           info.State,
			GamesPlayed:     t.games,
			Wins:            t.wins,
			Losses:          t.losses,
			Ties:            t.ties,
			GoalsFor:        t.goalsFor,
			GoalsAgainst:    t.goalsAgainst,
			OffenseRaw:      t.offenseRaw,
			DefenseRaw:      t.defenseRaw,
			SOSRaw:          sosRaw(st, vs, w, lo, hi),
			LastGameDate:    t.lastGame,
			CrossAgeGames:   t.crossAge,
			CrossStateGames: t.crossState,
		}
		if t.games > 0 {
			r.CrossAgePct = float64(t.crossAge) / float64(t.games)
			r.CrossStatePct = float64(t.crossState) / float64(t.games)
		}
	})

	off := make([]float64, len(rows))
	def := make([]float64, len(rows))
	sos := make([]float64, len(rows))
	for i, r := range rows {
		off[i], def[i], sos[i] = r.OffenseRaw, r.DefenseRaw, r.SOSRaw
	}
	offNorm := logisticNorm(cfg, off)
	defNorm := logisticNorm(cfg, def)
	sosNorm := logisticNorm(cfg, sos)

	for i := range rows {
		rows[i].OffenseNorm = offNorm[i]
		rows[i].DefenseNorm = 1 - defNorm[i] // low goals against is good
		rows[i].SOSNorm = sosNorm[i]
		rows[i].PowerScore = cfg.OffenseWeight*rows[i].OffenseNorm +
			cfg.DefenseWeight*rows[i].DefenseNorm +
			cfg.SOSWeight*rows[i].SOSNorm
		rows[i].GamesPenalty = math.Sqrt(float64(min(rows[i].GamesPlayed, cfg.PenaltyGames)) / float64(cfg.PenaltyGames))
		rows[i].PowerScoreAdj = rows[i].PowerScore * rows[i].GamesPenalty
		rows[i].Status = status(cfg, asOf, rows[i].GamesPlayed, rows[i].LastGameDate)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PowerScoreAdj != rows[j].PowerScoreAdj {
			return rows[i].PowerScoreAdj > rows[j].PowerScoreAdj
		}
		if rows[i].GamesPlayed != rows[j].GamesPlayed {
			return rows[i].GamesPlayed > rows[j].GamesPlayed
		}
		return rows[i].TeamKey < rows[j].TeamKey
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return &Outcome{
		Rows:         rows,
		Connectivity: connectivityReport(rosterKeys, edges),
		Summary: Summary{
			Teams:        len(rows),
			Matches:      len(kept),
			WindowStart:  windowStart,
			AsOf:         asOf,
			Iterations:   iterations,
			Converged:    converged,
			MeanAbsDelta: meanDelta,
		},
	}, nil
}

func status(cfg Config, asOf time.Time, games int, lastGame time.Time) string {
	if games < cfg.ActiveMinGames {
		return StatusProvisional
	}
	cutoff := asOf.AddDate(0, 0, -cfg.InactiveAfterDays)
	if lastGame.Before(cutoff) {
		return StatusInactive
	}
	return StatusActive
}
