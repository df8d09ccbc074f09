package ranking

import (
	"math"

	"github.com/copperpitch/youthrank/internal/domain/match"
)

// ratingState is the solver's flat team table. Fixed entries are
// opponents outside every roster; they hold the default prior and never
// move.
type ratingState struct {
	rating []float64
	fixed  []bool
	games  []int
}

// pair is one match in solver form. ctxA is the age context of B as
// seen from the division (and vice versa), which decides the cross-age
// bonus for each direction.
type pair struct {
	a, b       int
	gfA, gfB   int
	ctxA, ctxB string
}

// initRatings seeds each rated team from its win percentage mapped into
// [lo, hi], then shifts so the ranked population's mean sits at 0.5.
// rankedIdx lists the master-roster teams that will be emitted.
func initRatings(cfg Config, st *ratingState, pairs []pair, rankedIdx []int) {
	wins := make([]float64, len(st.rating))
	games := make([]float64, len(st.rating))
	for _, p := range pairs {
		switch {
		case p.gfA > p.gfB:
			wins[p.a]++
		case p.gfB > p.gfA:
			wins[p.b]++
		default:
			wins[p.a] += 0.5
			wins[p.b] += 0.5
		}
		games[p.a]++
		games[p.b]++
	}

	for i := range st.rating {
		if st.fixed[i] {
			st.rating[i] = cfg.DefaultOppStrength
			continue
		}
		pct := 0.5
		if games[i] > 0 {
			pct = wins[i] / games[i]
		}
		st.rating[i] = cfg.InitRatingLo + (cfg.InitRatingHi-cfg.InitRatingLo)*pct
	}

	if len(rankedIdx) == 0 {
		return
	}
	mean := 0.0
	for _, i := range rankedIdx {
		mean += st.rating[i]
	}
	mean /= float64(len(rankedIdx))
	shift := 0.5 - mean
	for i := range st.rating {
		if !st.fixed[i] {
			st.rating[i] += shift
		}
	}
}

// solve runs sequential pair updates until the mean absolute rating
// movement per iteration drops under the tolerance or the cap is hit.
// Hitting the cap is reported, not an error; real divisions do.
func solve(cfg Config, st *ratingState, pairs []pair) (iterations int, converged bool, meanDelta float64) {
	rated := 0
	for i := range st.fixed {
		if !st.fixed[i] {
			rated++
		}
	}
	if rated == 0 || len(pairs) == 0 {
		return 0, true, 0
	}

	before := make([]float64, len(st.rating))
	for it := 1; it <= cfg.MaxIterations; it++ {
		copy(before, st.rating)
		for _, p := range pairs {
			st.update(cfg, p)
		}

		sum := 0.0
		for i := range st.rating {
			if !st.fixed[i] {
				sum += math.Abs(st.rating[i] - before[i])
			}
		}
		meanDelta = sum / float64(rated)
		iterations = it
		if meanDelta < cfg.ConvergenceTol {
			return iterations, true, meanDelta
		}
	}
	return iterations, false, meanDelta
}

// update applies one symmetric pair update. Both deltas are computed
// from the ratings as they stood entering the match so the pass is
// consistent across the pair.
func (st *ratingState) update(cfg Config, p pair) {
	rA, rB := st.rating[p.a], st.rating[p.b]

	var deltaA, deltaB float64
	if !st.fixed[p.a] {
		deltaA = sideDelta(cfg, rA, rB, st.games[p.a], p.gfA, p.gfB, p.ctxA)
	}
	if !st.fixed[p.b] {
		deltaB = sideDelta(cfg, rB, rA, st.games[p.b], p.gfB, p.gfA, p.ctxB)
	}
	st.rating[p.a] += deltaA
	st.rating[p.b] += deltaB
}

func sideDelta(cfg Config, r, rOpp float64, games, gf, ga int, ageContext string) float64 {
	expected := 1.0 / (1.0 + math.Exp(-cfg.EloK*(r-rOpp)))

	var observed, mm float64
	switch {
	case gf > ga:
		observed, mm = 1, marginMultiplier(cfg, gf-ga)
	case gf < ga:
		observed, mm = 0, marginMultiplier(cfg, gf-ga)
	default:
		observed, mm = 0.5, 1
	}

	bonus := 1.0
	if ageContext == match.AgeOlder {
		bonus = cfg.CrossAgeBonus
	}

	gap := math.Max(0, r-rOpp)
	sample := math.Min(1, math.Pow(float64(games)/float64(cfg.SampleFullGames), cfg.SampleBeta))
	eta := cfg.EtaBase * (1.0 / (1.0 + math.Pow(gap, cfg.GapAlpha))) * sample

	return eta * bonus * (observed*mm - expected)
}

func marginMultiplier(cfg Config, goalDiff int) float64 {
	if goalDiff > cfg.CapGF {
		goalDiff = cfg.CapGF
	}
	if goalDiff < -cfg.CapGF {
		goalDiff = -cfg.CapGF
	}
	mm := 1 + cfg.MarginStep*float64(goalDiff)
	return math.Min(cfg.MarginMax, math.Max(cfg.MarginMin, mm))
}
