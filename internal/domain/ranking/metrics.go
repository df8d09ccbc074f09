package ranking

import (
	"math"
	"time"
)

type tallies struct {
	games, wins, losses, ties int
	goalsFor, goalsAgainst    int
	offenseRaw, defenseRaw    float64
	lastGame                  time.Time
	crossAge, crossState      int
}

// tallyViews folds a team's capped, weighted history into its raw
// metrics. Goal totals stay uncapped; only the weighted accumulations
// apply the score cap.
func tallyViews(cfg Config, vs []view, w []float64) tallies {
	var t tallies
	t.games = len(vs)
	for i, v := range vs {
		switch {
		case v.gf > v.ga:
			t.wins++
		case v.gf < v.ga:
			t.losses++
		default:
			t.ties++
		}
		t.goalsFor += v.gf
		t.goalsAgainst += v.ga
		t.offenseRaw += w[i] * float64(min(v.gf, cfg.CapGF))
		t.defenseRaw += w[i] * float64(min(v.ga, cfg.CapGF))
		if v.date.After(t.lastGame) {
			t.lastGame = v.date
		}
		switch v.ageContext {
		case "older", "younger":
			t.crossAge++
		}
		if v.crossState {
			t.crossState++
		}
	}
	return t
}

// sosRaw is the weighted mean of opponent ratings, with rated opponents
// clipped into the outlier band. The default prior of opponents outside
// every roster passes through untouched.
func sosRaw(st *ratingState, vs []view, w []float64, lo, hi float64) float64 {
	sum := 0.0
	for i, v := range vs {
		r := st.rating[v.opp]
		if !st.fixed[v.opp] {
			r = math.Min(hi, math.Max(lo, r))
		}
		sum += w[i] * r
	}
	return sum
}

// meanStd is the population mean and standard deviation.
func meanStd(vals []float64) (mu, sigma float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	for _, v := range vals {
		mu += v
	}
	mu /= float64(len(vals))
	for _, v := range vals {
		d := v - mu
		sigma += d * d
	}
	sigma = math.Sqrt(sigma / float64(len(vals)))
	return mu, sigma
}

// logisticNorm squashes each metric value into (0,1) around the
// population mean. A degenerate population (sigma zero) maps everyone
// to 0.5.
func logisticNorm(cfg Config, vals []float64) []float64 {
	out := make([]float64, len(vals))
	mu, sigma := meanStd(vals)
	if sigma == 0 {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for i, v := range vals {
		out[i] = 1.0 / (1.0 + math.Exp(-(v-mu)/(cfg.LogisticScale*sigma)))
	}
	return out
}
