package ranking

import (
	"math"
	"testing"

	"github.com/copperpitch/youthrank/internal/domain/match"
)

func TestMarginMultiplier(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		goalDiff int
		want     float64
	}{
		{0, 1.0},
		{1, 1.1},
		{-1, 0.9},
		{6, 1.6},
		{7, 1.6},  // diff capped before the step
		{-6, 0.4},
		{-9, 0.4},
	}
	for _, c := range cases {
		if got := marginMultiplier(cfg, c.goalDiff); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("goal diff %d: got %v, want %v", c.goalDiff, got, c.want)
		}
	}
}

func TestSideDelta_CrossAgeBonus(t *testing.T) {
	cfg := DefaultConfig()

	// Identical win against an equally rated opponent, once in-age and
	// once against an older-roster team. The bonus is exactly 5%.
	plain := sideDelta(cfg, 0.5, 0.5, 10, 3, 1, match.AgeOwn)
	boosted := sideDelta(cfg, 0.5, 0.5, 10, 3, 1, match.AgeOlder)

	if plain <= 0 {
		t.Fatalf("a win must move the rating up, got %v", plain)
	}
	if math.Abs(boosted/plain-cfg.CrossAgeBonus) > 1e-9 {
		t.Fatalf("cross-age delta ratio = %v, want %v", boosted/plain, cfg.CrossAgeBonus)
	}
}

func TestSideDelta_Damping(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("low sample teams move less", func(t *testing.T) {
		few := sideDelta(cfg, 0.5, 0.5, 2, 2, 0, match.AgeOwn)
		many := sideDelta(cfg, 0.5, 0.5, 20, 2, 0, match.AgeOwn)
		if few >= many {
			t.Fatalf("2-game delta %v should be smaller than 20-game delta %v", few, many)
		}
	})

	t.Run("beating a much weaker opponent moves less", func(t *testing.T) {
		level := sideDelta(cfg, 0.5, 0.5, 10, 2, 0, match.AgeOwn)
		mismatch := sideDelta(cfg, 0.9, 0.2, 10, 2, 0, match.AgeOwn)
		if mismatch >= level {
			t.Fatalf("lopsided win delta %v should be smaller than level win delta %v", mismatch, level)
		}
	})

	t.Run("losses move ratings down", func(t *testing.T) {
		if d := sideDelta(cfg, 0.5, 0.5, 10, 0, 3, match.AgeOwn); d >= 0 {
			t.Fatalf("a loss must move the rating down, got %v", d)
		}
	})
}

func TestSolve(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("fixed opponents never move", func(t *testing.T) {
		st := &ratingState{
			rating: []float64{0.5, cfg.DefaultOppStrength},
			fixed:  []bool{false, true},
			games:  []int{8, 8},
		}
		pairs := []pair{
			{a: 0, b: 1, gfA: 4, gfB: 0, ctxA: match.AgeUnknown, ctxB: match.AgeOwn},
			{a: 0, b: 1, gfA: 3, gfB: 1, ctxA: match.AgeUnknown, ctxB: match.AgeOwn},
		}
		if _, _, _ = solve(cfg, st, pairs); st.rating[1] != cfg.DefaultOppStrength {
			t.Fatalf("external rating moved to %v", st.rating[1])
		}
		if st.rating[0] <= 0.5 {
			t.Fatalf("winner's rating should rise, got %v", st.rating[0])
		}
	})

	t.Run("terminates at the iteration cap", func(t *testing.T) {
		tight := cfg
		tight.ConvergenceTol = 0 // unreachable
		st := &ratingState{
			rating: []float64{0.6, 0.4},
			fixed:  []bool{false, false},
			games:  []int{10, 10},
		}
		pairs := []pair{{a: 0, b: 1, gfA: 2, gfB: 1, ctxA: match.AgeOwn, ctxB: match.AgeOwn}}

		iterations, converged, _ := solve(tight, st, pairs)
		if converged || iterations != tight.MaxIterations {
			t.Fatalf("expected cap termination, got iterations=%d converged=%v", iterations, converged)
		}
	})

	t.Run("no pairs converges immediately", func(t *testing.T) {
		st := &ratingState{rating: []float64{0.5}, fixed: []bool{false}, games: []int{0}}
		iterations, converged, delta := solve(cfg, st, nil)
		if iterations != 0 || !converged || delta != 0 {
			t.Fatalf("unexpected solve result: %d %v %v", iterations, converged, delta)
		}
	})
}
