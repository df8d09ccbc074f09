package match

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMatch_Canonical(t *testing.T) {
	m := Match{
		Date:     day("2026-03-01"),
		TeamAKey: "2015 phoenix prem united", TeamAName: "Phoenix United 2015 Premier",
		TeamBKey: "2015 blast scottsdale", TeamBName: "Scottsdale Blast 2015",
		ScoreA: 4, ScoreB: 1,
		AgeContext: AgeOwn,
	}

	c := m.Canonical()
	if c.TeamAKey != "2015 blast scottsdale" || c.TeamBKey != "2015 phoenix prem united" {
		t.Fatalf("keys not reordered: %+v", c)
	}
	if c.ScoreA != 1 || c.ScoreB != 4 {
		t.Fatalf("scores must swap with the keys: %+v", c)
	}
	if c.TeamAName != "Scottsdale Blast 2015" {
		t.Fatalf("names must swap with the keys: %+v", c)
	}

	if again := c.Canonical(); again != c {
		t.Fatalf("canonical row must be a fixed point: %+v", again)
	}
}

func TestMatch_Validate(t *testing.T) {
	valid := Match{
		Date:     day("2026-03-01"),
		TeamAKey: "a", TeamBKey: "b",
		AgeContext: AgeOwn,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid row rejected: %v", err)
	}

	t.Run("zero date", func(t *testing.T) {
		m := valid
		m.Date = time.Time{}
		if err := m.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("negative score", func(t *testing.T) {
		m := valid
		m.ScoreB = -1
		if err := m.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("bad age context", func(t *testing.T) {
		m := valid
		m.AgeContext = "adjacent"
		if err := m.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestSortAndDedupe(t *testing.T) {
	rows := []Match{
		{Date: day("2026-03-08"), TeamAKey: "b", TeamBKey: "c", ScoreA: 2, ScoreB: 2},
		{Date: day("2026-03-01"), TeamAKey: "a", TeamBKey: "c", ScoreA: 1, ScoreB: 0},
		{Date: day("2026-03-01"), TeamAKey: "a", TeamBKey: "b", ScoreA: 3, ScoreB: 1},
		// Same fixture seen from the other side's page.
		{Date: day("2026-03-01"), TeamAKey: "a", TeamBKey: "b", ScoreA: 3, ScoreB: 1},
	}

	Sort(rows)
	deduped := Dedupe(rows)

	if len(deduped) != 3 {
		t.Fatalf("expected 3 rows after dedupe, got %d", len(deduped))
	}
	want := [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}
	for i, w := range want {
		if deduped[i].TeamAKey != w[0] || deduped[i].TeamBKey != w[1] {
			t.Fatalf("row %d out of order: %+v", i, deduped[i])
		}
	}
}
