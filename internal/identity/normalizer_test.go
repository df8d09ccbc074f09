package identity

import "testing"

func TestNormalize(t *testing.T) {
	t.Run("lowercases strips punctuation and sorts tokens", func(t *testing.T) {
		got := Normalize("  Phoenix Rising FC, 2016! ")
		if got != "2016 fc phoenix rising" {
			t.Fatalf("unexpected key: %q", got)
		}
	})

	t.Run("folds club suffix phrases", func(t *testing.T) {
		got := Normalize("AZ Arsenal Soccer Club 16B Teal")
		if got != "16b arsenal az sc teal" {
			t.Fatalf("unexpected key: %q", got)
		}
	})

	t.Run("folds single suffix tokens", func(t *testing.T) {
		got := Normalize("Tucson Football Club Premier 2015")
		if got != "2015 fc prem tucson" {
			t.Fatalf("unexpected key: %q", got)
		}
	})

	t.Run("leaves phrase words alone inside longer words", func(t *testing.T) {
		got := Normalize("Mesa Soccer Clubhouse 2014")
		if got != "2014 clubhouse mesa soccer" {
			t.Fatalf("soccer clubhouse must not fold to sc: %q", got)
		}
	})

	t.Run("blank input yields empty key", func(t *testing.T) {
		if got := Normalize("   "); got != "" {
			t.Fatalf("expected empty key, got %q", got)
		}
	})

	t.Run("idempotent over typical roster names", func(t *testing.T) {
		names := []string{
			"Phoenix Rising FC 2016",
			"AZ Arsenal Soccer Club 16B Teal",
			"Del Sol S.C. 2014 Boys",
			"RSL-AZ Southern Arizona Academy",
			"Yuma Youth Soccer League 2014",
			"FC Tucson Youth 2015 Premier",
		}
		for _, name := range names {
			once := Normalize(name)
			twice := Normalize(once)
			if once != twice {
				t.Fatalf("normalize not idempotent for %q: %q then %q", name, once, twice)
			}
		}
	})
}

func TestReduceForMatch(t *testing.T) {
	t.Run("drops gender and age tokens", func(t *testing.T) {
		got := ReduceForMatch(Normalize("Del Sol SC U12 Boys 2014"))
		if got != "14 del sc sol" {
			t.Fatalf("unexpected reduction: %q", got)
		}
	})

	t.Run("keeps year from year gender designation", func(t *testing.T) {
		got := ReduceForMatch(Normalize("AZ Arsenal 14B Teal"))
		if got != "14 arsenal az teal" {
			t.Fatalf("unexpected reduction: %q", got)
		}
	})

	t.Run("folds four digit birth years to two", func(t *testing.T) {
		a := ReduceForMatch(Normalize("Scottsdale Blast 2014 Red"))
		b := ReduceForMatch(Normalize("Scottsdale Blast 14 Red"))
		if a != b {
			t.Fatalf("2014 and 14 must reduce alike: %q vs %q", a, b)
		}
	})

	t.Run("expands club abbreviations", func(t *testing.T) {
		got := ReduceForMatch(Normalize("PHX UTD 2015 PREMIER"))
		want := ReduceForMatch(Normalize("Phoenix United 2015 Premier"))
		if got != want {
			t.Fatalf("abbreviations must expand: %q vs %q", got, want)
		}
	})

	t.Run("distinct birth years stay distinct", func(t *testing.T) {
		a := ReduceForMatch(Normalize("Phoenix United 2014"))
		b := ReduceForMatch(Normalize("Phoenix United 2015"))
		if a == b {
			t.Fatalf("birth years must remain identity bearing: %q", a)
		}
	})
}

func TestTokenSimilarity(t *testing.T) {
	t.Run("identical sets", func(t *testing.T) {
		a := MatchTokens("Desert Storm Elite 2015 Black")
		if sim := TokenSimilarity(a, a); sim != 1.0 {
			t.Fatalf("expected 1.0, got %v", sim)
		}
	})

	t.Run("partial overlap", func(t *testing.T) {
		a := MatchTokens("Desert Storm Elite 2015 Black North")
		b := MatchTokens("Desert Storm Elite 2015 Black North Valley")
		sim := TokenSimilarity(a, b)
		if sim <= 0.85 || sim >= 0.87 {
			t.Fatalf("expected 6/7 overlap, got %v", sim)
		}
	})

	t.Run("empty sets", func(t *testing.T) {
		if sim := TokenSimilarity(nil, nil); sim != 1.0 {
			t.Fatalf("two empty sets should be identical, got %v", sim)
		}
		if sim := TokenSimilarity(nil, MatchTokens("Phoenix Rising")); sim != 0.0 {
			t.Fatalf("one empty set shares nothing, got %v", sim)
		}
	})
}
