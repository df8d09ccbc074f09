package division

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	t.Run("rejects duplicate keys", func(t *testing.T) {
		divs := BuiltIn("https://system.example.com")
		divs = append(divs, divs[0])
		if _, err := NewRegistry(divs); err == nil {
			t.Fatal("expected duplicate key error")
		}
	})

	t.Run("rejects invalid records", func(t *testing.T) {
		_, err := NewRegistry([]Division{{Key: "az_boys_u11", State: "AZ", Gender: "m", Age: 27, RosterURL: "x"}})
		if err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("keys come back sorted", func(t *testing.T) {
		r, err := NewRegistry(BuiltIn("https://system.example.com"))
		if err != nil {
			t.Fatalf("new registry: %v", err)
		}
		keys := r.Keys()
		for i := 1; i < len(keys); i++ {
			if keys[i-1] >= keys[i] {
				t.Fatalf("keys out of order: %q before %q", keys[i-1], keys[i])
			}
		}
	})
}

func TestRegistry_Adjacency(t *testing.T) {
	r, err := NewRegistry(BuiltIn("https://system.example.com"))
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	d, ok := r.Get("az_boys_u11")
	if !ok {
		t.Fatal("built-in az_boys_u11 missing")
	}

	older, ok := r.Older(d)
	if !ok || older.Key != "az_boys_u12" {
		t.Fatalf("unexpected older division: %+v ok=%v", older, ok)
	}
	younger, ok := r.Younger(d)
	if !ok || younger.Key != "az_boys_u10" {
		t.Fatalf("unexpected younger division: %+v ok=%v", younger, ok)
	}

	edge, _ := r.Get("az_girls_u19")
	if _, ok := r.Older(edge); ok {
		t.Fatal("u19 has no older division")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "divisions.json")
	payload := `[{"key":"az_boys_u11","name":"AZ Boys U11","state":"AZ","gender":"m","age":11,"roster_url":"https://system.example.com/api/v1/team_ranking_data?age=11","active":true}]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	divs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if len(divs) != 1 || divs[0].Key != "az_boys_u11" || divs[0].Age != 11 {
		t.Fatalf("unexpected divisions: %+v", divs)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
