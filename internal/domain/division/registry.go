package division

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// Registry is the single source of truth for division records. It is
// built once from the built-in set or a divisions file and read-only
// from then on.
type Registry struct {
	byKey map[string]Division
	keys  []string
}

func NewRegistry(divs []Division) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Division, len(divs))}
	for i, d := range divs {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("division %d: %w", i, err)
		}
		if _, ok := r.byKey[d.Key]; ok {
			return nil, fmt.Errorf("duplicate division key %q", d.Key)
		}
		r.byKey[d.Key] = d
		r.keys = append(r.keys, d.Key)
	}
	sort.Strings(r.keys)

	return r, nil
}

func (r *Registry) Get(key string) (Division, bool) {
	d, ok := r.byKey[key]
	return d, ok
}

// Keys returns all division keys in sorted order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Registry) Len() int { return len(r.byKey) }

// Older returns the one-age-up division with the same state and gender,
// used for cross-age opponent resolution.
func (r *Registry) Older(d Division) (Division, bool) {
	return r.Get(BuildKey(d.State, d.Gender, d.Age+1))
}

// Younger returns the one-age-down division with the same state and gender.
func (r *Registry) Younger(d Division) (Division, bool) {
	return r.Get(BuildKey(d.State, d.Gender, d.Age-1))
}

// LoadFile reads a JSON array of divisions. When configured it replaces
// the built-in set entirely.
func LoadFile(path string) ([]Division, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read divisions file: %w", err)
	}

	var divs []Division
	if err := sonic.Unmarshal(raw, &divs); err != nil {
		return nil, fmt.Errorf("parse divisions file: %w", err)
	}
	return divs, nil
}

// BuiltIn is the default Arizona division set, one record per gender and
// age group with roster URLs derived from the upstream base.
func BuiltIn(baseURL string) []Division {
	divs := make([]Division, 0, 20)
	for _, gender := range []string{GenderMale, GenderFemale} {
		for age := 10; age <= 19; age++ {
			divs = append(divs, Division{
				Key:       BuildKey("AZ", gender, age),
				Name:      fmt.Sprintf("AZ %s U%d", titleGender(gender), age),
				State:     "AZ",
				Gender:    gender,
				Age:       age,
				RosterURL: rosterURL(baseURL, "AZ", gender, age),
				Active:    true,
			})
		}
	}
	return divs
}

func titleGender(gender string) string {
	if gender == GenderFemale {
		return "Girls"
	}
	return "Boys"
}

func rosterURL(base, state, gender string, age int) string {
	q := url.Values{}
	q.Set("team_association", state)
	q.Set("age", strconv.Itoa(age))
	q.Set("gender", gender)
	return strings.TrimRight(base, "/") + "/api/v1/team_ranking_data?" + q.Encode()
}
