package division

import (
	"fmt"
	"strings"
)

const (
	GenderMale   = "m"
	GenderFemale = "f"
)

// Division is one ranking scope: a state, gender and age group triple.
// Records are loaded once at startup and never mutated afterwards.
type Division struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	State     string `json:"state"`
	Gender    string `json:"gender"`
	Age       int    `json:"age"`
	RosterURL string `json:"roster_url"`
	Active    bool   `json:"active"`
}

func (d Division) Validate() error {
	if d.Key == "" {
		return fmt.Errorf("division key is required")
	}
	if len(d.State) != 2 {
		return fmt.Errorf("division state must be a two letter code")
	}
	if d.Gender != GenderMale && d.Gender != GenderFemale {
		return fmt.Errorf("division gender must be %q or %q", GenderMale, GenderFemale)
	}
	if d.Age < 10 || d.Age > 19 {
		return fmt.Errorf("division age must be between 10 and 19")
	}
	if d.RosterURL == "" {
		return fmt.Errorf("division roster url is required")
	}

	return nil
}

// BuildKey derives the canonical division key, e.g. az_boys_u11.
func BuildKey(state, gender string, age int) string {
	return fmt.Sprintf("%s_%s_u%d", strings.ToLower(state), genderWord(gender), age)
}

func genderWord(gender string) string {
	if gender == GenderFemale {
		return "girls"
	}
	return "boys"
}
