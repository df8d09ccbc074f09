package team

import (
	"fmt"
	"time"
)

// Team is one canonical roster entry. Key is the normalized team name
// and is the join identity across the bronze, gold and rankings files.
type Team struct {
	Key        string
	Name       string
	Club       string
	State      string
	ExternalID string
	ScrapedAt  time.Time
}

func (t Team) Validate() error {
	if t.Key == "" {
		return fmt.Errorf("team key is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

// HasExternalID reports whether the team can be discovered on the
// upstream platform. Teams without one stay on the roster but are
// skipped by the match scraper.
func (t Team) HasExternalID() bool { return t.ExternalID != "" }

// Dedupe collapses roster rows sharing (key, external id), keeping the
// first occurrence so upstream ordering survives.
func Dedupe(teams []Team) []Team {
	type identity struct{ key, externalID string }

	seen := make(map[identity]struct{}, len(teams))
	out := make([]Team, 0, len(teams))
	for _, t := range teams {
		id := identity{key: t.Key, externalID: t.ExternalID}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ByKey indexes a roster for opponent lookups. Duplicate keys keep the
// first row, mirroring registry collision handling.
func ByKey(teams []Team) map[string]Team {
	idx := make(map[string]Team, len(teams))
	for _, t := range teams {
		if _, ok := idx[t.Key]; !ok {
			idx[t.Key] = t
		}
	}
	return idx
}
