package profile

import "context"

// Repository persists the profile cache between runs. A missing cache
// file loads as an empty map, not an error.
type Repository interface {
	Load(ctx context.Context, divisionKey string) (map[string]Entry, error)
	Save(ctx context.Context, divisionKey string, entries map[string]Entry) error
}
