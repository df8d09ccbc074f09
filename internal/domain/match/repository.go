package match

import "context"

// Repository describes gold match persistence needs from use cases.
type Repository interface {
	SaveMatches(ctx context.Context, divisionKey string, rows []Match) error
	LoadMatches(ctx context.Context, divisionKey string) ([]Match, error)
}
