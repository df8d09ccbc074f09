package team

import "context"

// Repository describes roster persistence needs from use cases.
type Repository interface {
	SaveRoster(ctx context.Context, divisionKey string, teams []Team) error
	LoadRoster(ctx context.Context, divisionKey string) ([]Team, error)
}
