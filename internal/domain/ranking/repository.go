package ranking

import "context"

// Repository persists the artifacts of a rank run.
type Repository interface {
	SaveRankings(ctx context.Context, divisionKey string, rows []Row) error
	SaveConnectivity(ctx context.Context, divisionKey string, rows []ConnectivityRow) error
}
