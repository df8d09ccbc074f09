package file

import (
	"context"
	"io"
	"path/filepath"

	crerr "github.com/cockroachdb/errors"
	"github.com/gocarina/gocsv"

	"github.com/copperpitch/youthrank/internal/domain/ranking"
)

// RankingRepository writes the rankings and connectivity reports.
type RankingRepository struct {
	dir string
}

func NewRankingRepository(dir string) *RankingRepository {
	return &RankingRepository{dir: dir}
}

func (r *RankingRepository) RankingsPath(divisionKey string) string {
	return filepath.Join(r.dir, "rankings_"+divisionKey+".csv")
}

func (r *RankingRepository) ConnectivityPath(divisionKey string) string {
	return filepath.Join(r.dir, "connectivity_"+divisionKey+".csv")
}

func (r *RankingRepository) SaveRankings(_ context.Context, divisionKey string, rows []ranking.Row) error {
	models := make([]rankingRowModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, toRankingRow(row))
	}

	path := r.RankingsPath(divisionKey)
	if err := writeAtomic(path, func(w io.Writer) error {
		return gocsv.Marshal(models, w)
	}); err != nil {
		return crerr.Wrapf(err, "write rankings %s", path)
	}
	return nil
}

func (r *RankingRepository) SaveConnectivity(_ context.Context, divisionKey string, rows []ranking.ConnectivityRow) error {
	models := make([]connectivityRowModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, toConnectivityRow(row))
	}

	path := r.ConnectivityPath(divisionKey)
	if err := writeAtomic(path, func(w io.Writer) error {
		return gocsv.Marshal(models, w)
	}); err != nil {
		return crerr.Wrapf(err, "write connectivity %s", path)
	}
	return nil
}
