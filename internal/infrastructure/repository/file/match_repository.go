package file

import (
	"context"
	"io"
	"os"
	"path/filepath"

	crerr "github.com/cockroachdb/errors"
	"github.com/gocarina/gocsv"

	"github.com/copperpitch/youthrank/internal/domain/match"
	"github.com/copperpitch/youthrank/internal/usecase"
)

// MatchRepository owns the gold match CSVs. Rows are written in the
// order the caller sorted them; two runs over unchanged upstream data
// therefore produce byte-identical files.
type MatchRepository struct {
	dir string
}

func NewMatchRepository(dir string) *MatchRepository {
	return &MatchRepository{dir: dir}
}

func (r *MatchRepository) Path(divisionKey string) string {
	return filepath.Join(r.dir, "matches_"+divisionKey+".csv")
}

func (r *MatchRepository) SaveMatches(_ context.Context, divisionKey string, rows []match.Match) error {
	models := make([]matchRowModel, 0, len(rows))
	for _, m := range rows {
		models = append(models, toMatchRow(m))
	}

	path := r.Path(divisionKey)
	if err := writeAtomic(path, func(w io.Writer) error {
		return gocsv.Marshal(models, w)
	}); err != nil {
		return crerr.Wrapf(err, "write gold matches %s", path)
	}
	return nil
}

func (r *MatchRepository) LoadMatches(_ context.Context, divisionKey string) ([]match.Match, error) {
	path := r.Path(divisionKey)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, crerr.Mark(
				crerr.Newf("gold matches %s do not exist; run scrape-matches first", path),
				usecase.ErrMalformedInput,
			)
		}
		return nil, crerr.Wrapf(err, "read gold matches %s", path)
	}

	var models []matchRowModel
	if err := gocsv.UnmarshalBytes(raw, &models); err != nil {
		return nil, crerr.Mark(crerr.Wrapf(err, "parse gold matches %s", path), usecase.ErrMalformedInput)
	}

	rows := make([]match.Match, 0, len(models))
	for i, model := range models {
		m, err := fromMatchRow(model)
		if err != nil {
			return nil, crerr.Mark(crerr.Wrapf(err, "gold matches %s row %d", path, i+1), usecase.ErrMalformedInput)
		}
		rows = append(rows, m)
	}
	return rows, nil
}
