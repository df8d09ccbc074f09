package file

import (
	"context"
	"io"
	"os"
	"path/filepath"

	crerr "github.com/cockroachdb/errors"
	"github.com/gocarina/gocsv"

	"github.com/copperpitch/youthrank/internal/domain/team"
	"github.com/copperpitch/youthrank/internal/usecase"
)

// RosterRepository owns the bronze roster CSVs, one per division.
type RosterRepository struct {
	dir string
}

func NewRosterRepository(dir string) *RosterRepository {
	return &RosterRepository{dir: dir}
}

func (r *RosterRepository) Path(divisionKey string) string {
	return filepath.Join(r.dir, divisionKey+"_teams.csv")
}

func (r *RosterRepository) SaveRoster(_ context.Context, divisionKey string, teams []team.Team) error {
	rows := make([]rosterRowModel, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, toRosterRow(t))
	}

	path := r.Path(divisionKey)
	if err := writeAtomic(path, func(w io.Writer) error {
		return gocsv.Marshal(rows, w)
	}); err != nil {
		return crerr.Wrapf(err, "write bronze roster %s", path)
	}
	return nil
}

func (r *RosterRepository) LoadRoster(_ context.Context, divisionKey string) ([]team.Team, error) {
	path := r.Path(divisionKey)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, crerr.Mark(
				crerr.Newf("bronze roster %s does not exist; run scrape-teams first", path),
				usecase.ErrMalformedInput,
			)
		}
		return nil, crerr.Wrapf(err, "read bronze roster %s", path)
	}

	var rows []rosterRowModel
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, crerr.Mark(crerr.Wrapf(err, "parse bronze roster %s", path), usecase.ErrMalformedInput)
	}

	teams := make([]team.Team, 0, len(rows))
	for i, row := range rows {
		t, err := fromRosterRow(row)
		if err != nil {
			return nil, crerr.Mark(crerr.Wrapf(err, "bronze roster %s row %d", path, i+1), usecase.ErrMalformedInput)
		}
		teams = append(teams, t)
	}
	return teams, nil
}
