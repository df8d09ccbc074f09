package file

import (
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/copperpitch/youthrank/internal/domain/team"
)

type rosterRowModel struct {
	TeamName   string `csv:"team_name"`
	TeamKey    string `csv:"team_key"`
	ExternalID string `csv:"external_id"`
	Club       string `csv:"club"`
	State      string `csv:"state"`
	ScrapedAt  string `csv:"scraped_at"`
}

func toRosterRow(t team.Team) rosterRowModel {
	return rosterRowModel{
		TeamName:   t.Name,
		TeamKey:    t.Key,
		ExternalID: t.ExternalID,
		Club:       t.Club,
		State:      t.State,
		ScrapedAt:  t.ScrapedAt.UTC().Format(time.RFC3339),
	}
}

func fromRosterRow(row rosterRowModel) (team.Team, error) {
	t := team.Team{
		Key:        row.TeamKey,
		Name:       row.TeamName,
		Club:       row.Club,
		State:      row.State,
		ExternalID: row.ExternalID,
	}
	if row.ScrapedAt != "" {
		scrapedAt, err := time.Parse(time.RFC3339, row.ScrapedAt)
		if err != nil {
			return team.Team{}, crerr.Wrapf(err, "parse scraped_at %q", row.ScrapedAt)
		}
		t.ScrapedAt = scrapedAt.UTC()
	}
	if err := t.Validate(); err != nil {
		return team.Team{}, err
	}
	return t, nil
}
