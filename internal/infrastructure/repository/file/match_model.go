package file

import (
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/copperpitch/youthrank/internal/domain/match"
)

const matchDateLayout = "2006-01-02"

type matchRowModel struct {
	Date            string `csv:"date"`
	TeamAKey        string `csv:"team_a_key"`
	TeamAName       string `csv:"team_a_name"`
	TeamBKey        string `csv:"team_b_key"`
	TeamBName       string `csv:"team_b_name"`
	ScoreA          int    `csv:"score_a"`
	ScoreB          int    `csv:"score_b"`
	Competition     string `csv:"competition"`
	SourceURL       string `csv:"source_url"`
	AgeContext      string `csv:"age_context"`
	MatchConfidence string `csv:"match_confidence"`
}

func toMatchRow(m match.Match) matchRowModel {
	return matchRowModel{
		Date:            m.Date.Format(matchDateLayout),
		TeamAKey:        m.TeamAKey,
		TeamAName:       m.TeamAName,
		TeamBKey:        m.TeamBKey,
		TeamBName:       m.TeamBName,
		ScoreA:          m.ScoreA,
		ScoreB:          m.ScoreB,
		Competition:     m.Competition,
		SourceURL:       m.SourceURL,
		AgeContext:      m.AgeContext,
		MatchConfidence: m.MatchConfidence,
	}
}

func fromMatchRow(row matchRowModel) (match.Match, error) {
	date, err := time.Parse(matchDateLayout, row.Date)
	if err != nil {
		return match.Match{}, crerr.Wrapf(err, "parse date %q", row.Date)
	}

	m := match.Match{
		Date:            date.UTC(),
		TeamAKey:        row.TeamAKey,
		TeamAName:       row.TeamAName,
		TeamBKey:        row.TeamBKey,
		TeamBName:       row.TeamBName,
		ScoreA:          row.ScoreA,
		ScoreB:          row.ScoreB,
		Competition:     row.Competition,
		SourceURL:       row.SourceURL,
		AgeContext:      row.AgeContext,
		MatchConfidence: row.MatchConfidence,
	}
	if err := m.Validate(); err != nil {
		return match.Match{}, err
	}
	return m, nil
}
