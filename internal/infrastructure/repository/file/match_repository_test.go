package file

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/copperpitch/youthrank/internal/domain/match"
	"github.com/copperpitch/youthrank/internal/usecase"
)

func TestMatchRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := NewMatchRepository(t.TempDir())
	rows := []match.Match{
		{
			Date:            time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			TeamAKey:        "15b fc tucson",
			TeamAName:       "Tucson FC 15B",
			TeamBKey:        "2015 phoenix rising",
			TeamBName:       "Phoenix Rising 2015",
			ScoreA:          1,
			ScoreB:          3,
			Competition:     "State League, Spring",
			SourceURL:       "https://system.gotsport.com/teams/81234",
			AgeContext:      match.AgeOwn,
			MatchConfidence: "fuzzy:0.91",
		},
		{
			Date:            time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC),
			TeamAKey:        "2015 phoenix rising",
			TeamAName:       "Phoenix Rising 2015",
			TeamBKey:        "ext::desert elite 2015",
			TeamBName:       "Desert Elite 2015",
			ScoreA:          2,
			ScoreB:          2,
			AgeContext:      match.AgeUnknown,
			MatchConfidence: "external:ext::desert elite 2015",
		},
	}

	require.NoError(t, repo.SaveMatches(context.Background(), "az_boys_u11", rows))

	got, err := repo.LoadMatches(context.Background(), "az_boys_u11")
	require.NoError(t, err)
	require.Equal(t, rows, got)

	raw, err := os.ReadFile(repo.Path("az_boys_u11"))
	require.NoError(t, err)
	header := strings.SplitN(string(raw), "\n", 2)[0]
	require.Equal(t,
		"date,team_a_key,team_a_name,team_b_key,team_b_name,score_a,score_b,competition,source_url,age_context,match_confidence",
		header)
}

func TestMatchRepositoryMissingFile(t *testing.T) {
	t.Parallel()

	repo := NewMatchRepository(t.TempDir())
	_, err := repo.LoadMatches(context.Background(), "az_boys_u11")
	require.True(t, errors.Is(err, usecase.ErrMalformedInput), "got %v", err)
}

func TestMatchRepositoryRejectsBadRows(t *testing.T) {
	t.Parallel()

	header := "date,team_a_key,team_a_name,team_b_key,team_b_name,score_a,score_b,competition,source_url,age_context,match_confidence"
	tests := []struct {
		name string
		row  string
	}{
		{name: "non-numeric score", row: "2026-03-14,a,A,b,B,three,1,,,own,exact"},
		{name: "unparseable date", row: "03/14/2026,a,A,b,B,3,1,,,own,exact"},
		{name: "unknown age context", row: "2026-03-14,a,A,b,B,3,1,,,adult,exact"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewMatchRepository(t.TempDir())
			content := header + "\n" + tt.row + "\n"
			require.NoError(t, os.WriteFile(repo.Path("az_boys_u11"), []byte(content), 0o644))

			_, err := repo.LoadMatches(context.Background(), "az_boys_u11")
			require.True(t, errors.Is(err, usecase.ErrMalformedInput), "got %v", err)
		})
	}
}
