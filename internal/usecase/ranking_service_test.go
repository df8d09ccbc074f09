package usecase

import (
	"context"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/copperpitch/youthrank/internal/domain/match"
	"github.com/copperpitch/youthrank/internal/domain/ranking"
	"github.com/copperpitch/youthrank/internal/domain/team"
	"github.com/copperpitch/youthrank/internal/platform/logging"
)

type stubRankingRepo struct {
	rankings     map[string][]ranking.Row
	connectivity map[string][]ranking.ConnectivityRow
}

func (s *stubRankingRepo) SaveRankings(_ context.Context, divisionKey string, rows []ranking.Row) error {
	if s.rankings == nil {
		s.rankings = make(map[string][]ranking.Row)
	}
	s.rankings[divisionKey] = rows
	return nil
}

func (s *stubRankingRepo) SaveConnectivity(_ context.Context, divisionKey string, rows []ranking.ConnectivityRow) error {
	if s.connectivity == nil {
		s.connectivity = make(map[string][]ranking.ConnectivityRow)
	}
	s.connectivity[divisionKey] = rows
	return nil
}

func derbyMatches() []match.Match {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	row := func(date time.Time, scoreTucson, scorePhoenix int) match.Match {
		return match.Match{
			Date:            date,
			TeamAKey:        "15b fc tucson",
			TeamAName:       "Tucson FC 15B",
			TeamBKey:        "2015 phoenix rising",
			TeamBName:       "Phoenix Rising 2015",
			ScoreA:          scoreTucson,
			ScoreB:          scorePhoenix,
			AgeContext:      match.AgeOwn,
			MatchConfidence: "exact",
		}
	}
	return []match.Match{
		row(day(7), 0, 3),
		row(day(14), 1, 1),
		row(day(21), 1, 2),
	}
}

func TestRankingService_Rank(t *testing.T) {
	t.Parallel()

	rosters := &stubRosterRepo{rosters: map[string][]team.Team{"az_boys_u11": azU11Roster()}}
	matchRepo := &stubMatchRepo{saved: map[string][]match.Match{"az_boys_u11": derbyMatches()}}
	rankingRepo := &stubRankingRepo{}

	svc := NewRankingService(testRegistry(t), rosters, matchRepo, rankingRepo, logging.NewNop(), ranking.DefaultConfig())
	result, err := svc.Rank(context.Background(), "az_boys_u11")
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}

	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 ranked teams, got=%d", len(result.Rows))
	}
	if result.Rows[0].Rank != 1 || result.Rows[1].Rank != 2 {
		t.Fatalf("ranks must be dense from 1: %+v", result.Rows)
	}
	keys := map[string]bool{result.Rows[0].TeamKey: true, result.Rows[1].TeamKey: true}
	if !keys["2015 phoenix rising"] || !keys["15b fc tucson"] {
		t.Fatalf("both roster teams should be ranked, got=%v", keys)
	}
	if result.Rows[0].PowerScoreAdj < result.Rows[1].PowerScoreAdj {
		t.Fatalf("rows out of order: %f < %f", result.Rows[0].PowerScoreAdj, result.Rows[1].PowerScoreAdj)
	}
	if result.Summary.Teams != 2 || result.Summary.Matches != 3 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}

	if got := rankingRepo.rankings["az_boys_u11"]; len(got) != 2 {
		t.Fatalf("rankings not persisted, got=%v", got)
	}
	conn := rankingRepo.connectivity["az_boys_u11"]
	if len(conn) != 2 {
		t.Fatalf("connectivity not persisted, got=%v", conn)
	}
	if conn[0].ComponentID != conn[1].ComponentID {
		t.Fatalf("both teams play each other, expected one component: %+v", conn)
	}
}

func TestRankingService_Rank_UnknownDivision(t *testing.T) {
	t.Parallel()

	svc := NewRankingService(testRegistry(t), &stubRosterRepo{}, &stubMatchRepo{}, &stubRankingRepo{}, logging.NewNop(), ranking.DefaultConfig())
	_, err := svc.Rank(context.Background(), "ut_boys_u11")
	if !crerr.Is(err, ErrUnknownDivision) {
		t.Fatalf("expected ErrUnknownDivision, got %v", err)
	}
}

func TestRankingService_Rank_MissingGold(t *testing.T) {
	t.Parallel()

	matchRepo := &stubMatchRepo{loadErr: crerr.Mark(crerr.New("gold matches missing"), ErrMalformedInput)}
	svc := NewRankingService(testRegistry(t), &stubRosterRepo{}, matchRepo, &stubRankingRepo{}, logging.NewNop(), ranking.DefaultConfig())

	_, err := svc.Rank(context.Background(), "az_boys_u11")
	if !crerr.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestRankingService_Rank_EmptyRoster(t *testing.T) {
	t.Parallel()

	rosters := &stubRosterRepo{rosters: map[string][]team.Team{"az_boys_u11": {}}}
	matchRepo := &stubMatchRepo{saved: map[string][]match.Match{"az_boys_u11": {}}}
	svc := NewRankingService(testRegistry(t), rosters, matchRepo, &stubRankingRepo{}, logging.NewNop(), ranking.DefaultConfig())

	_, err := svc.Rank(context.Background(), "az_boys_u11")
	if !crerr.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput for an empty roster, got %v", err)
	}
}
