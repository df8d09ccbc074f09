package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/copperpitch/youthrank/internal/domain/division"
	"github.com/copperpitch/youthrank/internal/domain/match"
	"github.com/copperpitch/youthrank/internal/domain/profile"
	"github.com/copperpitch/youthrank/internal/domain/team"
	"github.com/copperpitch/youthrank/internal/platform/logging"
)

type stubMatchProvider struct {
	mu          sync.Mutex
	pastByID    map[string][]ExternalMatch
	pastErrByID map[string]error
	searchHits  []ExternalSearchHit
	searchErr   error
	searchCalls int
}

func (s *stubMatchProvider) FetchRoster(context.Context, division.Division) ([]ExternalRosterEntry, error) {
	return nil, nil
}

func (s *stubMatchProvider) FetchPastMatches(_ context.Context, externalID string) ([]ExternalMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.pastErrByID[externalID]; ok {
		return nil, err
	}
	return s.pastByID[externalID], nil
}

func (s *stubMatchProvider) SearchTeams(context.Context, string) ([]ExternalSearchHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchCalls++
	return s.searchHits, s.searchErr
}

type stubMatchRepo struct {
	mu      sync.Mutex
	saved   map[string][]match.Match
	loadErr error
}

func (s *stubMatchRepo) SaveMatches(_ context.Context, divisionKey string, rows []match.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string][]match.Match)
	}
	s.saved[divisionKey] = rows
	return nil
}

func (s *stubMatchRepo) LoadMatches(_ context.Context, divisionKey string) ([]match.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.saved[divisionKey], nil
}

type stubProfileRepo struct {
	seed  map[string]profile.Entry
	saved map[string]profile.Entry
}

func (s *stubProfileRepo) Load(context.Context, string) (map[string]profile.Entry, error) {
	return s.seed, nil
}

func (s *stubProfileRepo) Save(_ context.Context, _ string, entries map[string]profile.Entry) error {
	s.saved = entries
	return nil
}

type stubErrorSink struct {
	mu       sync.Mutex
	failures []ScrapeFailure
}

func (s *stubErrorSink) Append(failure ScrapeFailure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure)
	return nil
}

func (s *stubErrorSink) Path() string { return "logs/scrape_errors_az_boys_u11.log" }

func (s *stubErrorSink) byReason(reason string) []ScrapeFailure {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ScrapeFailure, 0, len(s.failures))
	for _, f := range s.failures {
		if f.Reason == reason {
			out = append(out, f)
		}
	}
	return out
}

func azU11Roster() []team.Team {
	return []team.Team{
		{Key: "15b fc tucson", Name: "Tucson FC 15B", State: "AZ", ExternalID: "55410"},
		{Key: "2015 phoenix rising", Name: "Phoenix Rising 2015", State: "AZ", ExternalID: "81234"},
	}
}

func newMatchService(
	t *testing.T,
	provider ScrapeDataProvider,
	rosters *stubRosterRepo,
	matches *stubMatchRepo,
	profiles *stubProfileRepo,
	sink *stubErrorSink,
) *MatchScrapeService {
	t.Helper()
	return NewMatchScrapeService(
		testRegistry(t), provider, rosters, matches, profiles, sink,
		logging.NewNop(), fixedClock(t),
		MatchScrapeConfig{
			MaxWorkers:    2,
			FailThreshold: 0.10,
			Seed:          1,
			Sleep:         func(context.Context, time.Duration) error { return nil },
		},
	)
}

func TestMatchScrapeService_ScrapeMatches_MirroredFixturesCollapse(t *testing.T) {
	t.Parallel()

	provider := &stubMatchProvider{pastByID: map[string][]ExternalMatch{
		"81234": {
			{Date: "2026-03-14", Opponent: "Tucson FC 15B", TeamScore: "3", OpponentScore: "1", Competition: "State League"},
			{Date: "2026-03-21", Opponent: "Scottsdale Blast 2014", TeamScore: "0", OpponentScore: "2"},
		},
		"55410": {
			{Date: "2026-03-14", Opponent: "Phoenix Rising 2015", TeamScore: "1", OpponentScore: "3", Competition: "State League"},
		},
	}}
	rosters := &stubRosterRepo{rosters: map[string][]team.Team{
		"az_boys_u11": azU11Roster(),
		"az_boys_u12": {{Key: "2014 blast scottsdale", Name: "Scottsdale Blast 2014", State: "AZ", ExternalID: "70001"}},
	}}
	matchRepo := &stubMatchRepo{}
	profileRepo := &stubProfileRepo{}
	sink := &stubErrorSink{}

	svc := newMatchService(t, provider, rosters, matchRepo, profileRepo, sink)
	result, err := svc.ScrapeMatches(context.Background(), "az_boys_u11")
	if err != nil {
		t.Fatalf("ScrapeMatches error: %v", err)
	}

	if result.Attempted != 2 || result.Succeeded != 2 || result.Failed != 0 {
		t.Fatalf("unexpected counters: %+v", result)
	}
	if result.Rows != 2 {
		t.Fatalf("expected 2 gold rows after mirror dedupe, got=%d", result.Rows)
	}

	saved := matchRepo.saved["az_boys_u11"]
	if len(saved) != 2 {
		t.Fatalf("expected 2 saved rows, got=%d", len(saved))
	}

	derby := saved[0]
	if derby.TeamAKey != "15b fc tucson" || derby.TeamBKey != "2015 phoenix rising" {
		t.Fatalf("row 0 sides not canonical: %+v", derby)
	}
	if derby.ScoreA != 1 || derby.ScoreB != 3 {
		t.Fatalf("scores must follow the key swap, got %d-%d", derby.ScoreA, derby.ScoreB)
	}
	if derby.AgeContext != match.AgeOwn || derby.MatchConfidence != "exact" {
		t.Fatalf("derby context=%q confidence=%q", derby.AgeContext, derby.MatchConfidence)
	}

	crossAge := saved[1]
	if crossAge.TeamAKey != "2014 blast scottsdale" || crossAge.AgeContext != match.AgeOlder {
		t.Fatalf("cross-age row wrong: %+v", crossAge)
	}

	if len(profileRepo.saved) != 2 {
		t.Fatalf("expected both profiles cached, got=%v", profileRepo.saved)
	}
	if e := profileRepo.saved["2015 phoenix rising"]; e.ExternalID != "81234" || !e.LastVerifiedAt.Equal(fixedClock(t)()) {
		t.Fatalf("phoenix cache entry wrong: %+v", e)
	}
}

func TestMatchScrapeService_ScrapeMatches_StaleCachedProfile(t *testing.T) {
	t.Parallel()

	provider := &stubMatchProvider{
		pastByID: map[string][]ExternalMatch{
			"99999": {{Date: "2026-03-14", Opponent: "Out Of State FC", TeamScore: "2", OpponentScore: "2"}},
		},
		pastErrByID: map[string]error{
			"dead": crerr.Mark(crerr.New("profile removed"), ErrProfileNotFound),
		},
		searchHits: []ExternalSearchHit{
			{Name: "Phoenix Rising 2015", ExternalID: "99999"},
			{Name: "Phoenix Premier 2013", ExternalID: "11111"},
		},
	}
	rosters := &stubRosterRepo{rosters: map[string][]team.Team{
		"az_boys_u11": {{Key: "2015 phoenix rising", Name: "Phoenix Rising 2015", State: "AZ", ExternalID: "81234"}},
	}}
	matchRepo := &stubMatchRepo{}
	profileRepo := &stubProfileRepo{seed: map[string]profile.Entry{
		"2015 phoenix rising": {ExternalID: "dead"},
	}}
	sink := &stubErrorSink{}

	svc := newMatchService(t, provider, rosters, matchRepo, profileRepo, sink)
	result, err := svc.ScrapeMatches(context.Background(), "az_boys_u11")
	if err != nil {
		t.Fatalf("ScrapeMatches error: %v", err)
	}

	if result.Succeeded != 1 || result.Failed != 0 {
		t.Fatalf("stale profile should recover via search: %+v", result)
	}
	if provider.searchCalls != 1 {
		t.Fatalf("expected exactly 1 search call, got=%d", provider.searchCalls)
	}

	notFound := sink.byReason("profile_not_found")
	if len(notFound) != 1 || notFound[0].Attempt != 1 {
		t.Fatalf("expected one first-attempt profile_not_found entry, got=%+v", notFound)
	}

	if e := profileRepo.saved["2015 phoenix rising"]; e.ExternalID != "99999" {
		t.Fatalf("cache should hold the re-resolved id, got=%+v", e)
	}

	saved := matchRepo.saved["az_boys_u11"]
	if len(saved) != 1 || saved[0].MatchConfidence != "external:ext::fc of out state" {
		t.Fatalf("unexpected gold rows: %+v", saved)
	}
}

func TestMatchScrapeService_ScrapeMatches_ThresholdExceeded(t *testing.T) {
	t.Parallel()

	provider := &stubMatchProvider{pastErrByID: map[string]error{
		"55410": crerr.New("upstream down"),
		"81234": crerr.New("upstream down"),
	}}
	rosters := &stubRosterRepo{rosters: map[string][]team.Team{"az_boys_u11": azU11Roster()}}
	matchRepo := &stubMatchRepo{}
	sink := &stubErrorSink{}

	svc := newMatchService(t, provider, rosters, matchRepo, &stubProfileRepo{}, sink)
	result, err := svc.ScrapeMatches(context.Background(), "az_boys_u11")
	if !crerr.Is(err, ErrThresholdExceeded) {
		t.Fatalf("expected ErrThresholdExceeded, got %v", err)
	}

	if result.Attempted != 2 || result.Failed != 2 {
		t.Fatalf("counters must survive the threshold trip: %+v", result)
	}
	if len(matchRepo.saved) != 0 {
		t.Fatal("gold CSV must not be written past the threshold")
	}
	if got := sink.byReason("fetch_failed"); len(got) != 2 {
		t.Fatalf("expected 2 fetch_failed entries, got=%d", len(got))
	}
}

func TestMatchScrapeService_ScrapeMatches_InvalidRowDropped(t *testing.T) {
	t.Parallel()

	provider := &stubMatchProvider{pastByID: map[string][]ExternalMatch{
		"81234": {
			{Date: "2026-03-14", Opponent: "Tucson FC 15B", TeamScore: "3", OpponentScore: "1"},
			{Date: "2026-03-15", Opponent: "Tucson FC 15B", TeamScore: "three", OpponentScore: "1"},
		},
	}}
	rosters := &stubRosterRepo{rosters: map[string][]team.Team{
		"az_boys_u11": {{Key: "2015 phoenix rising", Name: "Phoenix Rising 2015", State: "AZ", ExternalID: "81234"}},
	}}
	matchRepo := &stubMatchRepo{}
	sink := &stubErrorSink{}

	svc := newMatchService(t, provider, rosters, matchRepo, &stubProfileRepo{}, sink)
	result, err := svc.ScrapeMatches(context.Background(), "az_boys_u11")
	if err != nil {
		t.Fatalf("ScrapeMatches error: %v", err)
	}

	if result.Succeeded != 1 || result.Rows != 1 {
		t.Fatalf("valid row should survive alongside a dropped one: %+v", result)
	}
	if got := sink.byReason("match_schema_invalid"); len(got) != 1 {
		t.Fatalf("expected 1 match_schema_invalid entry, got=%d", len(got))
	}
}

func TestMatchScrapeService_ScrapeMatches_ZeroMatchTeam(t *testing.T) {
	t.Parallel()

	provider := &stubMatchProvider{pastByID: map[string][]ExternalMatch{"81234": {}}}
	rosters := &stubRosterRepo{rosters: map[string][]team.Team{
		"az_boys_u11": {{Key: "2015 phoenix rising", Name: "Phoenix Rising 2015", State: "AZ", ExternalID: "81234"}},
	}}
	matchRepo := &stubMatchRepo{}

	svc := newMatchService(t, provider, rosters, matchRepo, &stubProfileRepo{}, &stubErrorSink{})
	result, err := svc.ScrapeMatches(context.Background(), "az_boys_u11")
	if err != nil {
		t.Fatalf("ScrapeMatches error: %v", err)
	}

	if result.ZeroMatch != 1 || result.Succeeded != 0 || result.Failed != 0 {
		t.Fatalf("zero-history team must count as zero-match, not failure: %+v", result)
	}
	if saved, ok := matchRepo.saved["az_boys_u11"]; !ok || len(saved) != 0 {
		t.Fatalf("an empty gold file should still be written, saved=%v", matchRepo.saved)
	}
}

func TestMatchScrapeService_ScrapeMatches_UnknownDivision(t *testing.T) {
	t.Parallel()

	svc := newMatchService(t, &stubMatchProvider{}, &stubRosterRepo{}, &stubMatchRepo{}, &stubProfileRepo{}, &stubErrorSink{})
	_, err := svc.ScrapeMatches(context.Background(), "nv_boys_u11")
	if !crerr.Is(err, ErrUnknownDivision) {
		t.Fatalf("expected ErrUnknownDivision, got %v", err)
	}
}
