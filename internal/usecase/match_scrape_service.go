package usecase

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/copperpitch/youthrank/internal/domain/division"
	"github.com/copperpitch/youthrank/internal/domain/match"
	"github.com/copperpitch/youthrank/internal/domain/profile"
	"github.com/copperpitch/youthrank/internal/domain/team"
	"github.com/copperpitch/youthrank/internal/identity"
	"github.com/copperpitch/youthrank/internal/platform/cache"
	"github.com/copperpitch/youthrank/internal/platform/logging"
)

const (
	defaultMatchWorkers  = 6
	defaultFailThreshold = 0.10
	defaultJitterMin     = 1500 * time.Millisecond
	defaultJitterMax     = 3500 * time.Millisecond

	reasonProfileNotFound    = "profile_not_found"
	reasonMatchSchemaInvalid = "match_schema_invalid"
	reasonRateLimited        = "rate_limited"
	reasonFetchFailed        = "fetch_failed"
)

// ScrapeFailure is one durable error-log record. StatusCode stays zero
// for failures that never reached an HTTP response.
type ScrapeFailure struct {
	TS         time.Time
	Division   string
	TeamKey    string
	Attempt    int
	StatusCode int
	Reason     string
}

// scrapeErrorSink appends failures to the division's scrape error log.
type scrapeErrorSink interface {
	Append(failure ScrapeFailure) error
	Path() string
}

// httpStatusCarrier is satisfied by provider errors that carry an
// upstream HTTP status.
type httpStatusCarrier interface {
	HTTPStatus() int
}

type MatchScrapeConfig struct {
	MaxWorkers    int
	FailThreshold float64

	// JitterMin and JitterMax bound the per-team politeness delay.
	JitterMin time.Duration
	JitterMax time.Duration

	// Seed fixes the jitter sequence; zero seeds from the clock.
	Seed int64

	// Sleep is the delay wait. Tests swap it out; nil means a real
	// timer that aborts when the context does.
	Sleep func(ctx context.Context, d time.Duration) error
}

// MatchScrapeService runs stage two: per-team match history fetches
// fanned out over a bounded worker pool, funneled into one gold CSV.
type MatchScrapeService struct {
	registry *division.Registry
	provider ScrapeDataProvider
	rosters  team.Repository
	matches  match.Repository
	profiles profile.Repository
	errorLog scrapeErrorSink
	logger   *logging.Logger
	now      func() time.Time
	cfg      MatchScrapeConfig
	sleep    func(ctx context.Context, d time.Duration) error

	// searches memoizes SearchTeams responses by query for the run, so
	// pool workers chasing the same opponent share one upstream call.
	searches *cache.Store

	randMu sync.Mutex
	rand   *rand.Rand
}

func NewMatchScrapeService(
	registry *division.Registry,
	provider ScrapeDataProvider,
	rosters team.Repository,
	matches match.Repository,
	profiles profile.Repository,
	errorLog scrapeErrorSink,
	logger *logging.Logger,
	now func() time.Time,
	cfg MatchScrapeConfig,
) *MatchScrapeService {
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = defaultMatchWorkers
	}
	if cfg.FailThreshold <= 0 {
		cfg.FailThreshold = defaultFailThreshold
	}
	if cfg.JitterMin <= 0 {
		cfg.JitterMin = defaultJitterMin
	}
	if cfg.JitterMax <= 0 {
		cfg.JitterMax = defaultJitterMax
	}
	if cfg.JitterMax < cfg.JitterMin {
		cfg.JitterMax = cfg.JitterMin
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = now().UnixNano()
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	return &MatchScrapeService{
		registry: registry,
		provider: provider,
		rosters:  rosters,
		matches:  matches,
		profiles: profiles,
		errorLog: errorLog,
		logger:   logger,
		now:      now,
		cfg:      cfg,
		sleep:    sleep,
		searches: cache.NewStore(0),
		rand:     rand.New(rand.NewSource(seed)),
	}
}

// MatchesResult carries the stage-two counters. They stay populated
// even when the failure threshold trips so callers can report what the
// run saw before it was abandoned.
type MatchesResult struct {
	Division  division.Division
	Attempted int
	Succeeded int
	ZeroMatch int
	Failed    int
	Rows      int
}

// ScrapeMatches fans the division roster out over the worker pool and
// writes the deduplicated, sorted gold CSV. When more than
// FailThreshold of the attempted teams fail, nothing but the error log
// is written and ErrThresholdExceeded comes back.
func (s *MatchScrapeService) ScrapeMatches(ctx context.Context, divisionKey string) (MatchesResult, error) {
	d, ok := s.registry.Get(divisionKey)
	if !ok {
		return MatchesResult{}, crerr.Mark(crerr.Newf("division %q is not registered", divisionKey), ErrUnknownDivision)
	}

	roster, err := s.rosters.LoadRoster(ctx, d.Key)
	if err != nil {
		return MatchesResult{}, crerr.Wrapf(err, "load bronze roster division=%s", d.Key)
	}

	matcher, ages := s.buildOpponentMatcher(ctx, d, roster)

	seed, err := s.profiles.Load(ctx, d.Key)
	if err != nil {
		return MatchesResult{}, crerr.Wrapf(err, "load profile cache division=%s", d.Key)
	}
	store := profile.NewStore(seed)

	targets := make([]team.Team, 0, len(roster))
	for _, t := range roster {
		if t.HasExternalID() {
			targets = append(targets, t)
		}
	}
	if len(targets) < len(roster) {
		s.logger.InfoContext(ctx, "skipping teams without external ids",
			"division", d.Key,
			"skipped", len(roster)-len(targets),
		)
	}

	pool, err := ants.NewPool(s.cfg.MaxWorkers)
	if err != nil {
		return MatchesResult{}, crerr.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	results := make(chan []match.Match, len(targets))

	var attempted atomic.Int32
	var succeeded atomic.Int32
	var zeroMatch atomic.Int32
	var failed atomic.Int32

	var workers sync.WaitGroup
	for _, t := range targets {
		if ctx.Err() != nil {
			break
		}
		t := t
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if ctx.Err() != nil {
				return
			}
			attempted.Add(1)

			rows, ok := s.scrapeTeam(ctx, d, t, store, matcher, ages)
			switch {
			case !ok:
				failed.Add(1)
			case len(rows) == 0:
				zeroMatch.Add(1)
			default:
				succeeded.Add(1)
				results <- rows
			}
		}); err != nil {
			workers.Done()
			return MatchesResult{}, crerr.Wrap(err, "submit team to worker pool")
		}
	}

	workers.Wait()
	close(results)

	rows := make([]match.Match, 0, 256)
	for batch := range results {
		rows = append(rows, batch...)
	}

	match.Sort(rows)
	rows = match.Dedupe(rows)

	result := MatchesResult{
		Division:  d,
		Attempted: int(attempted.Load()),
		Succeeded: int(succeeded.Load()),
		ZeroMatch: int(zeroMatch.Load()),
		Failed:    int(failed.Load()),
		Rows:      len(rows),
	}

	if result.Attempted > 0 {
		frac := float64(result.Failed) / float64(result.Attempted)
		if frac > s.cfg.FailThreshold {
			s.logger.ErrorContext(ctx, "failure threshold exceeded, keeping previous gold data",
				"division", d.Key,
				"failed", result.Failed,
				"attempted", result.Attempted,
				"threshold", s.cfg.FailThreshold,
				"error_log", s.errorLog.Path(),
			)
			return result, crerr.Mark(
				crerr.Newf("%d of %d teams failed, above the %.2f threshold", result.Failed, result.Attempted, s.cfg.FailThreshold),
				ErrThresholdExceeded,
			)
		}
	}

	if err := s.matches.SaveMatches(ctx, d.Key, rows); err != nil {
		return result, crerr.Wrapf(err, "save gold matches division=%s", d.Key)
	}
	if err := s.profiles.Save(ctx, d.Key, store.Snapshot()); err != nil {
		return result, crerr.Wrapf(err, "save profile cache division=%s", d.Key)
	}

	s.logger.InfoContext(ctx, "match scrape complete",
		"division", d.Key,
		"attempted", result.Attempted,
		"succeeded", result.Succeeded,
		"zero_match", result.ZeroMatch,
		"failed", result.Failed,
		"rows", result.Rows,
	)

	return result, nil
}

// buildOpponentMatcher assembles the opponent registry from the own
// roster plus the adjacent-age rosters when their bronze files exist.
// First registration wins, so own-division keys shadow adjacent ones.
func (s *MatchScrapeService) buildOpponentMatcher(
	ctx context.Context,
	d division.Division,
	roster []team.Team,
) (*identity.Matcher, map[string]string) {
	entries := make([]identity.RegistryEntry, 0, len(roster)*2)
	ages := make(map[string]string, len(roster)*2)

	appendRoster := func(teams []team.Team, ageContext string) {
		for _, t := range teams {
			if _, ok := ages[t.Key]; ok {
				continue
			}
			ages[t.Key] = ageContext
			entries = append(entries, identity.RegistryEntry{Key: t.Key, DisplayName: t.Name})
		}
	}

	appendRoster(roster, match.AgeOwn)
	if older, ok := s.registry.Older(d); ok {
		if teams, err := s.rosters.LoadRoster(ctx, older.Key); err == nil {
			appendRoster(teams, match.AgeOlder)
		} else {
			s.logger.DebugContext(ctx, "adjacent roster unavailable", "division", older.Key, "error", err)
		}
	}
	if younger, ok := s.registry.Younger(d); ok {
		if teams, err := s.rosters.LoadRoster(ctx, younger.Key); err == nil {
			appendRoster(teams, match.AgeYounger)
		} else {
			s.logger.DebugContext(ctx, "adjacent roster unavailable", "division", younger.Key, "error", err)
		}
	}

	return identity.NewMatcher(entries, s.logger), ages
}

// scrapeTeam handles one roster team end to end. The bool reports
// whether the team counts as scraped; false means it failed and was
// recorded in the error log.
func (s *MatchScrapeService) scrapeTeam(
	ctx context.Context,
	d division.Division,
	t team.Team,
	store *profile.Store,
	matcher *identity.Matcher,
	ages map[string]string,
) ([]match.Match, bool) {
	if err := s.politenessDelay(ctx); err != nil {
		return nil, false
	}

	raws, err := s.fetchHistory(ctx, d, t, store)
	if err != nil {
		if ctx.Err() == nil {
			s.recordFailure(ctx, d, t.Key, 2, err)
		}
		return nil, false
	}

	return s.assembleRows(ctx, d, t, raws, matcher, ages), true
}

// fetchHistory resolves the team's platform profile and downloads its
// past matches. A 404 on a cached id invalidates the entry and
// re-resolves through search exactly once.
func (s *MatchScrapeService) fetchHistory(
	ctx context.Context,
	d division.Division,
	t team.Team,
	store *profile.Store,
) ([]ExternalMatch, error) {
	externalID, err := s.resolveProfile(ctx, t, store, false)
	if err != nil {
		return nil, err
	}

	raws, err := s.provider.FetchPastMatches(ctx, externalID)
	if err == nil {
		store.Put(t.Key, profile.Entry{ExternalID: externalID, LastVerifiedAt: s.now().UTC()})
		return raws, nil
	}
	if !crerr.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	s.recordFailure(ctx, d, t.Key, 1, err)
	store.Invalidate(t.Key)
	s.logger.InfoContext(ctx, "cached profile is stale, re-resolving via search",
		"division", d.Key,
		"team_key", t.Key,
	)

	freshID, err := s.resolveProfile(ctx, t, store, true)
	if err != nil {
		return nil, err
	}
	raws, err = s.provider.FetchPastMatches(ctx, freshID)
	if err != nil {
		return nil, err
	}
	store.Put(t.Key, profile.Entry{ExternalID: freshID, LastVerifiedAt: s.now().UTC()})
	return raws, nil
}

// resolveProfile returns the team's platform id: cache hit first, then
// the roster's own id, then a search with candidate selection at the
// overlap threshold.
func (s *MatchScrapeService) resolveProfile(
	ctx context.Context,
	t team.Team,
	store *profile.Store,
	forceSearch bool,
) (string, error) {
	if !forceSearch {
		if entry, ok := store.Get(t.Key); ok && entry.ExternalID != "" {
			return entry.ExternalID, nil
		}
		if t.ExternalID != "" {
			return t.ExternalID, nil
		}
	} else {
		s.searches.Delete(ctx, t.Name)
	}

	hits, err := s.searchTeams(ctx, t.Name)
	if err != nil {
		return "", err
	}

	cands := make([]identity.Candidate, 0, len(hits))
	for _, hit := range hits {
		cands = append(cands, identity.Candidate{Name: hit.Name, ExternalID: hit.ExternalID})
	}
	best, overlap, ok := identity.SelectCandidate(t.Name, cands, identity.SearchThreshold)
	if !ok {
		return "", crerr.Mark(
			crerr.Newf("no search candidate for %q cleared the %.2f overlap threshold", t.Name, identity.SearchThreshold),
			ErrProfileNotFound,
		)
	}

	s.logger.DebugContext(ctx, "profile resolved via search",
		"team_key", t.Key,
		"candidate", best.Name,
		"overlap", overlap,
	)
	store.Put(t.Key, profile.Entry{ExternalID: best.ExternalID, LastVerifiedAt: s.now().UTC()})
	return best.ExternalID, nil
}

func (s *MatchScrapeService) searchTeams(ctx context.Context, name string) ([]ExternalSearchHit, error) {
	value, err := s.searches.GetOrLoad(ctx, name, func(ctx context.Context) (any, error) {
		return s.provider.SearchTeams(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	hits, _ := value.([]ExternalSearchHit)
	return hits, nil
}

func (s *MatchScrapeService) assembleRows(
	ctx context.Context,
	d division.Division,
	t team.Team,
	raws []ExternalMatch,
	matcher *identity.Matcher,
	ages map[string]string,
) []match.Match {
	rows := make([]match.Match, 0, len(raws))
	for _, raw := range raws {
		row, err := s.assembleRow(t, raw, matcher, ages)
		if err != nil {
			s.appendFailure(ctx, ScrapeFailure{
				TS:       s.now().UTC(),
				Division: d.Key,
				TeamKey:  t.Key,
				Attempt:  1,
				Reason:   reasonMatchSchemaInvalid,
			})
			s.logger.WarnContext(ctx, "dropping invalid match row",
				"division", d.Key,
				"team_key", t.Key,
				"date", raw.Date,
				"opponent", raw.Opponent,
				"error", err,
			)
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *MatchScrapeService) assembleRow(
	t team.Team,
	raw ExternalMatch,
	matcher *identity.Matcher,
	ages map[string]string,
) (match.Match, error) {
	date, err := parseMatchDate(raw.Date)
	if err != nil {
		return match.Match{}, err
	}

	scoreFor, err := parseScore(raw.TeamScore)
	if err != nil {
		return match.Match{}, crerr.Wrap(err, "team score")
	}
	scoreAgainst, err := parseScore(raw.OpponentScore)
	if err != nil {
		return match.Match{}, crerr.Wrap(err, "opponent score")
	}

	res, err := matcher.Match(raw.Opponent)
	if err != nil {
		return match.Match{}, crerr.Mark(crerr.Wrap(err, "opponent"), ErrMatchSchemaInvalid)
	}

	ageContext, ok := ages[res.Key]
	if !ok {
		ageContext = match.AgeUnknown
	}

	opponentName := res.DisplayName
	if opponentName == "" {
		opponentName = strings.TrimSpace(raw.Opponent)
	}

	row := match.Match{
		Date:            date,
		TeamAKey:        t.Key,
		TeamAName:       t.Name,
		TeamBKey:        res.Key,
		TeamBName:       opponentName,
		ScoreA:          scoreFor,
		ScoreB:          scoreAgainst,
		Competition:     raw.Competition,
		SourceURL:       raw.SourceURL,
		AgeContext:      ageContext,
		MatchConfidence: res.ConfidenceLabel(),
	}
	return row.Canonical(), nil
}

func (s *MatchScrapeService) politenessDelay(ctx context.Context) error {
	s.randMu.Lock()
	jitter := s.cfg.JitterMin
	if span := int64(s.cfg.JitterMax - s.cfg.JitterMin); span > 0 {
		jitter += time.Duration(s.rand.Int63n(span + 1))
	}
	s.randMu.Unlock()
	return s.sleep(ctx, jitter)
}

// recordFailure classifies err and appends it to the error log.
func (s *MatchScrapeService) recordFailure(ctx context.Context, d division.Division, teamKey string, attempt int, err error) {
	failure := ScrapeFailure{
		TS:       s.now().UTC(),
		Division: d.Key,
		TeamKey:  teamKey,
		Attempt:  attempt,
		Reason:   reasonForError(err),
	}
	var carrier httpStatusCarrier
	if crerr.As(err, &carrier) {
		failure.StatusCode = carrier.HTTPStatus()
	}
	s.appendFailure(ctx, failure)
}

func (s *MatchScrapeService) appendFailure(ctx context.Context, failure ScrapeFailure) {
	if err := s.errorLog.Append(failure); err != nil {
		s.logger.ErrorContext(ctx, "error log append failed",
			"division", failure.Division,
			"team_key", failure.TeamKey,
			"error", err,
		)
	}
}

func reasonForError(err error) string {
	switch {
	case crerr.Is(err, ErrProfileNotFound):
		return reasonProfileNotFound
	case crerr.Is(err, ErrRateLimited):
		return reasonRateLimited
	default:
		return reasonFetchFailed
	}
}

func parseMatchDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, crerr.Mark(crerr.New("date is missing"), ErrMatchSchemaInvalid)
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, crerr.Mark(crerr.Newf("unparseable date %q", value), ErrMatchSchemaInvalid)
}

func parseScore(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, crerr.Mark(crerr.New("score is missing"), ErrMatchSchemaInvalid)
	}
	score, err := strconv.Atoi(value)
	if err != nil {
		return 0, crerr.Mark(crerr.Newf("non-numeric score %q", value), ErrMatchSchemaInvalid)
	}
	if score < 0 {
		return 0, crerr.Mark(crerr.Newf("negative score %d", score), ErrMatchSchemaInvalid)
	}
	return score, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
