package usecase

import (
	"context"
	"sort"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/copperpitch/youthrank/internal/domain/division"
	"github.com/copperpitch/youthrank/internal/domain/team"
	"github.com/copperpitch/youthrank/internal/identity"
	"github.com/copperpitch/youthrank/internal/platform/logging"
)

// ScrapeDataProvider is the slice of the ranking platform the scrape
// services consume.
type ScrapeDataProvider interface {
	FetchRoster(ctx context.Context, d division.Division) ([]ExternalRosterEntry, error)
	FetchPastMatches(ctx context.Context, externalID string) ([]ExternalMatch, error)
	SearchTeams(ctx context.Context, query string) ([]ExternalSearchHit, error)
}

// ExternalRosterEntry is one upstream roster row before normalization.
type ExternalRosterEntry struct {
	Name       string
	ExternalID string
	Club       string
	State      string
}

// ExternalMatch is one unparsed past-match row. Dates and scores stay
// text until row assembly validates them, so malformed rows can be
// logged with their original values.
type ExternalMatch struct {
	Date          string
	Opponent      string
	TeamScore     string
	OpponentScore string
	Competition   string
	HomeAway      string
	SourceURL     string
}

// ExternalSearchHit is one profile-search candidate.
type ExternalSearchHit struct {
	Name       string
	ExternalID string
}

type RosterScrapeConfig struct {
	// AllowEmpty downgrades an empty upstream roster from an error to a
	// warned empty success.
	AllowEmpty bool
}

type RosterScrapeService struct {
	registry *division.Registry
	provider ScrapeDataProvider
	rosters  team.Repository
	logger   *logging.Logger
	now      func() time.Time
	cfg      RosterScrapeConfig
}

func NewRosterScrapeService(
	registry *division.Registry,
	provider ScrapeDataProvider,
	rosters team.Repository,
	logger *logging.Logger,
	now func() time.Time,
	cfg RosterScrapeConfig,
) *RosterScrapeService {
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &RosterScrapeService{
		registry: registry,
		provider: provider,
		rosters:  rosters,
		logger:   logger,
		now:      now,
		cfg:      cfg,
	}
}

type RosterResult struct {
	Division division.Division
	Teams    []team.Team
	Written  int
	// Skipped counts roster rows kept in bronze without an external id;
	// the match scraper cannot discover them.
	Skipped int
}

// ScrapeRoster runs stage one: fetch the division roster, normalize
// names to keys, collapse duplicates and write the bronze CSV.
func (s *RosterScrapeService) ScrapeRoster(ctx context.Context, divisionKey string) (RosterResult, error) {
	d, ok := s.registry.Get(divisionKey)
	if !ok {
		return RosterResult{}, crerr.Mark(crerr.Newf("division %q is not registered", divisionKey), ErrUnknownDivision)
	}

	entries, err := s.provider.FetchRoster(ctx, d)
	if err != nil {
		if !crerr.Is(err, ErrEmptyUpstream) || !s.cfg.AllowEmpty {
			return RosterResult{}, err
		}
		s.logger.WarnContext(ctx, "upstream roster is empty, continuing", "division", d.Key)
		entries = nil
	}

	scrapedAt := s.now().UTC()
	teams := make([]team.Team, 0, len(entries))
	for _, entry := range entries {
		key := identity.TeamKey(entry.Name)
		if key == "" {
			s.logger.WarnContext(ctx, "dropping roster row with no usable name", "division", d.Key)
			continue
		}
		state := entry.State
		if state == "" {
			state = d.State
		}
		teams = append(teams, team.Team{
			Key:        key,
			Name:       entry.Name,
			Club:       entry.Club,
			State:      state,
			ExternalID: entry.ExternalID,
			ScrapedAt:  scrapedAt,
		})
	}

	teams = team.Dedupe(teams)
	sort.SliceStable(teams, func(i, j int) bool { return teams[i].Key < teams[j].Key })

	skipped := 0
	for _, t := range teams {
		if t.HasExternalID() {
			continue
		}
		skipped++
		s.logger.WarnContext(ctx, "team has no external id",
			"division", d.Key,
			"team_key", t.Key,
			"reason", "external_id_missing",
		)
	}

	if len(teams) == 0 && !s.cfg.AllowEmpty {
		return RosterResult{}, crerr.Mark(crerr.Newf("division %s produced no roster rows", d.Key), ErrEmptyUpstream)
	}

	if err := s.rosters.SaveRoster(ctx, d.Key, teams); err != nil {
		return RosterResult{}, crerr.Wrapf(err, "save roster division=%s", d.Key)
	}

	s.logger.InfoContext(ctx, "roster scrape complete",
		"division", d.Key,
		"teams", len(teams),
		"without_external_id", skipped,
	)

	return RosterResult{
		Division: d,
		Teams:    teams,
		Written:  len(teams),
		Skipped:  skipped,
	}, nil
}
