package usecase

import (
	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/copperpitch/youthrank/internal/domain/division"
	"github.com/copperpitch/youthrank/internal/domain/match"
	"github.com/copperpitch/youthrank/internal/domain/ranking"
	"github.com/copperpitch/youthrank/internal/domain/team"
	"github.com/copperpitch/youthrank/internal/platform/logging"
)

type RankingService struct {
	registry *division.Registry
	rosters  team.Repository
	matches  match.Repository
	rankings ranking.Repository
	logger   *logging.Logger
	cfg      ranking.Config
}

func NewRankingService(
	registry *division.Registry,
	rosters team.Repository,
	matches match.Repository,
	rankings ranking.Repository,
	logger *logging.Logger,
	cfg ranking.Config,
) *RankingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RankingService{
		registry: registry,
		rosters:  rosters,
		matches:  matches,
		rankings: rankings,
		logger:   logger,
		cfg:      cfg,
	}
}

type RankResult struct {
	Division     division.Division
	Rows         []ranking.Row
	Connectivity []ranking.ConnectivityRow
	Summary      ranking.Summary
}

// Rank loads one division's gold matches and bronze roster, runs the
// rating engine over them and writes the rankings and connectivity
// reports. Adjacent-age rosters are pulled in when their bronze files
// exist so cross-age opponents keep their own identity.
func (s *RankingService) Rank(ctx context.Context, divisionKey string) (RankResult, error) {
	d, ok := s.registry.Get(divisionKey)
	if !ok {
		return RankResult{}, crerr.Mark(crerr.Newf("division %q is not registered", divisionKey), ErrUnknownDivision)
	}

	matches, err := s.matches.LoadMatches(ctx, d.Key)
	if err != nil {
		return RankResult{}, err
	}
	roster, err := s.rosters.LoadRoster(ctx, d.Key)
	if err != nil {
		return RankResult{}, err
	}

	in := ranking.Input{
		DivisionState: d.State,
		Roster:        toTeamInfos(roster),
		Older:         s.adjacentRoster(ctx, d, s.registry.Older),
		Younger:       s.adjacentRoster(ctx, d, s.registry.Younger),
		Matches:       matches,
	}

	out, err := ranking.Compute(s.cfg, in)
	if err != nil {
		if crerr.Is(err, ranking.ErrEmptyRoster) {
			return RankResult{}, crerr.Mark(
				crerr.Newf("roster for division %s is empty; run scrape-teams first", d.Key),
				ErrMalformedInput,
			)
		}
		return RankResult{}, crerr.Wrapf(err, "rank division=%s", d.Key)
	}

	if err := s.rankings.SaveRankings(ctx, d.Key, out.Rows); err != nil {
		return RankResult{}, crerr.Wrapf(err, "save rankings division=%s", d.Key)
	}
	if err := s.rankings.SaveConnectivity(ctx, d.Key, out.Connectivity); err != nil {
		return RankResult{}, crerr.Wrapf(err, "save connectivity division=%s", d.Key)
	}

	s.logger.InfoContext(ctx, "rank complete",
		"division", d.Key,
		"teams", out.Summary.Teams,
		"matches", out.Summary.Matches,
		"window_start", out.Summary.WindowStart.Format("2006-01-02"),
		"as_of", out.Summary.AsOf.Format("2006-01-02"),
		"iterations", out.Summary.Iterations,
		"converged", out.Summary.Converged,
		"mean_abs_delta", out.Summary.MeanAbsDelta,
	)
	if !out.Summary.Converged {
		s.logger.WarnContext(ctx, "solver stopped at iteration cap before converging",
			"division", d.Key,
			"iterations", out.Summary.Iterations,
			"mean_abs_delta", out.Summary.MeanAbsDelta,
		)
	}
	s.flagSmallComponents(ctx, d.Key, out.Connectivity)

	return RankResult{
		Division:     d,
		Rows:         out.Rows,
		Connectivity: out.Connectivity,
		Summary:      out.Summary,
	}, nil
}

// adjacentRoster loads a neighboring division's bronze roster. The
// neighbor may not be registered or scraped yet, so every failure
// degrades to a nil map.
func (s *RankingService) adjacentRoster(
	ctx context.Context,
	d division.Division,
	pick func(division.Division) (division.Division, bool),
) map[string]ranking.TeamInfo {
	adj, ok := pick(d)
	if !ok {
		return nil
	}
	roster, err := s.rosters.LoadRoster(ctx, adj.Key)
	if err != nil {
		s.logger.DebugContext(ctx, "adjacent roster unavailable",
			"division", d.Key,
			"adjacent", adj.Key,
			"error", err.Error(),
		)
		return nil
	}

	out := make(map[string]ranking.TeamInfo, len(roster))
	for _, t := range roster {
		if _, exists := out[t.Key]; !exists {
			out[t.Key] = ranking.TeamInfo{Key: t.Key, Name: t.Name, State: t.State}
		}
	}
	return out
}

func (s *RankingService) flagSmallComponents(ctx context.Context, divisionKey string, rows []ranking.ConnectivityRow) {
	flagged := make(map[int]int)
	for _, row := range rows {
		if row.ComponentSize < 3 {
			flagged[row.ComponentID] = row.ComponentSize
		}
	}
	for id, size := range flagged {
		s.logger.WarnContext(ctx, "opponent graph component is too small to compare",
			"division", divisionKey,
			"component_id", id,
			"component_size", size,
		)
	}
}

func toTeamInfos(roster []team.Team) []ranking.TeamInfo {
	infos := make([]ranking.TeamInfo, 0, len(roster))
	for _, t := range roster {
		infos = append(infos, ranking.TeamInfo{Key: t.Key, Name: t.Name, State: t.State})
	}
	return infos
}
