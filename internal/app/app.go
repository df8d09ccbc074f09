package app

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/copperpitch/youthrank/external/gotsport"
	"github.com/copperpitch/youthrank/internal/config"
	"github.com/copperpitch/youthrank/internal/domain/division"
	"github.com/copperpitch/youthrank/internal/domain/ranking"
	"github.com/copperpitch/youthrank/internal/infrastructure/repository/file"
	idgen "github.com/copperpitch/youthrank/internal/platform/id"
	"github.com/copperpitch/youthrank/internal/platform/logging"
	"github.com/copperpitch/youthrank/internal/usecase"
)

// App wires the pipeline for the CLI: configuration, logger, division
// registry and the per-command service graphs.
type App struct {
	Config   config.Config
	Logger   *logging.Logger
	Registry *division.Registry

	ids idgen.Generator
	now func() time.Time
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, crerr.Wrap(err, "load config")
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		ids:      idgen.NewRandomGenerator(),
		now:      time.Now,
	}, nil
}

// buildRegistry loads the division set: the built-in Arizona ladder by
// default, or the configured divisions file. File records repeating a
// key collapse to the first occurrence before the registry is built.
func buildRegistry(cfg config.Config, logger *logging.Logger) (*division.Registry, error) {
	divs := division.BuiltIn(cfg.BaseURL)
	if cfg.DivisionsFile != "" {
		loaded, err := division.LoadFile(cfg.DivisionsFile)
		if err != nil {
			return nil, crerr.Mark(crerr.Wrap(err, "load divisions file"), usecase.ErrMalformedInput)
		}
		divs = collapseDuplicateKeys(loaded, logger)
	}

	registry, err := division.NewRegistry(divs)
	if err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "build division registry"), usecase.ErrMalformedInput)
	}
	return registry, nil
}

func collapseDuplicateKeys(divs []division.Division, logger *logging.Logger) []division.Division {
	seen := make(map[string]struct{}, len(divs))
	out := make([]division.Division, 0, len(divs))
	for _, d := range divs {
		if _, ok := seen[d.Key]; ok {
			logger.Warn("divisions file repeats a key, keeping the first record", "division", d.Key)
			continue
		}
		seen[d.Key] = struct{}{}
		out = append(out, d)
	}
	return out
}

// RunContext attaches a fresh run id for log correlation. A context
// already carrying one passes through, so the `all` command spans its
// stages with a single id.
func (a *App) RunContext(ctx context.Context) context.Context {
	if idgen.RunIDFromContext(ctx) != "" {
		return ctx
	}
	runID, err := a.ids.NewRunID()
	if err != nil {
		a.Logger.Warn("run id generation failed", "error", err)
		return ctx
	}
	return idgen.WithRunID(ctx, runID)
}

// Divisions returns the registered divisions in key order.
func (a *App) Divisions() []division.Division {
	keys := a.Registry.Keys()
	out := make([]division.Division, 0, len(keys))
	for _, key := range keys {
		if d, ok := a.Registry.Get(key); ok {
			out = append(out, d)
		}
	}
	return out
}

type ScrapeTeamsOptions struct {
	AllowEmpty bool
}

func (a *App) ScrapeTeams(ctx context.Context, divisionKey string, opts ScrapeTeamsOptions) (usecase.RosterResult, error) {
	ctx = a.RunContext(ctx)
	svc := usecase.NewRosterScrapeService(
		a.Registry,
		a.newProvider(a.Config.HTTPTimeout),
		file.NewRosterRepository(a.Config.BronzeDir()),
		a.Logger,
		a.now,
		usecase.RosterScrapeConfig{AllowEmpty: opts.AllowEmpty},
	)
	return svc.ScrapeRoster(ctx, divisionKey)
}

type ScrapeMatchesOptions struct {
	// Workers and Timeout override the configured values when positive.
	Workers int
	Timeout time.Duration
}

func (a *App) ScrapeMatches(ctx context.Context, divisionKey string, opts ScrapeMatchesOptions) (usecase.MatchesResult, error) {
	ctx = a.RunContext(ctx)

	timeout := a.Config.HTTPTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	workers := a.Config.MaxWorkers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	errorLog := file.NewErrorLog(a.Config.LogsDir(), divisionKey)
	defer errorLog.Close()

	svc := usecase.NewMatchScrapeService(
		a.Registry,
		a.newProvider(timeout),
		file.NewRosterRepository(a.Config.BronzeDir()),
		file.NewMatchRepository(a.Config.GoldDir()),
		file.NewProfileRepository(a.Config.CacheDir),
		errorLog,
		a.Logger,
		a.now,
		usecase.MatchScrapeConfig{
			MaxWorkers:    workers,
			FailThreshold: a.Config.FailThreshold,
		},
	)
	return svc.ScrapeMatches(ctx, divisionKey)
}

type RankOptions struct {
	// WindowDays overrides the configured match window when positive.
	WindowDays int
}

func (a *App) Rank(ctx context.Context, divisionKey string, opts RankOptions) (usecase.RankResult, error) {
	ctx = a.RunContext(ctx)

	cfg := ranking.DefaultConfig()
	cfg.WindowDays = a.Config.WindowDays
	if opts.WindowDays > 0 {
		cfg.WindowDays = opts.WindowDays
	}

	svc := usecase.NewRankingService(
		a.Registry,
		file.NewRosterRepository(a.Config.BronzeDir()),
		file.NewMatchRepository(a.Config.GoldDir()),
		file.NewRankingRepository(a.Config.OutputsDir()),
		a.Logger,
		cfg,
	)
	return svc.Rank(ctx, divisionKey)
}

func (a *App) newProvider(timeout time.Duration) *gotsport.Client {
	return gotsport.NewClient(gotsport.ClientConfig{
		BaseURL:         a.Config.BaseURL,
		RankingsBaseURL: a.Config.RankingsBaseURL,
		UserAgent:       a.Config.UserAgent,
		Timeout:         timeout,
		MaxRetries:      a.Config.MaxRetries,
		Logger:          a.Logger,
		Breaker:         a.Config.Breaker,
	})
}
