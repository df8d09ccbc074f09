package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/copperpitch/youthrank/internal/app"
)

var (
	allDivision       string
	allAllowEmpty     bool
	allWorkers        int
	allTimeoutSeconds int
	allWindowDays     int
	allTop            int
)

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run scrape-teams, scrape-matches and rank in order",
	RunE:  runAll,
}

func init() {
	allCmd.Flags().StringVar(&allDivision, "division", "", "division key, e.g. az_boys_u11")
	allCmd.Flags().BoolVar(&allAllowEmpty, "allow-empty", false, "treat an empty upstream roster as a warned success")
	allCmd.Flags().IntVar(&allWorkers, "workers", 0, "worker pool size (0 uses MAX_WORKERS)")
	allCmd.Flags().IntVar(&allTimeoutSeconds, "timeout-seconds", 0, "per-request timeout (0 uses HTTP_TIMEOUT_SECONDS)")
	allCmd.Flags().IntVar(&allWindowDays, "window-days", 0, "match window in days (0 uses WINDOW_DAYS)")
	allCmd.Flags().IntVar(&allTop, "top", 20, "ranking rows to print (0 prints the full table)")
}

func runAll(cmd *cobra.Command, _ []string) error {
	divisionKey, err := requiredDivision(allDivision)
	if err != nil {
		return err
	}
	for name, value := range map[string]int{
		"workers":         allWorkers,
		"timeout-seconds": allTimeoutSeconds,
		"window-days":     allWindowDays,
		"top":             allTop,
	} {
		if err := positiveFlag(name, value); err != nil {
			return err
		}
	}

	// One run id spans all three stages.
	ctx := application.RunContext(cmd.Context())

	roster, err := application.ScrapeTeams(ctx, divisionKey, app.ScrapeTeamsOptions{
		AllowEmpty: allAllowEmpty,
	})
	if err != nil {
		return err
	}
	renderRosterSummary(os.Stdout, roster)

	matches, err := application.ScrapeMatches(ctx, divisionKey, app.ScrapeMatchesOptions{
		Workers: allWorkers,
		Timeout: time.Duration(allTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return err
	}
	renderMatchesSummary(os.Stdout, matches)

	ranked, err := application.Rank(ctx, divisionKey, app.RankOptions{
		WindowDays: allWindowDays,
	})
	if err != nil {
		return err
	}
	renderRankTable(os.Stdout, ranked, allTop)
	return nil
}
