package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/copperpitch/youthrank/internal/app"
)

var (
	scrapeMatchesDivision       string
	scrapeMatchesWorkers        int
	scrapeMatchesTimeoutSeconds int
)

var scrapeMatchesCmd = &cobra.Command{
	Use:   "scrape-matches",
	Short: "Scrape per-team match histories into the gold CSV",
	RunE:  runScrapeMatches,
}

func init() {
	scrapeMatchesCmd.Flags().StringVar(&scrapeMatchesDivision, "division", "", "division key, e.g. az_boys_u11")
	scrapeMatchesCmd.Flags().IntVar(&scrapeMatchesWorkers, "workers", 0, "worker pool size (0 uses MAX_WORKERS)")
	scrapeMatchesCmd.Flags().IntVar(&scrapeMatchesTimeoutSeconds, "timeout-seconds", 0, "per-request timeout (0 uses HTTP_TIMEOUT_SECONDS)")
}

func runScrapeMatches(cmd *cobra.Command, _ []string) error {
	divisionKey, err := requiredDivision(scrapeMatchesDivision)
	if err != nil {
		return err
	}
	if err := positiveFlag("workers", scrapeMatchesWorkers); err != nil {
		return err
	}
	if err := positiveFlag("timeout-seconds", scrapeMatchesTimeoutSeconds); err != nil {
		return err
	}

	result, err := application.ScrapeMatches(cmd.Context(), divisionKey, app.ScrapeMatchesOptions{
		Workers: scrapeMatchesWorkers,
		Timeout: time.Duration(scrapeMatchesTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return err
	}

	renderMatchesSummary(os.Stdout, result)
	return nil
}
