package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/copperpitch/youthrank/internal/app"
)

var (
	scrapeTeamsDivision   string
	scrapeTeamsAllowEmpty bool
)

var scrapeTeamsCmd = &cobra.Command{
	Use:   "scrape-teams",
	Short: "Scrape a division roster into the bronze CSV",
	RunE:  runScrapeTeams,
}

func init() {
	scrapeTeamsCmd.Flags().StringVar(&scrapeTeamsDivision, "division", "", "division key, e.g. az_boys_u11")
	scrapeTeamsCmd.Flags().BoolVar(&scrapeTeamsAllowEmpty, "allow-empty", false, "treat an empty upstream roster as a warned success")
}

func runScrapeTeams(cmd *cobra.Command, _ []string) error {
	divisionKey, err := requiredDivision(scrapeTeamsDivision)
	if err != nil {
		return err
	}

	result, err := application.ScrapeTeams(cmd.Context(), divisionKey, app.ScrapeTeamsOptions{
		AllowEmpty: scrapeTeamsAllowEmpty,
	})
	if err != nil {
		return err
	}

	renderRosterSummary(os.Stdout, result)
	return nil
}
