package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/copperpitch/youthrank/internal/app"
)

var (
	rankDivision   string
	rankWindowDays int
	rankTop        int
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank a division from its gold matches",
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().StringVar(&rankDivision, "division", "", "division key, e.g. az_boys_u11")
	rankCmd.Flags().IntVar(&rankWindowDays, "window-days", 0, "match window in days (0 uses WINDOW_DAYS)")
	rankCmd.Flags().IntVar(&rankTop, "top", 20, "rows to print (0 prints the full table)")
}

func runRank(cmd *cobra.Command, _ []string) error {
	divisionKey, err := requiredDivision(rankDivision)
	if err != nil {
		return err
	}
	if err := positiveFlag("window-days", rankWindowDays); err != nil {
		return err
	}
	if err := positiveFlag("top", rankTop); err != nil {
		return err
	}

	result, err := application.Rank(cmd.Context(), divisionKey, app.RankOptions{
		WindowDays: rankWindowDays,
	})
	if err != nil {
		return err
	}

	renderRankTable(os.Stdout, result, rankTop)
	return nil
}
