package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	crerr "github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/copperpitch/youthrank/internal/app"
	"github.com/copperpitch/youthrank/internal/usecase"
)

var application *app.App

var rootCmd = &cobra.Command{
	Use:           "youthrank",
	Short:         "Youth soccer division scraping and ranking pipeline",
	Long:          "Scrape division rosters and match histories from the tournament platform, then rank teams by iterative opponent strength.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		var err error
		application, err = app.New()
		return err
	},
}

func init() {
	// Parse failures map to the invalid-arguments exit code instead of
	// the generic failure one.
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return crerr.Mark(err, usecase.ErrInvalidArgument)
	})

	rootCmd.AddCommand(scrapeTeamsCmd)
	rootCmd.AddCommand(scrapeMatchesCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(divisionsCmd)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "youthrank: load .env: %v\n", err)
		os.Exit(app.ExitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "youthrank: %v\n", err)
		os.Exit(app.ExitCode(err))
	}
}

// requiredDivision enforces --division in RunE rather than through
// MarkFlagRequired so the error carries the invalid-arguments class.
func requiredDivision(value string) (string, error) {
	division := strings.TrimSpace(value)
	if division == "" {
		return "", crerr.Mark(crerr.New("--division is required"), usecase.ErrInvalidArgument)
	}
	return division, nil
}

func positiveFlag(name string, value int) error {
	if value < 0 {
		return crerr.Mark(crerr.Newf("--%s must not be negative, got %d", name, value), usecase.ErrInvalidArgument)
	}
	return nil
}
