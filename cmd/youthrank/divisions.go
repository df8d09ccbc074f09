package main

import (
	"os"

	"github.com/spf13/cobra"
)

var divisionsCmd = &cobra.Command{
	Use:   "divisions",
	Short: "List the registered divisions",
	RunE:  runDivisions,
}

func runDivisions(*cobra.Command, []string) error {
	renderDivisions(os.Stdout, application.Divisions())
	return nil
}
