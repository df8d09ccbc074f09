package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/copperpitch/youthrank/internal/domain/division"
	"github.com/copperpitch/youthrank/internal/usecase"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func renderRosterSummary(w io.Writer, result usecase.RosterResult) {
	fmt.Fprintf(w, "%s: %d teams written to bronze (%d without an external id)\n",
		result.Division.Key, result.Written, result.Skipped)
}

func renderMatchesSummary(w io.Writer, result usecase.MatchesResult) {
	fmt.Fprintf(w, "%s: %d teams attempted, %d succeeded, %d zero-match, %d failed, %d gold rows\n",
		result.Division.Key, result.Attempted, result.Succeeded, result.ZeroMatch, result.Failed, result.Rows)
}

func renderRankTable(w io.Writer, result usecase.RankResult, top int) {
	fmt.Fprintf(w, "%s: %d teams, %d matches in window, solver %s after %d iterations\n\n",
		result.Division.Key,
		result.Summary.Teams,
		result.Summary.Matches,
		convergenceWord(result.Summary.Converged),
		result.Summary.Iterations,
	)

	rows := result.Rows
	total := len(rows)
	if top > 0 && total > top {
		rows = rows[:top]
	}

	table := newTable(w)
	table.Header("RANK", "TEAM", "STATE", "GP", "W", "L", "T", "GF", "GA", "POWER", "ADJ", "STATUS")
	for _, row := range rows {
		table.Append(
			strconv.Itoa(row.Rank),
			row.TeamName,
			row.State,
			strconv.Itoa(row.GamesPlayed),
			strconv.Itoa(row.Wins),
			strconv.Itoa(row.Losses),
			strconv.Itoa(row.Ties),
			strconv.Itoa(row.GoalsFor),
			strconv.Itoa(row.GoalsAgainst),
			fmt.Sprintf("%.3f", row.PowerScore),
			fmt.Sprintf("%.3f", row.PowerScoreAdj),
			row.Status,
		)
	}
	table.Render()

	if len(rows) < total {
		fmt.Fprintf(w, "showing %d of %d teams\n", len(rows), total)
	}
}

func convergenceWord(converged bool) string {
	if converged {
		return "converged"
	}
	return "stopped at the iteration cap"
}

func renderDivisions(w io.Writer, divs []division.Division) {
	table := newTable(w)
	table.Header("KEY", "NAME", "STATE", "GENDER", "AGE", "ACTIVE")
	for _, d := range divs {
		table.Append(
			d.Key,
			d.Name,
			d.State,
			d.Gender,
			strconv.Itoa(d.Age),
			strconv.FormatBool(d.Active),
		)
	}
	table.Render()
}
