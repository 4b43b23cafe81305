package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/chalskim/adSTTS/models"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

var jobColumns = []string{"started", "kind", "status", "took", "engine", "output / error"}

// jobRow renders one job as cells in jobColumns order.
func jobRow(j models.Job) []string {
	result := j.Output
	if j.Status == models.StatusFailed {
		result = j.Error
	}
	return []string{
		j.CreatedAt.Local().Format(timeLayout),
		string(j.Kind),
		string(j.Status),
		humanDuration(j.Duration()),
		j.Engine,
		truncate(result, 80),
	}
}

func writeJobs(w io.Writer, jobs []models.Job) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, col := range jobColumns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw)
	for _, j := range jobs {
		for i, cell := range jobRow(j) {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func statusColor(s models.JobStatus) tcell.Color {
	switch s {
	case models.StatusDone:
		return tcell.ColorGreen
	case models.StatusFailed:
		return tcell.ColorRed
	}
	return tcell.ColorYellow
}

func makeJobTable(jobs []models.Job) *tview.Table {
	table := tview.NewTable().SetBorders(false).SetFixed(1, 0)
	for c, col := range jobColumns {
		table.SetCell(0, c, tview.NewTableCell(col).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}
	for r, j := range jobs {
		for c, cell := range jobRow(j) {
			tc := tview.NewTableCell(cell).SetTextColor(tcell.ColorWhite)
			if c == 2 {
				tc.SetTextColor(statusColor(j.Status))
			}
			if c == len(jobColumns)-1 {
				tc.SetExpansion(1)
			}
			table.SetCell(r+1, c, tc)
		}
	}
	table.SetSelectable(true, false)
	return table
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("limit")
		jobs, err := store.ListJobs(n)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs yet.")
			return nil
		}
		return writeJobs(os.Stdout, jobs)
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of jobs to show")
	rootCmd.AddCommand(historyCmd)
}
