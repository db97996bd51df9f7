package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hearth/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent hearth runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := journal.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				return writeHistoryJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := buildHistoryRows(runs)
			if isTerminal(out) {
				fmt.Fprintln(out, renderTable(
					[]string{"Started", "Command", "Status", "Duration", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			}
			for _, row := range rows {
				fmt.Fprintln(out, strings.Join(row, "  "))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func buildHistoryRows(runs []journal.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		detail := run.Detail
		if run.Status == journal.StatusFailed && run.Error != "" {
			detail = run.Error
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Command,
			string(run.Status),
			formatRunDuration(run),
			detail,
		})
	}
	return rows
}

func formatRunDuration(run journal.Run) string {
	if !run.Finished() {
		return "-"
	}
	return run.Duration().Round(time.Millisecond).String()
}

func writeHistoryJSON(cmd *cobra.Command, runs []journal.Run) error {
	type jsonRun struct {
		ID        string `json:"id"`
		Command   string `json:"command"`
		Detail    string `json:"detail"`
		Status    string `json:"status"`
		StartedAt string `json:"started_at"`
		EndedAt   string `json:"ended_at,omitempty"`
		Error     string `json:"error,omitempty"`
	}
	items := make([]jsonRun, 0, len(runs))
	for _, run := range runs {
		item := jsonRun{
			ID:        run.ID,
			Command:   run.Command,
			Detail:    run.Detail,
			Status:    string(run.Status),
			StartedAt: run.StartedAt.Format(time.RFC3339),
		}
		if !run.EndedAt.IsZero() {
			item.EndedAt = run.EndedAt.Format(time.RFC3339)
		}
		if run.Error != "" {
			item.Error = run.Error
		}
		items = append(items, item)
	}
	return writeJSON(cmd, map[string]any{"runs": items})
}
