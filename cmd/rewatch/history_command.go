package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rewatch/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var entryID string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "Show recent runs, the checks of one run, or the checks of one entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cmd.Context(), cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return showRun(cmd, store, strings.TrimSpace(args[0]), jsonOutput)
			}
			if id := strings.TrimSpace(entryID); id != "" {
				return showEntryChecks(cmd, store, id, limit, jsonOutput)
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.Kind,
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					runStatus(run),
					strconv.Itoa(run.Counts.Added),
					strconv.Itoa(run.Counts.Updated),
					strconv.Itoa(run.Counts.NotFound),
					strconv.Itoa(run.Counts.Unresolved),
				})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				headers: []string{"Run", "Kind", "Started", "Status", "Added", "Updated", "Not Found", "Unresolved"},
				rows:    rows,
				aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs or checks to show")
	cmd.Flags().StringVar(&entryID, "entry", "", "Show the streaming checks recorded for one entry id")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func showRun(cmd *cobra.Command, store *history.Store, id string, jsonOutput bool) error {
	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	if run == nil {
		return errors.New("run " + id + " not found")
	}
	checks, err := store.ChecksForRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	if jsonOutput {
		if checks == nil {
			checks = []history.Check{}
		}
		return writeJSON(cmd, map[string]any{"run": run, "checks": checks})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:      %s (%s)\n", run.ID, run.Kind)
	fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(out, "Status:   %s\n", runStatus(*run))
	if run.Error != "" {
		fmt.Fprintf(out, "Error:    %s\n", run.Error)
	}
	if len(checks) == 0 {
		fmt.Fprintln(out, "No streaming checks recorded for this run")
		return nil
	}
	rows := make([][]string, 0, len(checks))
	for _, check := range checks {
		rows = append(rows, []string{check.Title, check.Outcome, matchedLabel(check), joinOrNone(check.Services), joinOrNone(check.RentBuy)})
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		headers: []string{"Title", "Outcome", "Matched", "Services", "Rent/Buy"},
		rows:    rows,
	}))
	return nil
}

func showEntryChecks(cmd *cobra.Command, store *history.Store, entryID string, limit int, jsonOutput bool) error {
	checks, err := store.ChecksForEntry(cmd.Context(), entryID, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		if checks == nil {
			checks = []history.Check{}
		}
		return writeJSON(cmd, checks)
	}

	out := cmd.OutOrStdout()
	if len(checks) == 0 {
		fmt.Fprintf(out, "No streaming checks recorded for %s\n", entryID)
		return nil
	}
	rows := make([][]string, 0, len(checks))
	for _, check := range checks {
		rows = append(rows, []string{
			check.CheckedAt.Local().Format("2006-01-02 15:04"),
			check.RunID,
			check.Outcome,
			matchedLabel(check),
			joinOrNone(check.Services),
		})
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		title:   "Checks for " + entryID,
		headers: []string{"Checked", "Run", "Outcome", "Matched", "Services"},
		rows:    rows,
	}))
	return nil
}

func matchedLabel(check history.Check) string {
	if check.MatchedTitle != "" && check.MatchedYear > 0 {
		return fmt.Sprintf("%s (%d)", check.MatchedTitle, check.MatchedYear)
	}
	return check.MatchedTitle
}

func runStatus(run history.Run) string {
	status := run.Status
	if run.FinishedAt != nil {
		status += " in " + run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
	}
	if run.DryRun {
		status += " (dry run)"
	}
	return status
}
