package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"rewatch/internal/reconcile"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const outcomeLabelWidth = 12

func outcomeLabel(outcome reconcile.Outcome) string {
	switch outcome {
	case reconcile.OutcomeAdded:
		return "ADDED"
	case reconcile.OutcomeKnown:
		return "KNOWN"
	case reconcile.OutcomeSkipped:
		return "SKIPPED"
	case reconcile.OutcomeHasData:
		return "HAS DATA"
	case reconcile.OutcomeUpdated:
		return "UPDATED"
	case reconcile.OutcomeNotFound:
		return "NOT FOUND"
	case reconcile.OutcomeUnresolved:
		return "UNRESOLVED"
	default:
		return strings.ToUpper(string(outcome))
	}
}

func outcomeColor(outcome reconcile.Outcome) string {
	switch outcome {
	case reconcile.OutcomeAdded, reconcile.OutcomeUpdated:
		return ansiGreen
	case reconcile.OutcomeNotFound:
		return ansiYellow
	case reconcile.OutcomeUnresolved:
		return ansiRed
	case reconcile.OutcomeKnown:
		return ansiBlue
	default:
		return ""
	}
}

// renderOutcomeLine formats one per-entry result.
func renderOutcomeLine(result reconcile.EntryResult, colorize bool) string {
	label := fmt.Sprintf("[%s]", outcomeLabel(result.Outcome))
	subject := result.Title
	if result.Date != "" {
		subject = fmt.Sprintf("%s (%s)", subject, result.Date)
	}
	line := fmt.Sprintf("  %-*s %s", outcomeLabelWidth, label, subject)
	if result.Detail != "" {
		line += " - " + result.Detail
	}
	if colorize {
		if color := outcomeColor(result.Outcome); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

// renderSummary formats the closing line of a run.
func renderSummary(summary *reconcile.Summary) string {
	c := summary.Counts
	var parts []string
	switch summary.Kind {
	case "sync":
		parts = []string{
			fmt.Sprintf("%d added", c.Added),
			fmt.Sprintf("%d already known", c.Known),
			fmt.Sprintf("%d skipped", c.Skipped),
		}
	default:
		parts = []string{
			fmt.Sprintf("%d updated", c.Updated),
			fmt.Sprintf("%d not found", c.NotFound),
			fmt.Sprintf("%d unresolved", c.Unresolved),
			fmt.Sprintf("%d skipped", c.Skipped),
		}
	}
	line := "Summary: " + strings.Join(parts, ", ")
	if summary.DryRun {
		line += " (dry run, nothing saved)"
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printingObserver writes an outcome line per result. Entries skipped
// because they already have streaming data are only counted.
func printingObserver(out io.Writer, colorize, quiet bool) reconcile.Observer {
	return reconcile.ObserverFunc(func(result reconcile.EntryResult) {
		if quiet || result.Outcome == reconcile.OutcomeHasData {
			return
		}
		fmt.Fprintln(out, renderOutcomeLine(result, colorize))
	})
}
