package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rewatch/internal/catalog"
	"rewatch/internal/reconcile"
	"rewatch/internal/streaming"
)

func newStreamingCommand(ctx *commandContext) *cobra.Command {
	streamingCmd := &cobra.Command{
		Use:   "streaming",
		Short: "Streaming availability lookups",
	}

	streamingCmd.AddCommand(newStreamingRefreshCommand(ctx))
	streamingCmd.AddCommand(newStreamingResolveCommand(ctx))

	return streamingCmd
}

func newStreamingRefreshCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var all bool
	var staleDays int
	var ids []string
	var dryRun bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-resolve streaming availability for catalog entries",
		Long: `By default only entries without any streaming data are looked up.
--all looks up every entry; --stale DAYS looks up licensed entries whose last
check is older than DAYS (0 uses audit.stale_days); --id restricts the run to
specific entries.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, cleanup, err := ctx.components(cmd.Context(), !dryRun)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := reconcile.RefreshOptions{
				Limit:  limit,
				All:    all,
				IDs:    ids,
				DryRun: dryRun,
			}
			if cmd.Flags().Changed("stale") {
				if staleDays < 0 {
					return errors.New("--stale must be zero or positive")
				}
				opts.Stale = true
				opts.StaleDays = staleDays
				if opts.StaleDays == 0 {
					opts.StaleDays = comps.cfg.Audit.StaleDays
				}
			}

			out := cmd.OutOrStdout()
			colorize := !jsonOutput && shouldColorize(out)
			driver, err := comps.driver(printingObserver(out, colorize, jsonOutput))
			if err != nil {
				return err
			}
			summary, runErr := driver.Refresh(cmd.Context(), opts)
			return reportSummary(cmd, summary, runErr, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of lookups (0 = no limit)")
	cmd.Flags().BoolVar(&all, "all", false, "Refresh every entry, including those with streaming data")
	cmd.Flags().IntVar(&staleDays, "stale", 0, "Refresh licensed entries not checked for more than DAYS days")
	cmd.Flags().StringSliceVar(&ids, "id", nil, "Refresh only these entry ids")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without saving")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run summary as JSON")
	return cmd
}

func newStreamingResolveCommand(ctx *commandContext) *cobra.Command {
	var year int
	var studioCode string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resolve TITLE",
		Short: "Look up streaming availability for one title without touching the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, cleanup, err := ctx.components(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			query := streaming.Query{
				Title:  strings.Join(args, " "),
				Year:   year,
				Studio: strings.ToLower(strings.TrimSpace(studioCode)),
			}
			res := comps.resolver.Resolve(cmd.Context(), query)

			if jsonOutput {
				return writeJSON(cmd, newResolutionView(query, res))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:      %s\n", query.Title)
			fmt.Fprintf(out, "Outcome:    %s\n", res.Outcome)
			if res.Candidate != nil {
				fmt.Fprintf(out, "Matched:    %s (%d)\n", res.Candidate.Title, res.Candidate.ReleaseYear)
			}
			if res.Native != "" {
				fmt.Fprintf(out, "Native:     %s\n", res.Native)
			}
			fmt.Fprintf(out, "Services:   %s\n", joinOrNone(serviceList(res.Streaming)))
			fmt.Fprintf(out, "Rent/Buy:   %s\n", joinOrNone(res.Streaming.RentBuy))
			if res.Err != nil {
				fmt.Fprintf(out, "Error:      %v\n", res.Err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Release year used to disambiguate candidates")
	cmd.Flags().StringVar(&studioCode, "studio", "", "Studio code for native service inference")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type resolutionView struct {
	Title        string            `json:"title"`
	Year         int               `json:"year,omitempty"`
	Studio       string            `json:"studio,omitempty"`
	Outcome      string            `json:"outcome"`
	MatchedTitle string            `json:"matchedTitle,omitempty"`
	MatchedYear  int               `json:"matchedYear,omitempty"`
	Native       string            `json:"native,omitempty"`
	Streaming    catalog.Streaming `json:"streaming"`
	Error        string            `json:"error,omitempty"`
}

func newResolutionView(q streaming.Query, res streaming.Resolution) resolutionView {
	view := resolutionView{
		Title:     q.Title,
		Year:      q.Year,
		Studio:    q.Studio,
		Outcome:   string(res.Outcome),
		Native:    string(res.Native),
		Streaming: res.Streaming,
	}
	if view.Streaming.RentBuy == nil {
		view.Streaming.RentBuy = []string{}
	}
	if res.Candidate != nil {
		view.MatchedTitle = res.Candidate.Title
		view.MatchedYear = res.Candidate.ReleaseYear
	}
	if res.Err != nil {
		view.Error = res.Err.Error()
	}
	return view
}

func serviceList(state catalog.Streaming) []string {
	subs := state.Subscriptions()
	out := make([]string, 0, len(subs))
	for _, svc := range subs {
		out = append(out, string(svc))
	}
	return out
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
