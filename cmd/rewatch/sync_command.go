package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rewatch/internal/dedup"
	"rewatch/internal/feed"
	"rewatch/internal/reconcile"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var count int
	var dryRun bool
	var resolve bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Add new podcast episodes from the feed to the catalog",
		Long: `Fetch the podcast feed, skip episodes the catalog already knows (same date
or same normalised title), and insert the rest at the front of the catalog.
With --resolve each new entry is enriched with TMDB metadata and its
streaming availability.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, cleanup, err := ctx.components(cmd.Context(), !dryRun)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			colorize := !jsonOutput && shouldColorize(out)
			driver, err := comps.driver(printingObserver(out, colorize, jsonOutput))
			if err != nil {
				return err
			}

			summary, runErr := driver.Sync(cmd.Context(), reconcile.SyncOptions{
				Count:   count,
				DryRun:  dryRun,
				Resolve: resolve,
			})
			return reportSummary(cmd, summary, runErr, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Only consider the newest N feed items (0 = all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without saving")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "Look up metadata and streaming availability for new entries")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run summary as JSON")
	return cmd
}

func reportSummary(cmd *cobra.Command, summary *reconcile.Summary, runErr error, jsonOutput bool) error {
	if summary == nil {
		return runErr
	}
	if jsonOutput {
		if err := writeJSON(cmd, newSummaryView(summary)); err != nil {
			return err
		}
		return runErr
	}
	if runErr == nil {
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
	}
	return runErr
}

func newLatestCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the newest feed episode and whether the catalog has it",
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, cleanup, err := ctx.components(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()
			cfg := comps.cfg

			client, err := feed.NewClient(cfg.Feed.URL, feed.WithTimeout(cfg.FeedTimeout()), feed.WithLogger(comps.logger))
			if err != nil {
				return err
			}
			items, err := client.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			builder, err := newFeedBuilder(cfg, comps.logger)
			if err != nil {
				return err
			}
			episodes, _ := builder.Build(items)
			if len(episodes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No movie episodes in the feed")
				return nil
			}
			latest := episodes[0]

			cat, err := comps.store.Load(cmd.Context())
			if err != nil {
				return err
			}
			matcher := dedup.NewMatcher(cat.Episodes, dedupOptions(cfg))
			reason := matcher.Reason(dedup.Item{Title: latest.Title, Date: latest.Date()})

			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"title":     latest.Title,
					"rawTitle":  latest.RawTitle,
					"date":      latest.Date(),
					"hosts":     latest.Hosts,
					"inCatalog": reason != dedup.ReasonNone,
					"matchedBy": string(reason),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Latest episode: %s\n", latest.Title)
			fmt.Fprintf(out, "Published:      %s\n", latest.Date())
			fmt.Fprintf(out, "Hosts:          %s\n", strings.Join(latest.Hosts, ", "))
			if reason == dedup.ReasonNone {
				fmt.Fprintln(out, "In catalog:     no (run `rewatch sync` to add it)")
			} else {
				fmt.Fprintf(out, "In catalog:     yes (matched by %s)\n", reason)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
