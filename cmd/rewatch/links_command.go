package main

import (
	"errors"

	"github.com/spf13/cobra"

	"rewatch/internal/reconcile"
)

func newLinksCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var all bool
	var ids []string
	var dryRun bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "links",
		Short: "Fill Apple Podcasts episode links for catalog entries",
		Long: `Search Apple Podcasts for each entry's episode and store the direct link.
By default only entries whose link is missing or points at the show page are
looked up. --all looks up every entry; --id restricts the run to specific
entries.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, cleanup, err := ctx.components(cmd.Context(), !dryRun)
			if err != nil {
				return err
			}
			defer cleanup()
			if !comps.cfg.ApplePodcasts.Enabled {
				return errors.New("apple podcasts lookup is disabled; set apple_podcasts.enabled = true")
			}

			out := cmd.OutOrStdout()
			colorize := !jsonOutput && shouldColorize(out)
			driver, err := comps.driver(printingObserver(out, colorize, jsonOutput))
			if err != nil {
				return err
			}
			summary, runErr := driver.Links(cmd.Context(), reconcile.LinksOptions{
				Limit:  limit,
				All:    all,
				IDs:    ids,
				DryRun: dryRun,
			})
			return reportSummary(cmd, summary, runErr, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of lookups (0 = no limit)")
	cmd.Flags().BoolVar(&all, "all", false, "Look up every entry, including those with an episode link")
	cmd.Flags().StringSliceVar(&ids, "id", nil, "Look up only these entry ids")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without saving")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run summary as JSON")
	return cmd
}
