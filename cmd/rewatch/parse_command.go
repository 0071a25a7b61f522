package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rewatch/internal/studio"
	"rewatch/internal/textutil"
	"rewatch/internal/title"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var showPasses bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "parse RAW_TITLE",
		Short: "Parse a raw feed title into movie title, hosts and slug",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			raw := strings.Join(args, " ")
			parsed, steps := title.New(cfg.Feed.ShowPrefix).Trace(raw)
			slug := textutil.Slug(parsed.Title)

			if jsonOutput {
				payload := map[string]any{
					"raw":   raw,
					"title": parsed.Title,
					"hosts": parsed.Hosts,
					"slug":  slug,
				}
				if showPasses {
					payload["passes"] = steps
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if showPasses {
				rows := make([][]string, 0, len(steps))
				for i, step := range steps {
					rows = append(rows, []string{fmt.Sprintf("%d", i+1), step.Name, step.Output})
				}
				fmt.Fprintln(out, renderTable(tableSpec{
					headers: []string{"#", "Pass", "Output"},
					rows:    rows,
					aligns:  []columnAlignment{alignRight, alignLeft, alignLeft},
				}))
			}
			fmt.Fprintf(out, "Title: %s\n", parsed.Title)
			fmt.Fprintf(out, "Hosts: %s\n", joinOrNone(parsed.Hosts))
			fmt.Fprintf(out, "Slug:  %s\n", slug)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPasses, "passes", false, "Show the output of each normalisation pass")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newStudioCommand(ctx *commandContext) *cobra.Command {
	var listRules bool

	cmd := &cobra.Command{
		Use:   "studio [TEXT...]",
		Short: "Classify production-company text into a studio code",
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := ctx.studioTables()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if listRules || len(args) == 0 {
				rows := make([][]string, 0)
				for i, rule := range tables.Keywords() {
					native := ""
					if svc, ok := tables.NativeService(rule.Code); ok {
						native = string(svc)
					}
					rows = append(rows, []string{fmt.Sprintf("%d", i+1), rule.Keyword, rule.Code, native})
				}
				fmt.Fprintln(out, renderTable(tableSpec{
					title:   "Keyword priority (first match wins)",
					headers: []string{"#", "Keyword", "Studio", "Native Service"},
					rows:    rows,
					aligns:  []columnAlignment{alignRight},
				}))
				return nil
			}

			code := studio.NewClassifier(tables).ClassifyAll(args...)
			fmt.Fprintf(out, "Studio: %s\n", code)
			if svc, ok := tables.NativeService(code); ok {
				fmt.Fprintf(out, "Native: %s\n", svc)
			} else {
				fmt.Fprintln(out, "Native: none (licensed)")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&listRules, "rules", false, "List the keyword rules in priority order")
	return cmd
}
