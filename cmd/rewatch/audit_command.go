package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"rewatch/internal/audit"
	"rewatch/internal/catalog"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var staleDays int
	var allStudios bool
	var showStats bool
	var showNative bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Report entries whose streaming data is stale",
		Long: `List licensed entries (studios without a native streaming service) whose
last streaming check is older than --stale DAYS, oldest first. Entries that
were never checked sort first. --all-studios includes native studios,
--stats prints catalog-wide counts, and --native lists native-studio entries
with the state of their native flag.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, cleanup, err := ctx.components(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			cat, err := comps.store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("stale") {
				staleDays = comps.cfg.Audit.StaleDays
			}

			now := time.Now()
			auditor := comps.auditor
			var stale []audit.Record
			if allStudios {
				stale = auditor.AllStale(cat.Episodes, now, staleDays)
			} else {
				stale = auditor.Stale(cat.Episodes, now, staleDays)
			}

			report := auditReport{StaleDays: staleDays, Stale: stale}
			if showStats {
				stats := auditor.Stats(cat.Episodes)
				report.Stats = &stats
			}
			if showNative {
				report.Native = auditor.NativeStatus(cat.Episodes, now)
			}

			if jsonOutput {
				return writeJSON(cmd, newAuditView(report))
			}
			renderAudit(cmd.OutOrStdout(), report, allStudios, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().IntVar(&staleDays, "stale", 0, "Staleness threshold in days (default audit.stale_days)")
	cmd.Flags().BoolVar(&allStudios, "all-studios", false, "Include native-studio entries in the stale list")
	cmd.Flags().BoolVar(&showStats, "stats", false, "Show catalog statistics")
	cmd.Flags().BoolVar(&showNative, "native", false, "Show native-studio entries and their native flag")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type auditReport struct {
	StaleDays int
	Stale     []audit.Record
	Stats     *audit.Stats
	Native    []audit.Record
}

func renderAudit(out io.Writer, report auditReport, allStudios, colorize bool) {
	scope := "licensed"
	if allStudios {
		scope = "all"
	}
	for _, line := range renderSectionHeader(fmt.Sprintf("Stale %s entries (> %d days)", scope, report.StaleDays), colorize) {
		fmt.Fprintln(out, line)
	}
	if len(report.Stale) == 0 {
		fmt.Fprintln(out, "Nothing stale")
	} else {
		rows := make([][]string, 0, len(report.Stale))
		for _, rec := range report.Stale {
			rows = append(rows, []string{rec.Title, rec.Studio, checkLabel(rec), ageLabel(rec)})
		}
		fmt.Fprintln(out, renderTable(tableSpec{
			headers: []string{"Title", "Studio", "Last Check", "Days"},
			rows:    rows,
			aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			footer:  []string{fmt.Sprintf("%d entries", len(report.Stale))},
		}))
	}

	if report.Stats != nil {
		fmt.Fprintln(out)
		renderStats(out, *report.Stats, colorize)
	}

	if report.Native != nil {
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader("Native studios", colorize) {
			fmt.Fprintln(out, line)
		}
		rows := make([][]string, 0, len(report.Native))
		missing := len(audit.MissingNative(report.Native))
		for _, rec := range report.Native {
			rows = append(rows, []string{rec.Title, rec.Studio, string(rec.NativeService), yesNo(rec.HasNative)})
		}
		fmt.Fprintln(out, renderTable(tableSpec{
			headers: []string{"Title", "Studio", "Native Service", "Flag Set"},
			rows:    rows,
			footer:  []string{fmt.Sprintf("%d entries, %d missing flag", len(report.Native), missing)},
		}))
	}
}

func renderStats(out io.Writer, stats audit.Stats, colorize bool) {
	for _, line := range renderSectionHeader("Catalog statistics", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		headers: []string{"Metric", "Count"},
		rows: [][]string{
			{"Total entries", strconv.Itoa(stats.Total)},
			{"Native studio", strconv.Itoa(stats.NativeCount)},
			{"Licensed", strconv.Itoa(stats.LicensedCount)},
			{"Rent/buy only", strconv.Itoa(stats.RentBuyOnly)},
			{"No streaming data", strconv.Itoa(stats.NoData)},
		},
		aligns: []columnAlignment{alignLeft, alignRight},
	}))
	fmt.Fprintln(out, renderTable(tableSpec{
		title:   "By service",
		headers: []string{"Service", "Entries"},
		rows:    countRows(stats.ServiceCounts()),
		aligns:  []columnAlignment{alignLeft, alignRight},
	}))
	fmt.Fprintln(out, renderTable(tableSpec{
		title:   "By studio",
		headers: []string{"Studio", "Entries"},
		rows:    countRows(stats.StudioCounts()),
		aligns:  []columnAlignment{alignLeft, alignRight},
	}))
}

func countRows(counts []audit.Count) [][]string {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Key, strconv.Itoa(c.Count)})
	}
	return rows
}

func checkLabel(rec audit.Record) string {
	if rec.LastCheck == "" {
		return "never"
	}
	return rec.LastCheck
}

func ageLabel(rec audit.Record) string {
	if !rec.AgeKnown() {
		return "-"
	}
	return strconv.Itoa(rec.DaysSinceCheck)
}

type auditRecordView struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Studio         string `json:"studio"`
	LastCheck      string `json:"lastStreamingCheck"`
	DaysSinceCheck *int   `json:"daysSinceCheck"`
	NativeService  string `json:"nativeService,omitempty"`
	HasNative      bool   `json:"hasNative"`
}

type auditStatsView struct {
	Total         int            `json:"total"`
	NativeCount   int            `json:"native"`
	LicensedCount int            `json:"licensed"`
	RentBuyOnly   int            `json:"rentBuyOnly"`
	NoData        int            `json:"noData"`
	ByStudio      map[string]int `json:"byStudio"`
	ByService     map[string]int `json:"byService"`
}

type auditView struct {
	StaleDays int               `json:"staleDays"`
	Stale     []auditRecordView `json:"stale"`
	Stats     *auditStatsView   `json:"stats,omitempty"`
	Native    []auditRecordView `json:"native,omitempty"`
}

func newAuditView(report auditReport) auditView {
	view := auditView{
		StaleDays: report.StaleDays,
		Stale:     recordViews(report.Stale),
	}
	if report.Native != nil {
		view.Native = recordViews(report.Native)
	}
	if s := report.Stats; s != nil {
		byService := make(map[string]int, len(s.ByService))
		for _, svc := range catalog.Services() {
			byService[string(svc)] = s.ByService[svc]
		}
		view.Stats = &auditStatsView{
			Total:         s.Total,
			NativeCount:   s.NativeCount,
			LicensedCount: s.LicensedCount,
			RentBuyOnly:   s.RentBuyOnly,
			NoData:        s.NoData,
			ByStudio:      s.ByStudio,
			ByService:     byService,
		}
	}
	return view
}

func recordViews(records []audit.Record) []auditRecordView {
	out := make([]auditRecordView, 0, len(records))
	for _, rec := range records {
		view := auditRecordView{
			ID:            rec.ID,
			Title:         rec.Title,
			Studio:        rec.Studio,
			LastCheck:     rec.LastCheck,
			NativeService: string(rec.NativeService),
			HasNative:     rec.HasNative,
		}
		if rec.AgeKnown() {
			days := rec.DaysSinceCheck
			view.DaysSinceCheck = &days
		}
		out = append(out, view)
	}
	return out
}
