package main

import (
	"errors"
	"strings"
	"testing"

	"rewatch/internal/reconcile"
)

func TestRenderOutcomeLine(t *testing.T) {
	tests := []struct {
		name   string
		result reconcile.EntryResult
		want   string
	}{
		{
			name:   "added with date",
			result: reconcile.EntryResult{Title: "Se7en", Date: "2024-09-03", Outcome: reconcile.OutcomeAdded},
			want:   "  [ADDED]      Se7en (2024-09-03)",
		},
		{
			name:   "known with detail",
			result: reconcile.EntryResult{Title: "Heat", Outcome: reconcile.OutcomeKnown, Detail: "matched by title"},
			want:   "  [KNOWN]      Heat - matched by title",
		},
		{
			name:   "unresolved",
			result: reconcile.EntryResult{Title: "Dune", Outcome: reconcile.OutcomeUnresolved, Err: errors.New("timeout"), Detail: "timeout"},
			want:   "  [UNRESOLVED] Dune - timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderOutcomeLine(tt.result, false); got != tt.want {
				t.Fatalf("renderOutcomeLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderOutcomeLineColorizes(t *testing.T) {
	got := renderOutcomeLine(reconcile.EntryResult{Title: "Se7en", Outcome: reconcile.OutcomeAdded}, true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	refresh := &reconcile.Summary{Kind: "refresh", Counts: reconcile.Counts{Updated: 2, NotFound: 1}}
	if got := renderSummary(refresh); got != "Summary: 2 updated, 1 not found, 0 unresolved, 0 skipped" {
		t.Fatalf("unexpected refresh summary %q", got)
	}
	sync := &reconcile.Summary{Kind: "sync", DryRun: true, Counts: reconcile.Counts{Added: 1, Known: 3}}
	if got := renderSummary(sync); !strings.HasSuffix(got, "(dry run, nothing saved)") || !strings.Contains(got, "1 added, 3 already known") {
		t.Fatalf("unexpected sync summary %q", got)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(tableSpec{
		headers: []string{"Title", "Studio"},
		rows:    [][]string{{"Heat"}},
	})
	if !strings.Contains(out, "Heat") {
		t.Fatalf("missing row in %q", out)
	}
	if renderTable(tableSpec{}) != "" {
		t.Fatal("expected empty output without headers")
	}
}
