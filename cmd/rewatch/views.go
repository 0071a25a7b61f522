package main

import (
	"time"

	"rewatch/internal/catalog"
	"rewatch/internal/reconcile"
)

type resultView struct {
	EntryID string         `json:"entryId,omitempty"`
	Title   string         `json:"title"`
	Date    string         `json:"date,omitempty"`
	Outcome string         `json:"outcome"`
	Detail  string         `json:"detail,omitempty"`
	Entry   *catalog.Entry `json:"entry,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type summaryView struct {
	RunID      string       `json:"runId"`
	Kind       string       `json:"kind"`
	DryRun     bool         `json:"dryRun"`
	Saved      bool         `json:"saved"`
	StartedAt  time.Time    `json:"startedAt"`
	DurationMS int64        `json:"durationMs"`
	Processed  int          `json:"processed"`
	Added      int          `json:"added"`
	Updated    int          `json:"updated"`
	Known      int          `json:"known"`
	NotFound   int          `json:"notFound"`
	Unresolved int          `json:"unresolved"`
	Skipped    int          `json:"skipped"`
	Results    []resultView `json:"results"`
}

func newSummaryView(summary *reconcile.Summary) summaryView {
	c := summary.Counts
	view := summaryView{
		RunID:      summary.RunID,
		Kind:       summary.Kind,
		DryRun:     summary.DryRun,
		Saved:      summary.Saved,
		StartedAt:  summary.StartedAt,
		DurationMS: summary.Duration.Milliseconds(),
		Processed:  c.Processed,
		Added:      c.Added,
		Updated:    c.Updated,
		Known:      c.Known,
		NotFound:   c.NotFound,
		Unresolved: c.Unresolved,
		Skipped:    c.Skipped,
		Results:    make([]resultView, 0, len(summary.Results)),
	}
	for _, r := range summary.Results {
		if r.Outcome == reconcile.OutcomeHasData {
			continue
		}
		rv := resultView{
			EntryID: r.EntryID,
			Title:   r.Title,
			Date:    r.Date,
			Outcome: string(r.Outcome),
			Detail:  r.Detail,
			Entry:   r.Entry,
		}
		if r.Err != nil {
			rv.Error = r.Err.Error()
		}
		view.Results = append(view.Results, rv)
	}
	return view
}
