package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rewatch/internal/catalog"
	"rewatch/internal/notifications"
	"rewatch/internal/services"
	"rewatch/internal/streaming"
)

// RefreshOptions selects the entries a streaming refresh looks up.
type RefreshOptions struct {
	// Limit caps the number of lookups. Zero means no cap.
	Limit int
	// All refreshes every entry, including those with streaming data.
	All bool
	// Stale restricts the refresh to licensed entries not checked for more
	// than StaleDays days.
	Stale     bool
	StaleDays int
	// IDs restricts the refresh to the named entries.
	IDs    []string
	DryRun bool
}

// Refresh re-resolves streaming availability for selected catalog entries.
// By default only entries without any streaming data are looked up.
func (d *Driver) Refresh(ctx context.Context, opts RefreshOptions) (*Summary, error) {
	summary := d.newSummary("refresh", opts.DryRun)
	ctx = services.WithRunID(ctx, summary.RunID)
	run := d.beginRun(ctx, summary)

	err := d.refresh(ctx, summary, opts)
	d.finish(ctx, summary, run, err)
	if err == nil && !opts.DryRun && summary.Counts.Processed > 0 {
		d.notify(ctx, notifications.EventRefreshCompleted, notifications.Payload{
			"updated":    summary.Counts.Updated,
			"notFound":   summary.Counts.NotFound,
			"unresolved": summary.Counts.Unresolved,
			"duration":   summary.Duration,
		})
	}
	return summary, err
}

func (d *Driver) refresh(ctx context.Context, summary *Summary, opts RefreshOptions) error {
	now := d.deps.Now()
	return d.update(ctx, summary, opts.DryRun,
		func(cat *catalog.Catalog) ([]catalog.Entry, error) {
			return d.selectEntries(summary, cat, opts)
		},
		func(ctx context.Context, entry catalog.Entry) EntryResult {
			return d.refreshEntry(ctx, entry, now)
		},
	)
}

// update is the shared load, look up, save cycle of refresh and links. The
// lock is held from load to save unless dryRun. Changed entries are written
// into a clone of the loaded catalog, which is saved only when something
// changed.
func (d *Driver) update(ctx context.Context, summary *Summary, dryRun bool,
	selectFn func(*catalog.Catalog) ([]catalog.Entry, error),
	work func(context.Context, catalog.Entry) EntryResult,
) error {
	if !dryRun {
		unlock, err := d.lock(ctx)
		if err != nil {
			return err
		}
		defer unlock()
	}

	cat, err := d.deps.Store.Load(ctx)
	if err != nil {
		return err
	}

	selected, err := selectFn(cat)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return nil
	}

	working := cat.Clone()
	changed := false

	tasks := make([]Task, 0, len(selected))
	for _, entry := range selected {
		tasks = append(tasks, Task{
			ID:  entry.ID,
			Run: func(ctx context.Context) EntryResult { return work(ctx, entry) },
		})
	}
	err = d.deps.Runner.Run(services.WithStage(ctx, "resolve"), tasks, func(result EntryResult) {
		if result.Changed && result.Entry != nil {
			if target, ok := working.Find(result.EntryID); ok {
				*target = *result.Entry
				changed = true
			}
		}
		d.observe(summary, result)
	})
	if err != nil {
		return err
	}

	if dryRun || !changed {
		return nil
	}
	if err := d.deps.Store.Save(services.WithStage(ctx, "save"), working); err != nil {
		return err
	}
	summary.Saved = true
	return nil
}

// selectEntries picks the entries to look up. Entries passed over because
// they already have data are recorded as such.
func (d *Driver) selectEntries(summary *Summary, cat *catalog.Catalog, opts RefreshOptions) ([]catalog.Entry, error) {
	var selected []catalog.Entry
	switch {
	case len(opts.IDs) > 0:
		var err error
		if selected, err = entriesByID(cat, opts.IDs, "refresh"); err != nil {
			return nil, err
		}
	case opts.Stale:
		for _, record := range d.deps.Auditor.Stale(cat.Episodes, d.deps.Now(), opts.StaleDays) {
			if entry, ok := cat.Find(record.ID); ok {
				selected = append(selected, entry.Clone())
			}
		}
	case opts.All:
		for _, entry := range cat.Episodes {
			selected = append(selected, entry.Clone())
		}
	default:
		for _, entry := range cat.Episodes {
			if entry.Streaming.HasAny() {
				d.observe(summary, EntryResult{
					EntryID: entry.ID,
					Title:   entry.Title,
					Date:    entry.EpisodeDate,
					Outcome: OutcomeHasData,
				})
				continue
			}
			selected = append(selected, entry.Clone())
		}
	}

	return limitEntries(selected, opts.Limit), nil
}

// entriesByID returns clones of the named entries in the order given. Any
// unknown id fails the whole selection.
func entriesByID(cat *catalog.Catalog, ids []string, operation string) ([]catalog.Entry, error) {
	var selected []catalog.Entry
	var missing []string
	for _, id := range ids {
		entry, ok := cat.Find(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		selected = append(selected, entry.Clone())
	}
	if len(missing) > 0 {
		return nil, services.Wrap(services.ErrNotFound, "reconcile", operation,
			fmt.Sprintf("unknown entry ids: %s", strings.Join(missing, ", ")), nil)
	}
	return selected, nil
}

func limitEntries(entries []catalog.Entry, limit int) []catalog.Entry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

func (d *Driver) refreshEntry(ctx context.Context, entry catalog.Entry, now time.Time) EntryResult {
	ctx = services.WithEntryID(ctx, entry.ID)
	res := d.deps.Resolver.Resolve(ctx, streaming.Query{Title: entry.Title, Year: entry.Year, Studio: entry.Studio})
	changed := applyResolution(&entry, res, now)
	return EntryResult{
		EntryID:    entry.ID,
		Title:      entry.Title,
		Date:       entry.EpisodeDate,
		Outcome:    refreshOutcome(res),
		Detail:     describeResolution(res),
		Entry:      &entry,
		Changed:    changed,
		Resolution: &res,
		Err:        res.Err,
	}
}
