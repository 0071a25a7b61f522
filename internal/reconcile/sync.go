package reconcile

import (
	"context"
	"slices"

	"rewatch/internal/applepodcasts"
	"rewatch/internal/catalog"
	"rewatch/internal/dedup"
	"rewatch/internal/feed"
	"rewatch/internal/logging"
	"rewatch/internal/notifications"
	"rewatch/internal/services"
	"rewatch/internal/streaming"
	"rewatch/internal/textutil"
)

// SyncOptions controls a feed sync.
type SyncOptions struct {
	// Count limits how many feed items are considered. Zero means all.
	Count  int
	DryRun bool
	// Resolve enriches new entries with metadata and streaming data.
	Resolve bool
}

// Sync pulls the feed, adds episodes the catalog does not know about and
// optionally resolves their streaming availability. A feed or persistence
// failure aborts the run and leaves the catalog untouched.
func (d *Driver) Sync(ctx context.Context, opts SyncOptions) (*Summary, error) {
	summary := d.newSummary("sync", opts.DryRun)
	ctx = services.WithRunID(ctx, summary.RunID)
	run := d.beginRun(ctx, summary)

	err := d.sync(ctx, summary, opts)
	d.finish(ctx, summary, run, err)
	if err == nil && !opts.DryRun && summary.Counts.Added > 0 {
		d.notify(ctx, notifications.EventEpisodesAdded, notifications.Payload{
			"count":  summary.Counts.Added,
			"titles": addedTitles(summary.Results),
		})
	}
	return summary, err
}

func (d *Driver) sync(ctx context.Context, summary *Summary, opts SyncOptions) error {
	if d.deps.Feed == nil || d.deps.Builder == nil {
		return services.Wrap(services.ErrConfiguration, "reconcile", "sync", "feed source required", nil)
	}

	items, err := d.deps.Feed.Fetch(services.WithStage(ctx, "fetch"))
	if err != nil {
		return err
	}
	if opts.Count > 0 && len(items) > opts.Count {
		items = items[:opts.Count]
	}

	if !opts.DryRun {
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

	episodes, skipped := d.deps.Builder.Build(items)
	for _, skip := range skipped {
		d.observe(summary, EntryResult{
			Title:   skip.Title,
			Outcome: OutcomeSkipped,
			Detail:  skip.Pattern,
		})
	}

	pending := d.newEntries(summary, cat, episodes)
	if len(pending) == 0 {
		return nil
	}

	if opts.Resolve {
		if err := d.enrichAll(services.WithStage(ctx, "resolve"), summary, pending); err != nil {
			return err
		}
	} else {
		for i := range pending {
			d.observe(summary, addedResult(&pending[i], nil))
		}
	}

	if opts.DryRun {
		return nil
	}
	cat.Prepend(pending...)
	if err := d.deps.Store.Save(services.WithStage(ctx, "save"), cat); err != nil {
		return err
	}
	summary.Saved = true
	return nil
}

// newEntries filters known episodes and builds entries for the rest, in feed
// order. Ids are unique against the catalog and earlier entries of this run.
func (d *Driver) newEntries(summary *Summary, cat *catalog.Catalog, episodes []feed.Episode) []catalog.Entry {
	matcher := dedup.NewMatcher(cat.Episodes, d.deps.Dedup)
	scratch := &catalog.Catalog{Episodes: slices.Clone(cat.Episodes)}

	var pending []catalog.Entry
	for _, ep := range episodes {
		slug := textutil.Slug(ep.Title)
		item := dedup.Item{Title: ep.Title, Date: ep.Date(), ID: slug}
		if reason := matcher.Reason(item); reason != dedup.ReasonNone {
			d.observe(summary, EntryResult{
				EntryID: slug,
				Title:   ep.Title,
				Date:    ep.Date(),
				Outcome: OutcomeKnown,
				Detail:  "matched by " + string(reason),
			})
			continue
		}

		entry := catalog.Entry{
			ID:          scratch.UniqueID(slug),
			Title:       ep.Title,
			EpisodeDate: ep.Date(),
			SpotifyURL:  d.deps.SpotifyURL,
			Hosts:       slices.Clone(ep.Hosts),
			Studio:      catalog.UnknownStudio,
		}
		entry.Normalize()
		matcher.Add(entry)
		scratch.Episodes = append(scratch.Episodes, entry)
		pending = append(pending, entry)
	}
	return pending
}

// enrichAll runs metadata and streaming lookups for new entries on the
// batch runner and writes the results back into pending.
func (d *Driver) enrichAll(ctx context.Context, summary *Summary, pending []catalog.Entry) error {
	index := make(map[string]int, len(pending))
	tasks := make([]Task, 0, len(pending))
	for i, entry := range pending {
		index[entry.ID] = i
		tasks = append(tasks, Task{
			ID:  entry.ID,
			Run: func(ctx context.Context) EntryResult { return d.enrich(ctx, entry) },
		})
	}
	return d.deps.Runner.Run(ctx, tasks, func(result EntryResult) {
		if i, ok := index[result.EntryID]; ok && result.Entry != nil {
			pending[i] = *result.Entry
		}
		d.observe(summary, result)
	})
}

func (d *Driver) enrich(ctx context.Context, entry catalog.Entry) EntryResult {
	ctx = services.WithEntryID(ctx, entry.ID)
	if d.deps.Metadata != nil {
		md, err := d.deps.Metadata.Lookup(ctx, entry.Title, entry.Year)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, d.logger), "metadata lookup failed", "metadata_lookup_failed",
				logging.String("title", entry.Title),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check tmdb.api_key or fill year/director manually"),
				logging.String(logging.FieldImpact, "entry added without year, director or studio"),
			)
		} else {
			entry.Year = md.Year
			entry.Director = md.Director
			entry.Genres = slices.Clone(md.Genres)
			entry.Studio = d.deps.Classifier.ClassifyAll(md.Companies...)
			entry.Normalize()
		}
	}

	res := d.deps.Resolver.Resolve(ctx, streaming.Query{Title: entry.Title, Year: entry.Year, Studio: entry.Studio})
	applyResolution(&entry, res, d.deps.Now())
	if d.deps.Links != nil && !applepodcasts.IsEpisodeURL(entry.ApplePodcastsURL) {
		if link, err := d.findLink(ctx, entry); err == nil {
			entry.ApplePodcastsURL = link
		}
	}
	return addedResult(&entry, &res)
}

func addedResult(entry *catalog.Entry, res *streaming.Resolution) EntryResult {
	result := EntryResult{
		EntryID:    entry.ID,
		Title:      entry.Title,
		Date:       entry.EpisodeDate,
		Outcome:    OutcomeAdded,
		Entry:      entry,
		Changed:    true,
		Resolution: res,
	}
	if res != nil {
		result.Detail = describeResolution(*res)
		result.Err = res.Err
	}
	return result
}

func addedTitles(results []EntryResult) []string {
	var titles []string
	for _, result := range results {
		if result.Outcome == OutcomeAdded {
			titles = append(titles, result.Title)
		}
	}
	return titles
}
