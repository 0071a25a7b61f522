package reconcile

import (
	"context"
	"errors"

	"rewatch/internal/applepodcasts"
	"rewatch/internal/catalog"
	"rewatch/internal/logging"
	"rewatch/internal/services"
)

// LinksOptions selects the entries a link lookup visits.
type LinksOptions struct {
	// Limit caps the number of lookups. Zero means no cap.
	Limit int
	// All looks up every entry, replacing links that already point at an
	// episode.
	All bool
	// IDs restricts the lookup to the named entries.
	IDs    []string
	DryRun bool
}

// Links fills each selected entry's Apple Podcasts link with its direct
// episode URL. By default only entries without an episode link are visited.
func (d *Driver) Links(ctx context.Context, opts LinksOptions) (*Summary, error) {
	summary := d.newSummary("links", opts.DryRun)
	ctx = services.WithRunID(ctx, summary.RunID)
	if d.deps.Links == nil {
		err := services.Wrap(services.ErrConfiguration, "reconcile", "links", "apple podcasts lookup is disabled", nil)
		d.finish(ctx, summary, nil, err)
		return summary, err
	}
	run := d.beginRun(ctx, summary)

	err := d.update(ctx, summary, opts.DryRun,
		func(cat *catalog.Catalog) ([]catalog.Entry, error) {
			return d.selectLinkEntries(summary, cat, opts)
		},
		d.linkEntry,
	)
	d.finish(ctx, summary, run, err)
	return summary, err
}

func (d *Driver) selectLinkEntries(summary *Summary, cat *catalog.Catalog, opts LinksOptions) ([]catalog.Entry, error) {
	var selected []catalog.Entry
	switch {
	case len(opts.IDs) > 0:
		var err error
		if selected, err = entriesByID(cat, opts.IDs, "links"); err != nil {
			return nil, err
		}
	case opts.All:
		for _, entry := range cat.Episodes {
			selected = append(selected, entry.Clone())
		}
	default:
		for _, entry := range cat.Episodes {
			if applepodcasts.IsEpisodeURL(entry.ApplePodcastsURL) {
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

func (d *Driver) linkEntry(ctx context.Context, entry catalog.Entry) EntryResult {
	ctx = services.WithEntryID(ctx, entry.ID)
	result := EntryResult{
		EntryID: entry.ID,
		Title:   entry.Title,
		Date:    entry.EpisodeDate,
	}
	link, err := d.findLink(ctx, entry)
	switch {
	case errors.Is(err, services.ErrNotFound):
		result.Outcome = OutcomeNotFound
		result.Detail = "no matching episode"
	case err != nil:
		result.Outcome = OutcomeUnresolved
		result.Detail = err.Error()
		result.Err = err
	default:
		result.Outcome = OutcomeUpdated
		result.Detail = link
		result.Changed = link != entry.ApplePodcastsURL
		entry.ApplePodcastsURL = link
		result.Entry = &entry
	}
	return result
}

// findLink runs the link lookup. Failures other than a missing episode are
// logged; the entry keeps its current link.
func (d *Driver) findLink(ctx context.Context, entry catalog.Entry) (string, error) {
	link, err := d.deps.Links.Find(ctx, entry.Title)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		logging.WarnWithContext(logging.WithContext(ctx, d.logger), "apple podcasts lookup failed", "link_lookup_failed",
			logging.String("title", entry.Title),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "retry with rewatch links --id "+entry.ID),
			logging.String(logging.FieldImpact, "entry keeps its current Apple Podcasts link"),
		)
	}
	return link, err
}
