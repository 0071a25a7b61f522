package reconcile

import (
	"context"
	"time"

	"rewatch/internal/catalog"
	"rewatch/internal/feed"
	"rewatch/internal/history"
	"rewatch/internal/streaming"
	"rewatch/internal/tmdb"
)

// FeedSource retrieves raw feed items.
type FeedSource interface {
	Fetch(ctx context.Context) ([]feed.Item, error)
}

// CatalogStore loads and persists the catalog.
type CatalogStore interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
	Save(ctx context.Context, cat *catalog.Catalog) error
}

// Locker is implemented by stores that guard writes with a lock.
type Locker interface {
	Lock(ctx context.Context) (func(), error)
}

// Resolver resolves streaming availability for one title.
type Resolver interface {
	Resolve(ctx context.Context, q streaming.Query) streaming.Resolution
}

// MetadataSource looks up movie metadata for new entries.
type MetadataSource interface {
	Lookup(ctx context.Context, title string, year int) (tmdb.Metadata, error)
}

// LinkFinder looks up the Apple Podcasts episode link for a title.
type LinkFinder interface {
	Find(ctx context.Context, title string) (string, error)
}

// HistoryRecorder persists run and check records.
type HistoryRecorder interface {
	BeginRun(ctx context.Context, run *history.Run) error
	FinishRun(ctx context.Context, run *history.Run, runErr error) error
	RecordChecks(ctx context.Context, checks []history.Check) error
}

// Outcome is the per-entry result of a run.
type Outcome string

const (
	OutcomeAdded      Outcome = "added"
	OutcomeKnown      Outcome = "known"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeHasData    Outcome = "has_data"
	OutcomeUpdated    Outcome = "updated"
	OutcomeNotFound   Outcome = "not_found"
	OutcomeUnresolved Outcome = "unresolved"
)

// EntryResult describes what happened to one feed item or catalog entry.
type EntryResult struct {
	EntryID string
	Title   string
	Date    string
	Outcome Outcome
	// Detail carries the dedup reason, skip pattern, or matched candidate.
	Detail string
	// Entry is the new or updated entry; nil when the catalog is untouched.
	Entry *catalog.Entry
	// Changed reports whether Entry's streaming state differs from before.
	Changed bool
	// Resolution is set when a streaming lookup ran.
	Resolution *streaming.Resolution
	Err        error
}

// Counts tallies outcomes for the run summary.
type Counts struct {
	Processed  int
	Added      int
	Updated    int
	Known      int
	NotFound   int
	Unresolved int
	Skipped    int
}

func (c *Counts) add(r EntryResult) {
	c.Processed++
	switch r.Outcome {
	case OutcomeAdded:
		c.Added++
	case OutcomeUpdated:
		c.Updated++
	case OutcomeKnown:
		c.Known++
	case OutcomeNotFound:
		c.NotFound++
	case OutcomeUnresolved:
		c.Unresolved++
	case OutcomeSkipped, OutcomeHasData:
		c.Skipped++
	}
}

// History converts the tallies for the run log.
func (c Counts) History() history.Counts {
	return history.Counts(c)
}

// Summary is the result of one run.
type Summary struct {
	RunID     string
	Kind      string
	DryRun    bool
	StartedAt time.Time
	Duration  time.Duration
	Results   []EntryResult
	Counts    Counts
	// Saved reports whether the catalog was written.
	Saved bool
}

func (s *Summary) record(r EntryResult) {
	s.Results = append(s.Results, r)
	s.Counts.add(r)
}

// Observer receives each entry result as it is aggregated. Calls never
// overlap.
type Observer interface {
	EntryDone(result EntryResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(EntryResult)

// EntryDone calls f.
func (f ObserverFunc) EntryDone(result EntryResult) { f(result) }
