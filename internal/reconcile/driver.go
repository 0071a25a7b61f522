package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rewatch/internal/applepodcasts"
	"rewatch/internal/audit"
	"rewatch/internal/catalog"
	"rewatch/internal/dedup"
	"rewatch/internal/feed"
	"rewatch/internal/history"
	"rewatch/internal/logging"
	"rewatch/internal/notifications"
	"rewatch/internal/services"
	"rewatch/internal/streaming"
	"rewatch/internal/studio"
	"rewatch/internal/tmdb"
)

// Dependencies wires a Driver. Store and Resolver are required; Feed and
// Builder are required for Sync. The rest are optional.
type Dependencies struct {
	Feed       FeedSource
	Builder    *feed.Builder
	Store      CatalogStore
	Resolver   Resolver
	Classifier *studio.Classifier
	Auditor    *audit.Auditor
	Metadata   MetadataSource
	Links      LinkFinder
	History    HistoryRecorder
	Notifier   notifications.Service
	Runner     *BatchRunner
	Dedup      dedup.Options
	SpotifyURL string
	Now        func() time.Time
	Logger     *slog.Logger
	Observer   Observer
}

// Driver runs sync, refresh and link lookups.
type Driver struct {
	deps   Dependencies
	logger *slog.Logger
}

// NewDriver validates deps and fills defaults.
func NewDriver(deps Dependencies) (*Driver, error) {
	if deps.Store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "reconcile", "new driver", "catalog store required", nil)
	}
	if deps.Resolver == nil {
		return nil, services.Wrap(services.ErrConfiguration, "reconcile", "new driver", "resolver required", nil)
	}
	if deps.Classifier == nil {
		deps.Classifier = studio.NewClassifier(nil)
	}
	if deps.Auditor == nil {
		deps.Auditor = audit.NewAuditor(deps.Classifier.Tables())
	}
	if deps.Runner == nil {
		deps.Runner = NewBatchRunner(0, 0, 0)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	return &Driver{
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "reconcile"),
	}, nil
}

func (d *Driver) newSummary(kind string, dryRun bool) *Summary {
	return &Summary{
		RunID:     history.NewRunID(),
		Kind:      kind,
		DryRun:    dryRun,
		StartedAt: d.deps.Now(),
	}
}

func (d *Driver) observe(summary *Summary, result EntryResult) {
	summary.record(result)
	if d.deps.Observer != nil {
		d.deps.Observer.EntryDone(result)
	}
}

// lock acquires the store lock when the store supports one.
func (d *Driver) lock(ctx context.Context) (func(), error) {
	locker, ok := d.deps.Store.(Locker)
	if !ok {
		return func() {}, nil
	}
	return locker.Lock(ctx)
}

// beginRun records the run start. History is advisory, so failures are
// logged and the run continues without it.
func (d *Driver) beginRun(ctx context.Context, summary *Summary) *history.Run {
	if summary.DryRun || d.deps.History == nil {
		return nil
	}
	run := &history.Run{ID: summary.RunID, Kind: summary.Kind, StartedAt: summary.StartedAt}
	if err := d.deps.History.BeginRun(ctx, run); err != nil {
		d.historyWarning(ctx, "history run start failed", err)
		return nil
	}
	return run
}

func (d *Driver) finishRun(ctx context.Context, run *history.Run, summary *Summary, runErr error) {
	if run == nil {
		return
	}
	run.Counts = summary.Counts.History()
	if err := d.deps.History.FinishRun(ctx, run, runErr); err != nil {
		d.historyWarning(ctx, "history run finish failed", err)
	}
}

func (d *Driver) recordChecks(ctx context.Context, run *history.Run, summary *Summary) {
	if run == nil {
		return
	}
	checks := make([]history.Check, 0, len(summary.Results))
	for _, result := range summary.Results {
		if result.Resolution == nil {
			continue
		}
		checks = append(checks, checkFor(run.ID, result, d.deps.Now()))
	}
	if err := d.deps.History.RecordChecks(ctx, checks); err != nil {
		d.historyWarning(ctx, "history check write failed", err)
	}
}

func (d *Driver) historyWarning(ctx context.Context, msg string, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, d.logger), msg, "history_write_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the state directory is writable"),
		logging.String(logging.FieldImpact, "run history is incomplete; the catalog is unaffected"),
	)
}

func (d *Driver) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if d.deps.Notifier == nil {
		return
	}
	if err := d.deps.Notifier.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, d.logger), "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "no push notification for this run"),
		)
	}
}

func (d *Driver) finish(ctx context.Context, summary *Summary, run *history.Run, runErr error) {
	summary.Duration = d.deps.Now().Sub(summary.StartedAt)
	d.recordChecks(ctx, run, summary)
	d.finishRun(ctx, run, summary, runErr)

	logger := logging.WithContext(ctx, d.logger)
	if runErr != nil {
		logging.ErrorWithContext(logger, summary.Kind+" failed", "run_failed",
			logging.String("kind", services.Kind(runErr)),
			logging.Error(runErr),
			logging.String(logging.FieldErrorHint, hintFor(runErr)),
		)
		if !summary.DryRun {
			d.notify(ctx, notifications.EventRunFailed, notifications.Payload{"context": summary.Kind, "error": runErr})
		}
		return
	}
	c := summary.Counts
	logger.Info(summary.Kind+" complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Bool("dry_run", summary.DryRun),
		logging.Int("processed", c.Processed),
		logging.Int("added", c.Added),
		logging.Int("updated", c.Updated),
		logging.Int("known", c.Known),
		logging.Int("not_found", c.NotFound),
		logging.Int("unresolved", c.Unresolved),
		logging.Int("skipped", c.Skipped),
		logging.Duration("duration", summary.Duration),
	)
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrTransport):
		return "check network access to the feed"
	case errors.Is(err, catalog.ErrLocked):
		return "another rewatch process holds the catalog lock"
	case errors.Is(err, services.ErrPersistence):
		return "check the catalog path is writable; nothing was committed"
	case errors.Is(err, services.ErrNotFound):
		return "check the entry ids against the catalog"
	case errors.Is(err, services.ErrConfiguration):
		return "run rewatch config validate"
	default:
		return "check logs for details"
	}
}

func checkFor(runID string, result EntryResult, now time.Time) history.Check {
	res := result.Resolution
	check := history.Check{
		RunID:     runID,
		EntryID:   result.EntryID,
		Title:     result.Title,
		Outcome:   string(res.Outcome),
		Services:  serviceNames(res.Streaming),
		RentBuy:   res.Streaming.RentBuy,
		CheckedAt: now,
	}
	if res.Candidate != nil {
		check.MatchedTitle = res.Candidate.Title
		check.MatchedYear = res.Candidate.ReleaseYear
	}
	if res.Err != nil {
		check.Error = res.Err.Error()
	}
	return check
}

func serviceNames(state catalog.Streaming) []string {
	subs := state.Subscriptions()
	names := make([]string, 0, len(subs))
	for _, svc := range subs {
		names = append(names, string(svc))
	}
	return names
}

// withNative returns state with the native flag set, leaving other data intact.
func withNative(state catalog.Streaming, native catalog.Service) catalog.Streaming {
	out := state.Clone()
	if native != "" {
		out.Set(native, true)
	}
	return out
}

var (
	_ FeedSource      = (*feed.Client)(nil)
	_ CatalogStore    = (*catalog.Store)(nil)
	_ Locker          = (*catalog.Store)(nil)
	_ Resolver        = (*streaming.Resolver)(nil)
	_ MetadataSource  = (*tmdb.Client)(nil)
	_ LinkFinder      = (*applepodcasts.Finder)(nil)
	_ HistoryRecorder = (*history.Store)(nil)
)
