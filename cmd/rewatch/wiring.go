package main

import (
	"context"
	"fmt"
	"log/slog"

	"rewatch/internal/applepodcasts"
	"rewatch/internal/audit"
	"rewatch/internal/catalog"
	"rewatch/internal/config"
	"rewatch/internal/dedup"
	"rewatch/internal/feed"
	"rewatch/internal/history"
	"rewatch/internal/logging"
	"rewatch/internal/notifications"
	"rewatch/internal/reconcile"
	"rewatch/internal/services"
	"rewatch/internal/streaming"
	"rewatch/internal/streaming/justwatch"
	"rewatch/internal/studio"
	"rewatch/internal/tmdb"
)

// components holds everything a command may need, built from one config.
type components struct {
	cfg        *config.Config
	logger     *slog.Logger
	tables     *studio.Tables
	classifier *studio.Classifier
	auditor    *audit.Auditor
	store      *catalog.Store
	resolver   *streaming.Resolver
	history    *history.Store
}

func (c *commandContext) components(ctx context.Context, withHistory bool) (*components, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	tables, err := c.studioTables()
	if err != nil {
		return nil, nil, err
	}

	comps := &components{
		cfg:        cfg,
		logger:     logger,
		tables:     tables,
		classifier: studio.NewClassifier(tables),
		auditor:    audit.NewAuditor(tables),
		store: catalog.NewStore(cfg.Paths.CatalogPath,
			catalog.WithBackup(cfg.Catalog.Backup),
			catalog.WithLogger(logging.NewComponentLogger(logger, "catalog"))),
		resolver: streaming.NewResolver(justwatch.New(cfg.Search.GraphQLURL), tables, streaming.Options{
			Country:     cfg.Search.Country,
			ResultLimit: cfg.Search.ResultLimit,
			Retry:       searchRetry(cfg),
			CacheSize:   cfg.Search.CacheSize,
			CacheTTL:    cfg.CacheTTL(),
			Logger:      logger,
		}),
	}

	cleanup := func() {}
	if withHistory {
		store, err := history.Open(ctx, cfg.HistoryPath())
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.state_dir is writable"),
				logging.String(logging.FieldImpact, "this run will not be recorded"),
			)
		} else {
			comps.history = store
			cleanup = func() { _ = store.Close() }
		}
	}
	return comps, cleanup, nil
}

// driver assembles the reconciliation driver. observer may be nil.
func (comps *components) driver(observer reconcile.Observer) (*reconcile.Driver, error) {
	cfg := comps.cfg
	feedClient, err := feed.NewClient(cfg.Feed.URL,
		feed.WithTimeout(cfg.FeedTimeout()),
		feed.WithLogger(comps.logger))
	if err != nil {
		return nil, err
	}
	builder, err := newFeedBuilder(cfg, comps.logger)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "feed builder", "invalid skip pattern", err)
	}

	deps := reconcile.Dependencies{
		Feed:       feedClient,
		Builder:    builder,
		Store:      comps.store,
		Resolver:   comps.resolver,
		Classifier: comps.classifier,
		Auditor:    comps.auditor,
		Notifier:   notifications.NewService(cfg),
		Runner:     reconcile.NewBatchRunner(cfg.Workers.Concurrency, cfg.Workers.BatchSize, cfg.BatchPause()),
		Dedup:      dedupOptions(cfg),
		SpotifyURL: cfg.Feed.SpotifyURL,
		Logger:     comps.logger,
		Observer:   observer,
	}
	if comps.history != nil {
		deps.History = comps.history
	}
	if cfg.ApplePodcasts.Enabled {
		deps.Links = newLinkFinder(cfg, comps.logger)
	}
	if cfg.TMDB.APIKey != "" {
		client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
		if err != nil {
			return nil, fmt.Errorf("tmdb client: %w", err)
		}
		deps.Metadata = client
	}
	return reconcile.NewDriver(deps)
}

func searchRetry(cfg *config.Config) services.RetryPolicy {
	return services.RetryPolicy{
		Attempts: cfg.Search.RetryAttempts,
		Backoff:  cfg.SearchBackoff(),
		Timeout:  cfg.SearchTimeout(),
	}
}

// newLinkFinder shares the search retry policy.
func newLinkFinder(cfg *config.Config, logger *slog.Logger) *applepodcasts.Finder {
	return applepodcasts.NewFinder(applepodcasts.New(cfg.ApplePodcasts.SearchURL), applepodcasts.Options{
		Show:   cfg.Feed.ShowPrefix,
		Store:  cfg.ApplePodcasts.Store,
		Limit:  cfg.ApplePodcasts.ResultLimit,
		Retry:  searchRetry(cfg),
		Logger: logger,
	})
}

func dedupOptions(cfg *config.Config) dedup.Options {
	return dedup.Options{
		MatchIDs:       cfg.Dedup.MatchIDs,
		MinTitleLength: cfg.Dedup.MinTitleLength,
	}
}

func newFeedBuilder(cfg *config.Config, logger *slog.Logger) (*feed.Builder, error) {
	return feed.NewBuilder(feed.BuilderOptions{
		ShowPrefix:   cfg.Feed.ShowPrefix,
		DefaultHost:  cfg.Feed.DefaultHost,
		KnownHosts:   cfg.Feed.KnownHosts,
		SkipPatterns: cfg.Feed.SkipPatterns,
		Logger:       logger,
	})
}
