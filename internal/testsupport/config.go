package testsupport

import (
	"path/filepath"
	"testing"

	"rewatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Network endpoints point nowhere useful until overridden. Notifications and
// Apple Podcasts lookups are disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CatalogPath = filepath.Join(base, "data", "episodes.json")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.TMDB.APIKey = ""
	cfgVal.Notifications.NtfyTopic = ""
	cfgVal.Workers.BatchPauseMS = 0
	cfgVal.Search.RetryBackoffSeconds = 0
	cfgVal.Logging.File = false
	cfgVal.ApplePodcasts.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFeedURL points the feed client at url, typically an httptest server.
func WithFeedURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Feed.URL = url
	}
}

// WithSearchURL points the streaming search client at url.
func WithSearchURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Search.GraphQLURL = url
	}
}

// WithTMDB enables metadata enrichment against baseURL.
func WithTMDB(baseURL, key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = baseURL
		b.cfg.TMDB.APIKey = key
	}
}

// WithAppleSearchURL enables Apple Podcasts lookups against url.
func WithAppleSearchURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ApplePodcasts.Enabled = true
		b.cfg.ApplePodcasts.SearchURL = url
	}
}

// WithNtfyTopic enables notifications to topic.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
