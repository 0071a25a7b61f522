package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFeed()
	c.normalizeSearch()
	c.normalizeTMDB()
	c.normalizeApplePodcasts()
	c.normalizeWorkers()
	c.normalizeStudio()
	c.normalizeLogging()
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Audit.StaleDays < 0 {
		c.Audit.StaleDays = 0
	}
	if c.Dedup.MinTitleLength < 0 {
		c.Dedup.MinTitleLength = 0
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		c.Paths.CatalogPath = defaultCatalogPath
	}
	if c.Paths.CatalogPath, err = expandPath(strings.TrimSpace(c.Paths.CatalogPath)); err != nil {
		return fmt.Errorf("paths.catalog_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFeed() {
	c.Feed.URL = strings.TrimSpace(c.Feed.URL)
	if c.Feed.URL == "" {
		c.Feed.URL = defaultFeedURL
	}
	c.Feed.ShowPrefix = strings.TrimSpace(c.Feed.ShowPrefix)
	c.Feed.DefaultHost = strings.TrimSpace(c.Feed.DefaultHost)
	c.Feed.SpotifyURL = strings.TrimSpace(c.Feed.SpotifyURL)
	if c.Feed.TimeoutSeconds <= 0 {
		c.Feed.TimeoutSeconds = defaultFeedTimeout
	}
	c.Feed.KnownHosts = dedupeTrimmed(c.Feed.KnownHosts, false)
	c.Feed.SkipPatterns = dedupeTrimmed(c.Feed.SkipPatterns, true)
}

func (c *Config) normalizeSearch() {
	c.Search.GraphQLURL = strings.TrimSpace(c.Search.GraphQLURL)
	if c.Search.GraphQLURL == "" {
		c.Search.GraphQLURL = defaultSearchGraphQLURL
	}
	c.Search.Country = strings.ToUpper(strings.TrimSpace(c.Search.Country))
	if c.Search.Country == "" {
		c.Search.Country = defaultSearchCountry
	}
	if c.Search.ResultLimit <= 0 {
		c.Search.ResultLimit = defaultSearchResultLimit
	}
	if c.Search.TimeoutSeconds <= 0 {
		c.Search.TimeoutSeconds = defaultSearchTimeout
	}
	if c.Search.RetryAttempts <= 0 {
		c.Search.RetryAttempts = 1
	}
	if c.Search.RetryBackoffSeconds < 0 {
		c.Search.RetryBackoffSeconds = 0
	}
	if c.Search.CacheSize < 0 {
		c.Search.CacheSize = 0
	}
	if c.Search.CacheTTLMinutes <= 0 {
		c.Search.CacheTTLMinutes = defaultSearchCacheTTL
	}
}

func (c *Config) normalizeTMDB() {
	if value, ok := os.LookupEnv("TMDB_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.TMDB.APIKey = value
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
}

func (c *Config) normalizeApplePodcasts() {
	c.ApplePodcasts.SearchURL = strings.TrimSpace(c.ApplePodcasts.SearchURL)
	if c.ApplePodcasts.SearchURL == "" {
		c.ApplePodcasts.SearchURL = defaultAppleSearchURL
	}
	c.ApplePodcasts.Store = strings.ToLower(strings.TrimSpace(c.ApplePodcasts.Store))
	if c.ApplePodcasts.Store == "" {
		c.ApplePodcasts.Store = defaultAppleStore
	}
	if c.ApplePodcasts.ResultLimit <= 0 {
		c.ApplePodcasts.ResultLimit = defaultAppleResultLimit
	}
}

func (c *Config) normalizeWorkers() {
	if c.Workers.Concurrency <= 0 {
		c.Workers.Concurrency = defaultWorkerConcurrency
	}
	if c.Workers.BatchSize <= 0 {
		c.Workers.BatchSize = defaultWorkerBatchSize
	}
	if c.Workers.BatchPauseMS < 0 {
		c.Workers.BatchPauseMS = 0
	}
}

func (c *Config) normalizeStudio() {
	keywords := make([]StudioKeyword, 0, len(c.Studio.Keywords))
	for _, kw := range c.Studio.Keywords {
		kw.Keyword = strings.ToLower(strings.TrimSpace(kw.Keyword))
		kw.Code = strings.ToLower(strings.TrimSpace(kw.Code))
		if kw.Keyword == "" || kw.Code == "" {
			continue
		}
		keywords = append(keywords, kw)
	}
	c.Studio.Keywords = keywords
	if len(c.Studio.Native) > 0 {
		native := make(map[string]string, len(c.Studio.Native))
		for code, service := range c.Studio.Native {
			code = strings.ToLower(strings.TrimSpace(code))
			service = strings.TrimSpace(service)
			if code == "" || service == "" {
				continue
			}
			native[code] = service
		}
		c.Studio.Native = native
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func dedupeTrimmed(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if lower {
			value = strings.ToLower(value)
		}
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
