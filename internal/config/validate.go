package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateApplePodcasts(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.CatalogPath == "" {
		return errors.New("paths.catalog_path must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateFeed() error {
	if err := validateHTTPURL("feed.url", c.Feed.URL); err != nil {
		return err
	}
	for _, pattern := range c.Feed.SkipPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("feed.skip_patterns: invalid pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func (c *Config) validateSearch() error {
	if err := validateHTTPURL("search.graphql_url", c.Search.GraphQLURL); err != nil {
		return err
	}
	if len(c.Search.Country) != 2 {
		return fmt.Errorf("search.country must be a two-letter country code, got %q", c.Search.Country)
	}
	if c.Search.ResultLimit > 100 {
		return errors.New("search.result_limit must be 100 or less")
	}
	if c.Search.RetryAttempts > 10 {
		return errors.New("search.retry_attempts must be 10 or less")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		return nil
	}
	return validateHTTPURL("tmdb.base_url", c.TMDB.BaseURL)
}

func (c *Config) validateApplePodcasts() error {
	if !c.ApplePodcasts.Enabled {
		return nil
	}
	if err := validateHTTPURL("apple_podcasts.search_url", c.ApplePodcasts.SearchURL); err != nil {
		return err
	}
	if len(c.ApplePodcasts.Store) != 2 {
		return fmt.Errorf("apple_podcasts.store must be a two-letter storefront code, got %q", c.ApplePodcasts.Store)
	}
	if c.ApplePodcasts.ResultLimit > 200 {
		return errors.New("apple_podcasts.result_limit must be 200 or less")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Concurrency > 64 {
		return errors.New("workers.concurrency must be 64 or less")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

func validateHTTPURL(field, raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL", field)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", field)
	}
	return nil
}
