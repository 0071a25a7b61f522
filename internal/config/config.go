package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains catalog and state directory configuration.
type Paths struct {
	CatalogPath string `toml:"catalog_path"`
	StateDir    string `toml:"state_dir"`
}

// Feed contains configuration for the podcast RSS feed.
type Feed struct {
	URL            string   `toml:"url"`
	ShowPrefix     string   `toml:"show_prefix"`
	DefaultHost    string   `toml:"default_host"`
	KnownHosts     []string `toml:"known_hosts"`
	SkipPatterns   []string `toml:"skip_patterns"`
	SpotifyURL     string   `toml:"spotify_url"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Search contains configuration for the streaming catalog search API.
type Search struct {
	GraphQLURL          string `toml:"graphql_url"`
	Country             string `toml:"country"`
	ResultLimit         int    `toml:"result_limit"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	RetryAttempts       int    `toml:"retry_attempts"`
	RetryBackoffSeconds int    `toml:"retry_backoff_seconds"`
	CacheSize           int    `toml:"cache_size"`
	CacheTTLMinutes     int    `toml:"cache_ttl_minutes"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// ApplePodcasts contains configuration for the episode link lookup.
type ApplePodcasts struct {
	Enabled     bool   `toml:"enabled"`
	SearchURL   string `toml:"search_url"`
	Store       string `toml:"store"`
	ResultLimit int    `toml:"result_limit"`
}

// Workers contains the batch worker pool settings.
type Workers struct {
	Concurrency  int `toml:"concurrency"`
	BatchSize    int `toml:"batch_size"`
	BatchPauseMS int `toml:"batch_pause_ms"`
}

// Audit contains staleness audit defaults.
type Audit struct {
	StaleDays int `toml:"stale_days"`
}

// Dedup contains feed-to-catalog matching policy.
type Dedup struct {
	MatchIDs bool `toml:"match_ids"`
	// MinTitleLength disables title-only matches for titles shorter than this
	// many characters. Zero keeps title matching for every title.
	MinTitleLength int `toml:"min_title_length"`
}

// Catalog contains persistence options for the catalog file.
type Catalog struct {
	Backup bool `toml:"backup"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	EpisodesAdded  bool   `toml:"episodes_added"`
	Refresh        bool   `toml:"refresh"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   bool   `toml:"file"`
}

// StudioKeyword maps a lowercase keyword to a canonical studio code.
type StudioKeyword struct {
	Keyword string `toml:"keyword"`
	Code    string `toml:"code"`
}

// Studio optionally replaces the built-in studio tables. Keywords are matched
// in the order listed.
type Studio struct {
	Keywords []StudioKeyword   `toml:"keywords"`
	Native   map[string]string `toml:"native"`
}

// Config encapsulates all configuration values for rewatch.
//
// Configuration sections by subsystem:
//   - Paths: catalog file and state directory (history database, logs)
//   - Feed: podcast RSS source and title parsing hints
//   - Search: streaming availability search API and retry policy
//   - TMDB: optional metadata enrichment for new entries
//   - ApplePodcasts: per-episode Apple Podcasts link lookup
//   - Workers: batch worker pool sizing
//   - Audit: staleness thresholds
//   - Dedup: feed matching policy
//   - Catalog: persistence options
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
//   - Studio: keyword and native-service table overrides
type Config struct {
	Paths         Paths         `toml:"paths"`
	Feed          Feed          `toml:"feed"`
	Search        Search        `toml:"search"`
	TMDB          TMDB          `toml:"tmdb"`
	ApplePodcasts ApplePodcasts `toml:"apple_podcasts"`
	Workers       Workers       `toml:"workers"`
	Audit         Audit         `toml:"audit"`
	Dedup         Dedup         `toml:"dedup"`
	Catalog       Catalog       `toml:"catalog"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Studio        Studio        `toml:"studio"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/rewatch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/rewatch/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("rewatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory and the catalog's parent directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir}
	if dir := filepath.Dir(c.Paths.CatalogPath); dir != "" && dir != "." {
		dirs = append(dirs, dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the SQLite database that records refresh runs.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LogPath returns the log file location used when logging.file is enabled.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "rewatch.log")
}

// SearchTimeout returns the per-attempt timeout for streaming searches.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// SearchBackoff returns the base delay for linear retry backoff.
func (c *Config) SearchBackoff() time.Duration {
	return time.Duration(c.Search.RetryBackoffSeconds) * time.Second
}

// BatchPause returns the delay inserted between worker batches.
func (c *Config) BatchPause() time.Duration {
	return time.Duration(c.Workers.BatchPauseMS) * time.Millisecond
}

// FeedTimeout returns the HTTP timeout used for feed retrieval.
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feed.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long search responses stay cached.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Search.CacheTTLMinutes) * time.Minute
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	encoder := toml.NewEncoder(w)
	encoder.SetIndentTables(true)
	return encoder.Encode(c)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
