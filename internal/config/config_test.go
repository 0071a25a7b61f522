package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"rewatch/internal/config"
)

func TestLoadDefaultConfigUsesEnvTMDBKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	workDir := t.TempDir()
	t.Chdir(workDir)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "rewatch")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Paths.CatalogPath) {
		t.Fatalf("expected absolute catalog path, got %q", cfg.Paths.CatalogPath)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.Search.Country != "AU" {
		t.Fatalf("unexpected search country: %q", cfg.Search.Country)
	}
	if cfg.Workers.Concurrency != 10 || cfg.Workers.BatchSize != 20 {
		t.Fatalf("unexpected worker defaults: %+v", cfg.Workers)
	}
	if cfg.Search.RetryAttempts != 3 || cfg.SearchBackoff().Seconds() != 2 {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Search)
	}
	if !cfg.ApplePodcasts.Enabled || cfg.ApplePodcasts.Store != "au" || cfg.ApplePodcasts.ResultLimit != 5 {
		t.Fatalf("unexpected apple podcasts defaults: %+v", cfg.ApplePodcasts)
	}
	if cfg.Feed.DefaultHost != "Bill Simmons" {
		t.Fatalf("unexpected default host: %q", cfg.Feed.DefaultHost)
	}
	if len(cfg.Feed.SkipPatterns) == 0 {
		t.Fatal("expected default skip patterns")
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, filepath.Dir(cfg.Paths.CatalogPath)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "rewatch.toml")

	type payload struct {
		Paths struct {
			CatalogPath string `toml:"catalog_path"`
		} `toml:"paths"`
		Search struct {
			Country       string `toml:"country"`
			RetryAttempts int    `toml:"retry_attempts"`
		} `toml:"search"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.CatalogPath = filepath.Join(tempDir, "data", "episodes.json")
	custom.Search.Country = "us"
	custom.Search.RetryAttempts = 5
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.CatalogPath != custom.Paths.CatalogPath {
		t.Fatalf("unexpected catalog path: %q", cfg.Paths.CatalogPath)
	}
	if cfg.Search.Country != "US" {
		t.Fatalf("expected country to be upper-cased, got %q", cfg.Search.Country)
	}
	if cfg.Search.RetryAttempts != 5 {
		t.Fatalf("unexpected retry attempts: %d", cfg.Search.RetryAttempts)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercase log format, got %q", cfg.Logging.Format)
	}
	if cfg.Search.ResultLimit != 5 {
		t.Fatalf("expected default result limit to survive partial file, got %d", cfg.Search.ResultLimit)
	}
}

func TestEnvVarOverridesConfigFileForAPIKeys(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "rewatch.toml")
	content := "[tmdb]\napi_key = \"from-file\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TMDB_API_KEY", "from-env")
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TMDB.APIKey != "from-env" {
		t.Fatalf("expected env key to win, got %q", cfg.TMDB.APIKey)
	}

	t.Setenv("TMDB_API_KEY", "")
	cfg, _, _, err = config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TMDB.APIKey != "from-file" {
		t.Fatalf("expected file key when env is empty, got %q", cfg.TMDB.APIKey)
	}
}

func TestStudioOverridesAreNormalized(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "rewatch.toml")
	content := `
[[studio.keywords]]
keyword = " Pixar "
code = "Disney"

[[studio.keywords]]
keyword = ""
code = "ignored"

[studio.native]
" Disney " = "disneyPlus"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Studio.Keywords) != 1 {
		t.Fatalf("expected one keyword rule, got %+v", cfg.Studio.Keywords)
	}
	if got := cfg.Studio.Keywords[0]; got.Keyword != "pixar" || got.Code != "disney" {
		t.Fatalf("unexpected keyword rule: %+v", got)
	}
	if cfg.Studio.Native["disney"] != "disneyPlus" {
		t.Fatalf("unexpected native map: %+v", cfg.Studio.Native)
	}
}

func TestCreateSample(t *testing.T) {
	tempDir := t.TempDir()
	samplePath := filepath.Join(tempDir, "nested", "config.toml")

	if err := config.CreateSample(samplePath); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	data, err := os.ReadFile(samplePath)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	content := string(data)
	for _, want := range []string{"[paths]", "[feed]", "[search]", "[workers]", "country = \"AU\""} {
		if !strings.Contains(content, want) {
			t.Fatalf("sample config missing %q", want)
		}
	}

	cfg, _, exists, err := config.Load(samplePath)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Workers.BatchPauseMS != 1000 {
		t.Fatalf("unexpected batch pause: %d", cfg.Workers.BatchPauseMS)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	var buf strings.Builder
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "graphql_url") {
		t.Fatalf("encoded config missing search section:\n%s", buf.String())
	}
	var decoded config.Config
	if err := toml.Unmarshal([]byte(buf.String()), &decoded); err != nil {
		t.Fatalf("decode encoded config: %v", err)
	}
	if decoded.Search.GraphQLURL != cfg.Search.GraphQLURL {
		t.Fatalf("round trip mismatch: %q", decoded.Search.GraphQLURL)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "feed url scheme",
			mutate: func(c *config.Config) { c.Feed.URL = "ftp://example.com/feed" },
			want:   "feed.url",
		},
		{
			name:   "bad skip pattern",
			mutate: func(c *config.Config) { c.Feed.SkipPatterns = []string{"("} },
			want:   "feed.skip_patterns",
		},
		{
			name:   "country length",
			mutate: func(c *config.Config) { c.Search.Country = "AUS" },
			want:   "search.country",
		},
		{
			name:   "apple storefront",
			mutate: func(c *config.Config) { c.ApplePodcasts.Store = "aus" },
			want:   "apple_podcasts.store",
		},
		{
			name:   "worker ceiling",
			mutate: func(c *config.Config) { c.Workers.Concurrency = 100 },
			want:   "workers.concurrency",
		},
		{
			name:   "log level",
			mutate: func(c *config.Config) { c.Logging.Level = "verbose" },
			want:   "logging.level",
		},
		{
			name:   "empty catalog path",
			mutate: func(c *config.Config) { c.Paths.CatalogPath = "" },
			want:   "paths.catalog_path",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
