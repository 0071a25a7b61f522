package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"rewatch/internal/config"
	"rewatch/internal/testsupport"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>The Rewatchables</title>
    <item>
      <title>The Rewatchables: 'Se7en' With Bill Simmons and Chris Ryan</title>
      <pubDate>Tue, 03 Sep 2024 10:00:00 +0000</pubDate>
      <description><![CDATA[<p>Bill and Chris revisit <b>Se7en</b>.</p>]]></description>
    </item>
    <item>
      <title>The Rewatchables Selection Show</title>
      <pubDate>Fri, 30 Aug 2024 10:00:00 +0000</pubDate>
      <description>Picks for the fall.</description>
    </item>
  </channel>
</rss>`

const testSearchResponse = `{"data":{"popularTitles":{"edges":[{"node":{
  "id":"tm1","objectType":"MOVIE",
  "content":{"title":"Se7en","originalReleaseYear":1995},
  "offers":[
    {"monetizationType":"FLATRATE","package":{"packageId":8,"clearName":"Netflix"}},
    {"monetizationType":"RENT","package":{"packageId":2,"clearName":"Apple TV"}}
  ]}}]}}}`

const testAppleResponse = `{"resultCount":1,"results":[{
  "trackName":"'Se7en' With Bill Simmons and Chris Ryan",
  "collectionName":"The Rewatchables",
  "trackViewUrl":"https://podcasts.apple.com/us/podcast/se7en/id1268527882?i=1000668"}]}`

type cliTestEnv struct {
	cfg         *config.Config
	configPath  string
	baseDir     string
	feedStatus  atomic.Int32
	searchCalls atomic.Int32
	appleCalls  atomic.Int32
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	env := &cliTestEnv{}
	env.feedStatus.Store(http.StatusOK)

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status := int(env.feedStatus.Load()); status != http.StatusOK {
			http.Error(w, "unavailable", status)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testFeed))
	}))
	t.Cleanup(feedSrv.Close)

	searchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.searchCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testSearchResponse))
	}))
	t.Cleanup(searchSrv.Close)

	appleSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.appleCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testAppleResponse))
	}))
	t.Cleanup(appleSrv.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithFeedURL(feedSrv.URL),
		testsupport.WithSearchURL(searchSrv.URL),
		testsupport.WithAppleSearchURL(appleSrv.URL),
	)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TMDB_API_KEY", "")

	env.cfg = cfg
	env.baseDir = base
	env.configPath = filepath.Join(base, "rewatch.toml")
	writeTestConfig(t, env.configPath, cfg)
	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ncatalog_path = %q\nstate_dir = %q\n\n[feed]\nurl = %q\n\n[search]\ngraphql_url = %q\nretry_attempts = 1\nretry_backoff_seconds = 0\n\n[apple_podcasts]\nenabled = %t\nsearch_url = %q\n\n[catalog]\nbackup = false\n",
		cfg.Paths.CatalogPath,
		cfg.Paths.StateDir,
		cfg.Feed.URL,
		cfg.Search.GraphQLURL,
		cfg.ApplePodcasts.Enabled,
		cfg.ApplePodcasts.SearchURL,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	flags = append(flags, "--log-level", "error")
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
