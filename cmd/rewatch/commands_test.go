package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"rewatch/internal/catalog"
	"rewatch/internal/testsupport"
)

func TestSyncAddsNewEpisodes(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteCatalog(t, env.cfg.Paths.CatalogPath, testsupport.Entry("heat", "Heat", "2019-05-01"))

	out, _, err := runCLI(t, []string{"sync"}, env.configPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	requireContains(t, out, "[ADDED]")
	requireContains(t, out, "[SKIPPED]")
	requireContains(t, out, "Summary: 1 added, 0 already known, 1 skipped")

	cat := testsupport.ReadCatalog(t, env.cfg.Paths.CatalogPath)
	if cat.Len() != 2 || cat.Episodes[0].ID != "se7en" {
		t.Fatalf("expected se7en prepended, got %+v", cat.Episodes)
	}
	got := cat.Episodes[0]
	if !slices.Equal(got.Hosts, []string{"Bill Simmons", "Chris Ryan"}) || got.Studio != catalog.UnknownStudio {
		t.Fatalf("unexpected entry %+v", got)
	}
	if env.searchCalls.Load() != 0 {
		t.Fatal("sync without --resolve must not search")
	}

	out, _, err = runCLI(t, []string{"sync"}, env.configPath)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	requireContains(t, out, "Summary: 0 added, 1 already known")
}

func TestSyncResolveLooksUpStreaming(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"sync", "--resolve"}, env.configPath); err != nil {
		t.Fatalf("sync: %v", err)
	}
	cat := testsupport.ReadCatalog(t, env.cfg.Paths.CatalogPath)
	entry, ok := cat.Find("se7en")
	if !ok {
		t.Fatal("se7en not added")
	}
	if !entry.Streaming.Netflix || !slices.Equal(entry.Streaming.RentBuy, []string{"Apple TV"}) {
		t.Fatalf("unexpected streaming %+v", entry.Streaming)
	}
	if entry.LastStreamingCheck == "" {
		t.Fatal("expected check date")
	}
	if entry.ApplePodcastsURL != "https://podcasts.apple.com/au/podcast/se7en/id1268527882?i=1000668" {
		t.Fatalf("expected localized episode link, got %q", entry.ApplePodcastsURL)
	}
}

func TestSyncDryRunDoesNotWrite(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"sync", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	requireContains(t, out, "dry run, nothing saved")
	if _, err := os.Stat(env.cfg.Paths.CatalogPath); !os.IsNotExist(err) {
		t.Fatalf("dry run created catalog: %v", err)
	}
	if _, err := os.Stat(env.cfg.HistoryPath()); !os.IsNotExist(err) {
		t.Fatalf("dry run opened history: %v", err)
	}
}

func TestSyncFeedFailureReturnsError(t *testing.T) {
	env := setupCLITestEnv(t)
	env.feedStatus.Store(http.StatusBadGateway)

	if _, _, err := runCLI(t, []string{"sync"}, env.configPath); err == nil {
		t.Fatal("expected feed failure to fail the command")
	}
	if _, err := os.Stat(env.cfg.Paths.CatalogPath); !os.IsNotExist(err) {
		t.Fatalf("failed sync touched catalog: %v", err)
	}
}

func TestSyncJSONSummary(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"sync", "--dry-run", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	var view summaryView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if view.Kind != "sync" || !view.DryRun || view.Added != 1 || len(view.Results) != 2 {
		t.Fatalf("unexpected summary %+v", view)
	}
}

func TestStreamingRefreshUpdatesEntries(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteCatalog(t, env.cfg.Paths.CatalogPath, testsupport.Entry("se7en", "Se7en", "2024-09-03"))

	out, _, err := runCLI(t, []string{"streaming", "refresh"}, env.configPath)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	requireContains(t, out, "[UPDATED]")
	requireContains(t, out, "Summary: 1 updated, 0 not found, 0 unresolved")

	cat := testsupport.ReadCatalog(t, env.cfg.Paths.CatalogPath)
	if !cat.Episodes[0].Streaming.Netflix {
		t.Fatalf("expected netflix flag, got %+v", cat.Episodes[0].Streaming)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "refresh")
	requireContains(t, out, "completed")

	out, _, err = runCLI(t, []string{"history", "--entry", "se7en"}, env.configPath)
	if err != nil {
		t.Fatalf("history --entry: %v", err)
	}
	requireContains(t, out, "Checks for se7en")
	requireContains(t, out, "Se7en (1995)")

	out, _, err = runCLI(t, []string{"history", "--entry", "heat"}, env.configPath)
	if err != nil {
		t.Fatalf("history --entry heat: %v", err)
	}
	requireContains(t, out, "No streaming checks recorded for heat")
}

func TestLinksFillsEpisodeLinks(t *testing.T) {
	env := setupCLITestEnv(t)
	se7en := testsupport.Entry("se7en", "Se7en", "2024-09-03")
	se7en.ApplePodcastsURL = "https://podcasts.apple.com/au/podcast/the-rewatchables/id1268527882"
	heat := testsupport.Entry("heat", "Heat", "2019-05-01")
	heat.ApplePodcastsURL = "https://podcasts.apple.com/au/podcast/heat/id1268527882?i=42"
	testsupport.WriteCatalog(t, env.cfg.Paths.CatalogPath, se7en, heat)

	out, _, err := runCLI(t, []string{"links", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("links --dry-run: %v", err)
	}
	requireContains(t, out, "dry run, nothing saved")
	cat := testsupport.ReadCatalog(t, env.cfg.Paths.CatalogPath)
	if entry, _ := cat.Find("se7en"); entry.ApplePodcastsURL != se7en.ApplePodcastsURL {
		t.Fatalf("dry run changed link to %q", entry.ApplePodcastsURL)
	}

	out, _, err = runCLI(t, []string{"links"}, env.configPath)
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	requireContains(t, out, "[UPDATED]")
	requireContains(t, out, "Summary: 1 updated, 0 not found, 0 unresolved")
	if calls := env.appleCalls.Load(); calls != 2 {
		t.Fatalf("expected one lookup per run, got %d", calls)
	}

	cat = testsupport.ReadCatalog(t, env.cfg.Paths.CatalogPath)
	entry, _ := cat.Find("se7en")
	if entry.ApplePodcastsURL != "https://podcasts.apple.com/au/podcast/se7en/id1268527882?i=1000668" {
		t.Fatalf("unexpected link %q", entry.ApplePodcastsURL)
	}
	if entry, _ := cat.Find("heat"); entry.ApplePodcastsURL != heat.ApplePodcastsURL {
		t.Fatalf("episode link replaced: %q", entry.ApplePodcastsURL)
	}
}

func TestLinksUnknownIDFails(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteCatalog(t, env.cfg.Paths.CatalogPath, testsupport.Entry("se7en", "Se7en", "2024-09-03"))

	_, _, err := runCLI(t, []string{"links", "--id", "missing"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unknown entry ids: missing") {
		t.Fatalf("expected unknown id error, got %v", err)
	}
}

func TestStreamingResolveJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"streaming", "resolve", "Se7en", "--year", "1995", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var view resolutionView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if view.Outcome != "matched" || view.MatchedYear != 1995 || !view.Streaming.Netflix {
		t.Fatalf("unexpected resolution %+v", view)
	}
}

func TestAuditReportsStaleLicensedEntries(t *testing.T) {
	env := setupCLITestEnv(t)
	heat := testsupport.Entry("heat", "Heat", "2019-05-01")
	heat.LastStreamingCheck = "2020-01-01"
	dune := testsupport.Entry("dune", "Dune", "2021-10-01")
	dune.Studio = "warner-bros"
	dune.LastStreamingCheck = "2020-01-01"
	testsupport.WriteCatalog(t, env.cfg.Paths.CatalogPath, heat, dune)

	out, _, err := runCLI(t, []string{"audit", "--stale", "30", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	var view auditView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(view.Stale) != 1 || view.Stale[0].ID != "heat" {
		t.Fatalf("expected only heat, got %+v", view.Stale)
	}

	out, _, err = runCLI(t, []string{"audit", "--all-studios", "--stats", "--native"}, env.configPath)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	requireContains(t, out, "Stale all entries")
	requireContains(t, out, "Dune")
	requireContains(t, out, "Catalog statistics")
	requireContains(t, strings.ToLower(out), "1 entries, 1 missing flag")
}

func TestParseCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"parse", "--passes", "The Rewatchables: 'Se7en' With Bill Simmons and Chris Ryan"}, env.configPath)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	requireContains(t, out, "Title: Se7en")
	requireContains(t, out, "Hosts: Bill Simmons, Chris Ryan")
	requireContains(t, out, "Slug:  se7en")
	requireContains(t, out, "split-on-with")
}

func TestStudioCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"studio", "Warner Bros. Pictures | Legendary"}, env.configPath)
	if err != nil {
		t.Fatalf("studio: %v", err)
	}
	requireContains(t, out, "Studio: warner-bros")
	requireContains(t, out, "Native: hboMax")

	out, _, err = runCLI(t, []string{"studio", "Some Indie Outfit"}, env.configPath)
	if err != nil {
		t.Fatalf("studio: %v", err)
	}
	requireContains(t, out, "Studio: unknown")
	requireContains(t, out, "Native: none")
}

func TestConfigInitValidateAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.cfg.Feed.URL)
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "not configured")
}
