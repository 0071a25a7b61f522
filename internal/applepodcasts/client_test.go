package applepodcasts_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"rewatch/internal/applepodcasts"
	"rewatch/internal/services"
)

const searchResponse = `{
  "resultCount": 3,
  "results": [
    {"trackName": "Best Picture Draft", "collectionName": "The Big Picture",
     "trackViewUrl": "https://podcasts.apple.com/us/podcast/the-big-picture/id1?i=100"},
    {"trackName": "’Se7en’ With Bill Simmons and Chris Ryan", "collectionName": "Some Other Show",
     "trackViewUrl": "https://podcasts.apple.com/us/podcast/other/id2?i=200"},
    {"trackName": "'Se7en' With Bill Simmons and Chris Ryan", "collectionName": "The Rewatchables",
     "trackViewUrl": "https://podcasts.apple.com/us/podcast/the-rewatchables/id3?i=300"}
  ]
}`

func TestSearchSendsTermAndDecodesResults(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchResponse))
	}))
	defer srv.Close()

	client := applepodcasts.New(srv.URL, applepodcasts.WithHTTPClient(srv.Client()))
	results, err := client.Search(context.Background(), applepodcasts.SearchRequest{Term: "The Rewatchables Se7en", Limit: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if gotQuery["term"][0] != "The Rewatchables Se7en" {
		t.Fatalf("unexpected term %v", gotQuery["term"])
	}
	if gotQuery["entity"][0] != "podcastEpisode" || gotQuery["limit"][0] != "5" {
		t.Fatalf("unexpected query %v", gotQuery)
	}
}

func TestSearchClassifiesStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusServiceUnavailable, services.ErrTransport},
		{http.StatusTooManyRequests, services.ErrTransport},
		{http.StatusBadRequest, services.ErrParse},
	}
	for _, tc := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		}))
		_, err := applepodcasts.New(srv.URL).Search(context.Background(), applepodcasts.SearchRequest{Term: "Heat"})
		srv.Close()
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}

func TestSearchRejectsEmptyTerm(t *testing.T) {
	if _, err := applepodcasts.New("").Search(context.Background(), applepodcasts.SearchRequest{}); err == nil {
		t.Fatal("expected error for empty term")
	}
}

func TestFinderRetriesAndLocalizesLink(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(searchResponse))
	}))
	defer srv.Close()

	finder := applepodcasts.NewFinder(applepodcasts.New(srv.URL), applepodcasts.Options{
		Show:  "The Rewatchables",
		Store: "au",
		Limit: 5,
		Retry: services.RetryPolicy{Attempts: 3, Backoff: time.Millisecond},
	})
	link, err := finder.Find(context.Background(), "Se7en")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if link != "https://podcasts.apple.com/au/podcast/the-rewatchables/id3?i=300" {
		t.Fatalf("unexpected link %q", link)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestFinderGivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "busy", http.StatusBadGateway)
	}))
	defer srv.Close()

	finder := applepodcasts.NewFinder(applepodcasts.New(srv.URL), applepodcasts.Options{
		Retry: services.RetryPolicy{Attempts: 3},
	})
	_, err := finder.Find(context.Background(), "Heat")
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestFinderReportsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchResponse))
	}))
	defer srv.Close()

	finder := applepodcasts.NewFinder(applepodcasts.New(srv.URL), applepodcasts.Options{Show: "The Rewatchables"})
	if _, err := finder.Find(context.Background(), "Heat"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBestMatchRequiresShowCollection(t *testing.T) {
	results := []applepodcasts.Result{
		{TrackName: "'Heat' Revisited", CollectionName: "Other Show", TrackViewURL: "https://podcasts.apple.com/us/a?i=1"},
		{TrackName: "‘Heat’ With Bill Simmons", CollectionName: "The Rewatchables", TrackViewURL: ""},
		{TrackName: "'Heat' With Bill Simmons", CollectionName: "The Rewatchables", TrackViewURL: "https://podcasts.apple.com/us/b?i=2"},
	}
	best, ok := applepodcasts.BestMatch("Heat", "The Rewatchables", results)
	if !ok || best.TrackViewURL != "https://podcasts.apple.com/us/b?i=2" {
		t.Fatalf("unexpected match %+v ok=%v", best, ok)
	}
	if _, ok := applepodcasts.BestMatch("", "The Rewatchables", results); ok {
		t.Fatal("empty title must not match")
	}
	if best, ok := applepodcasts.BestMatch("heat", "", results); !ok || best.CollectionName != "Other Show" {
		t.Fatalf("empty show should accept any collection, got %+v", best)
	}
}

func TestLocalizeAndEpisodeURL(t *testing.T) {
	link := "https://podcasts.apple.com/us/podcast/x/id1?i=5"
	if got := applepodcasts.Localize(link, "AU"); got != "https://podcasts.apple.com/au/podcast/x/id1?i=5" {
		t.Fatalf("unexpected localized link %q", got)
	}
	if got := applepodcasts.Localize(link, ""); got != link {
		t.Fatalf("empty store should keep link, got %q", got)
	}
	if !applepodcasts.IsEpisodeURL(link) {
		t.Fatal("expected episode link")
	}
	if applepodcasts.IsEpisodeURL("https://podcasts.apple.com/au/podcast/x/id1") {
		t.Fatal("show link is not an episode link")
	}
}
