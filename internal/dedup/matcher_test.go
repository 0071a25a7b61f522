package dedup_test

import (
	"testing"

	"rewatch/internal/catalog"
	"rewatch/internal/dedup"
)

func fixtures() []catalog.Entry {
	return []catalog.Entry{
		{ID: "heat", Title: "Heat", EpisodeDate: "2024-01-05"},
		{ID: "oceans-eleven", Title: "Ocean’s Eleven", EpisodeDate: "2023-12-01"},
		{ID: "up", Title: "Up", EpisodeDate: "2023-06-10"},
	}
}

func TestSharedDateIsKnownRegardlessOfTitle(t *testing.T) {
	entries := fixtures()
	m := dedup.NewMatcher(entries, dedup.Options{})
	for _, entry := range entries {
		item := dedup.Item{Title: "Something Completely Different", Date: entry.EpisodeDate}
		if !m.IsKnown(item) {
			t.Fatalf("expected item sharing date %s to be known", entry.EpisodeDate)
		}
		if got := m.Reason(item); got != dedup.ReasonDate {
			t.Fatalf("reason = %q, want date", got)
		}
	}
}

func TestTitleMatchIgnoresCaseQuotesAndSpacing(t *testing.T) {
	m := dedup.NewMatcher(fixtures(), dedup.Options{})
	for _, title := range []string{"ocean's eleven", "OCEAN’S  ELEVEN", " Ocean's Eleven "} {
		item := dedup.Item{Title: title, Date: "2030-01-01"}
		if got := m.Reason(item); got != dedup.ReasonTitle {
			t.Fatalf("Reason(%q) = %q, want title", title, got)
		}
	}
}

func TestNearDuplicateTitlesAreNotMatched(t *testing.T) {
	m := dedup.NewMatcher(fixtures(), dedup.Options{})
	if m.IsKnown(dedup.Item{Title: "Heat 2", Date: "2030-01-01"}) {
		t.Fatal("expected different title to be new")
	}
	if m.IsKnown(dedup.Item{Title: "Oceans Eleven", Date: "2030-01-01"}) {
		t.Fatal("expected punctuation difference to be new")
	}
}

func TestIDMatchingIsOptional(t *testing.T) {
	item := dedup.Item{Title: "Heat (Director's Cut)", Date: "2030-01-01", ID: "heat"}
	if dedup.NewMatcher(fixtures(), dedup.Options{}).IsKnown(item) {
		t.Fatal("expected id to be ignored when MatchIDs is false")
	}
	m := dedup.NewMatcher(fixtures(), dedup.Options{MatchIDs: true})
	if got := m.Reason(item); got != dedup.ReasonID {
		t.Fatalf("reason = %q, want id", got)
	}
}

func TestMinTitleLengthSkipsShortTitles(t *testing.T) {
	item := dedup.Item{Title: "Up", Date: "2030-01-01"}
	if !dedup.NewMatcher(fixtures(), dedup.Options{}).IsKnown(item) {
		t.Fatal("expected default policy to match short titles")
	}
	if dedup.NewMatcher(fixtures(), dedup.Options{MinTitleLength: 3}).IsKnown(item) {
		t.Fatal("expected short title to need a date or id match")
	}
}

func TestAddRecordsEntriesFromSameRun(t *testing.T) {
	m := dedup.NewMatcher(nil, dedup.Options{})
	item := dedup.Item{Title: "Se7en", Date: "2024-02-02"}
	if m.IsKnown(item) {
		t.Fatal("expected empty matcher to know nothing")
	}
	m.Add(catalog.Entry{ID: "se7en", Title: "Se7en", EpisodeDate: "2024-02-02"})
	if !m.IsKnown(item) {
		t.Fatal("expected added entry to be known")
	}
}
