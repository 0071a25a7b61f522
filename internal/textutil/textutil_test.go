package textutil_test

import (
	"testing"

	"rewatch/internal/textutil"
)

func TestNormalizeQuotes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"“Heat”", `"Heat"`},
		{"‘Heat’", "'Heat'"},
		{"Ocean’s Eleven", "Ocean's Eleven"},
		{"plain", "plain"},
	}
	for _, tc := range tests {
		if got := textutil.NormalizeQuotes(tc.in); got != tc.want {
			t.Fatalf("NormalizeQuotes(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeForMatchTreatsQuoteStylesAlike(t *testing.T) {
	a := textutil.NormalizeForMatch("Ocean’s  Eleven")
	b := textutil.NormalizeForMatch("ocean's eleven ")
	if a != b {
		t.Fatalf("expected equal keys, got %q and %q", a, b)
	}
}

func TestTrimQuotes(t *testing.T) {
	if got := textutil.TrimQuotes(` "'Heat'" `); got != "Heat" {
		t.Fatalf("unexpected trim result %q", got)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Se7en", "se7en"},
		{"The Shawshank Redemption", "the-shawshank-redemption"},
		{"Ocean's Eleven", "ocean-s-eleven"},
		{"  --Heat--  ", "heat"},
		{"Amélie", "amelie"},
		{"Mission: Impossible – Fallout", "mission-impossible-fallout"},
		{"千と千尋", "千と千尋"},
		{"Léon: The Professional", "leon-the-professional"},
		{"!!!", ""},
	}
	for _, tc := range tests {
		if got := textutil.Slug(tc.in); got != tc.want {
			t.Fatalf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  Bill Simmons and   Chris Ryan ", "Bill Simmons and Chris Ryan"},
		{"paragraphs", "<p>Bill Simmons</p><p>Chris Ryan</p>", "Bill Simmons Chris Ryan"},
		{"links", `<p>Hosts: <a href="x">Sean Fennessey</a></p>`, "Hosts: Sean Fennessey"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.HTMLToText(tc.in); got != tc.want {
				t.Fatalf("HTMLToText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
