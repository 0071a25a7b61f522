package catalog

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for episodeDate and lastStreamingCheck.
const DateLayout = "2006-01-02"

// UnknownStudio is the studio code for entries no keyword matched.
const UnknownStudio = "unknown"

// CommunityRating holds the aggregate listener rating.
type CommunityRating struct {
	Average float64 `json:"average"`
	Votes   int     `json:"votes"`
}

// Entry is one catalog record: a podcast episode and the movie it discusses.
type Entry struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Year               int             `json:"year"`
	Director           string          `json:"director"`
	EpisodeDate        string          `json:"episodeDate"`
	SpotifyURL         string          `json:"spotifyUrl"`
	ApplePodcastsURL   string          `json:"applePodcastsUrl"`
	Hosts              []string        `json:"hosts"`
	Guests             []string        `json:"guests"`
	Genres             []string        `json:"genres"`
	Streaming          Streaming       `json:"streaming"`
	LastStreamingCheck string          `json:"lastStreamingCheck"`
	CommunityRating    CommunityRating `json:"communityRating"`
	Studio             string          `json:"studio"`
}

// Normalize replaces nil lists with empty ones so every field serialises.
func (e *Entry) Normalize() {
	if e.Hosts == nil {
		e.Hosts = []string{}
	}
	if e.Guests == nil {
		e.Guests = []string{}
	}
	if e.Genres == nil {
		e.Genres = []string{}
	}
	if e.Streaming.RentBuy == nil {
		e.Streaming.RentBuy = []string{}
	}
	if strings.TrimSpace(e.Studio) == "" {
		e.Studio = UnknownStudio
	}
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	out := e
	out.Hosts = slices.Clone(e.Hosts)
	out.Guests = slices.Clone(e.Guests)
	out.Genres = slices.Clone(e.Genres)
	out.Streaming = e.Streaming.Clone()
	out.Normalize()
	return out
}

// LastCheck parses LastStreamingCheck. ok is false when the value is missing
// or malformed.
func (e Entry) LastCheck() (time.Time, bool) {
	t, err := ParseDate(e.LastStreamingCheck)
	return t, err == nil
}

// MarkChecked stamps LastStreamingCheck with the calendar date of now.
func (e *Entry) MarkChecked(now time.Time) {
	e.LastStreamingCheck = FormatDate(now)
}

// ParseDate parses a YYYY-MM-DD value. A trailing time component
// (2024-01-02T15:04:05Z) is tolerated and discarded.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(value) > len(DateLayout) {
		value = value[:len(DateLayout)]
	}
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// FormatDate renders t's calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
