package dedup

import (
	"unicode/utf8"

	"rewatch/internal/catalog"
	"rewatch/internal/textutil"
)

// Reason names the signal that identified an item as known.
type Reason string

const (
	ReasonNone  Reason = ""
	ReasonDate  Reason = "date"
	ReasonTitle Reason = "title"
	ReasonID    Reason = "id"
)

// Item is the subset of a feed item the matcher inspects.
type Item struct {
	Title string
	Date  string
	ID    string
}

// Options tunes matching policy.
type Options struct {
	// MatchIDs adds id-set membership as a third signal.
	MatchIDs bool
	// MinTitleLength disables title-only matching for normalised titles
	// shorter than this many characters. Zero matches every title.
	MinTitleLength int
}

// Matcher holds the membership sets for one run.
type Matcher struct {
	opts   Options
	dates  map[string]struct{}
	titles map[string]struct{}
	ids    map[string]struct{}
}

// NewMatcher builds the sets from entries.
func NewMatcher(entries []catalog.Entry, opts Options) *Matcher {
	m := &Matcher{
		opts:   opts,
		dates:  make(map[string]struct{}, len(entries)),
		titles: make(map[string]struct{}, len(entries)),
		ids:    make(map[string]struct{}, len(entries)),
	}
	for _, entry := range entries {
		m.Add(entry)
	}
	return m
}

// Add records an entry, typically one created earlier in the same run.
func (m *Matcher) Add(entry catalog.Entry) {
	if entry.EpisodeDate != "" {
		m.dates[entry.EpisodeDate] = struct{}{}
	}
	if key := TitleKey(entry.Title); key != "" {
		m.titles[key] = struct{}{}
	}
	if entry.ID != "" {
		m.ids[entry.ID] = struct{}{}
	}
}

// IsKnown reports whether item matches any catalog entry.
func (m *Matcher) IsKnown(item Item) bool {
	return m.Reason(item) != ReasonNone
}

// Reason reports which signal matched, checking date, then title, then id.
func (m *Matcher) Reason(item Item) Reason {
	if item.Date != "" {
		if _, ok := m.dates[item.Date]; ok {
			return ReasonDate
		}
	}
	if key := TitleKey(item.Title); key != "" && m.titleEligible(key) {
		if _, ok := m.titles[key]; ok {
			return ReasonTitle
		}
	}
	if m.opts.MatchIDs && item.ID != "" {
		if _, ok := m.ids[item.ID]; ok {
			return ReasonID
		}
	}
	return ReasonNone
}

func (m *Matcher) titleEligible(key string) bool {
	return m.opts.MinTitleLength <= 0 || utf8.RuneCountInString(key) >= m.opts.MinTitleLength
}

// TitleKey is the normalised form used for title membership: lowercase,
// straight quotes, collapsed whitespace.
func TitleKey(title string) string {
	return textutil.NormalizeForMatch(title)
}
