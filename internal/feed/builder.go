package feed

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"rewatch/internal/catalog"
	"rewatch/internal/logging"
	"rewatch/internal/textutil"
	"rewatch/internal/title"
)

// Episode is a feed item after parsing. It lives for one run only.
type Episode struct {
	RawTitle        string
	Title           string
	NormalizedTitle string
	Hosts           []string
	Published       time.Time
	Description     string
	// DateFallback is set when the publish date could not be parsed and the
	// current day was used instead.
	DateFallback bool
}

// Date returns the episode date in catalog format.
func (e Episode) Date() string {
	return catalog.FormatDate(e.Published)
}

// Skipped records a feed item that matched a skip pattern.
type Skipped struct {
	RawTitle string
	Title    string
	Pattern  string
}

// BuilderOptions configures episode construction.
type BuilderOptions struct {
	ShowPrefix   string
	DefaultHost  string
	KnownHosts   []string
	SkipPatterns []string
	Now          func() time.Time
	Logger       *slog.Logger
}

// Builder turns raw feed items into episodes.
type Builder struct {
	normalizer  *title.Normalizer
	skip        []*regexp.Regexp
	knownHosts  []string
	defaultHost string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBuilder compiles skip patterns and prepares the normalizer.
func NewBuilder(opts BuilderOptions) (*Builder, error) {
	b := &Builder{
		normalizer:  title.New(opts.ShowPrefix),
		knownHosts:  append([]string(nil), opts.KnownHosts...),
		defaultHost: strings.TrimSpace(opts.DefaultHost),
		now:         opts.Now,
		logger:      opts.Logger,
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	b.logger = logging.NewComponentLogger(b.logger, "feed")
	for _, pattern := range opts.SkipPatterns {
		re, err := regexp.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("compile skip pattern %q: %w", pattern, err)
		}
		b.skip = append(b.skip, re)
	}
	return b, nil
}

// Build parses items in feed order. Items matching a skip pattern are
// returned separately and never become episodes.
func (b *Builder) Build(items []Item) ([]Episode, []Skipped) {
	episodes := make([]Episode, 0, len(items))
	var skipped []Skipped
	for _, item := range items {
		parsed := b.normalizer.Parse(item.Title)
		if pattern, ok := b.skipPattern(parsed.Title); ok {
			skipped = append(skipped, Skipped{RawTitle: item.Title, Title: parsed.Title, Pattern: pattern})
			continue
		}
		if parsed.Title == "" {
			skipped = append(skipped, Skipped{RawTitle: item.Title, Pattern: "empty title"})
			continue
		}
		episodes = append(episodes, b.episode(item, parsed))
	}
	return episodes, skipped
}

func (b *Builder) episode(item Item, parsed title.Parsed) Episode {
	description := textutil.HTMLToText(item.Description)
	ep := Episode{
		RawTitle:        item.Title,
		Title:           parsed.Title,
		NormalizedTitle: textutil.NormalizeForMatch(parsed.Title),
		Hosts:           b.hosts(parsed.Hosts, description),
		Description:     description,
	}
	published, err := ParsePubDate(item.PubDate)
	if err != nil {
		published = b.now()
		ep.DateFallback = true
		logging.WarnWithContext(b.logger, "publish date unparseable; using current date", "pub_date_fallback",
			logging.String("title", parsed.Title),
			logging.String("pub_date", item.PubDate),
			logging.String(logging.FieldErrorHint, "check the feed's pubDate format"),
			logging.String(logging.FieldImpact, "episode date may be wrong and date dedup may miss"),
			logging.Error(err),
		)
	}
	ep.Published = published
	return ep
}

// hosts prefers names from the title, then known hosts mentioned in the
// description, then the default host.
func (b *Builder) hosts(fromTitle []string, description string) []string {
	if len(fromTitle) > 0 {
		return fromTitle
	}
	lower := strings.ToLower(description)
	var found []string
	for _, host := range b.knownHosts {
		if host != "" && strings.Contains(lower, strings.ToLower(host)) {
			found = append(found, host)
		}
	}
	if len(found) > 0 {
		return found
	}
	if b.defaultHost != "" {
		return []string{b.defaultHost}
	}
	return []string{}
}

func (b *Builder) skipPattern(parsedTitle string) (string, bool) {
	lower := strings.ToLower(parsedTitle)
	for _, re := range b.skip {
		if re.MatchString(lower) {
			return re.String(), true
		}
	}
	return "", false
}
