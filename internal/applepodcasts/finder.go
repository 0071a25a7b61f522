package applepodcasts

import (
	"context"
	"log/slog"
	"strings"

	"rewatch/internal/logging"
	"rewatch/internal/services"
	"rewatch/internal/textutil"
)

// Searcher runs one episode search.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]Result, error)
}

// Options configures a Finder.
type Options struct {
	// Show is prepended to every search term and must appear in the
	// collection name of a match. Empty accepts any collection.
	Show string
	// Store is the two-letter storefront written into returned links.
	Store  string
	Limit  int
	Retry  services.RetryPolicy
	Logger *slog.Logger
}

// Finder resolves a movie title to the show's episode link.
type Finder struct {
	searcher Searcher
	opts     Options
	logger   *slog.Logger
}

// NewFinder builds a finder over searcher.
func NewFinder(searcher Searcher, opts Options) *Finder {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Finder{
		searcher: searcher,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "applepodcasts"),
	}
}

// Find returns the episode link for title. ErrNotFound marks a search whose
// results contain no matching episode; transport errors are returned after
// the retry policy is exhausted.
func (f *Finder) Find(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", services.Wrap(services.ErrParse, "applepodcasts", "find", "empty title", nil)
	}
	req := SearchRequest{
		Term:  strings.TrimSpace(f.opts.Show + " " + title),
		Limit: f.opts.Limit,
	}

	var results []Result
	err := services.Retry(ctx, f.opts.Retry, func(attemptCtx context.Context) error {
		var searchErr error
		results, searchErr = f.searcher.Search(attemptCtx, req)
		return searchErr
	})
	if err != nil {
		return "", err
	}

	best, ok := BestMatch(title, f.opts.Show, results)
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "applepodcasts", "find", title, nil)
	}
	link := Localize(best.TrackViewURL, f.opts.Store)
	logging.WithContext(ctx, f.logger).Debug("episode link found",
		logging.String("title", title),
		logging.String("track", best.TrackName),
	)
	return link, nil
}

// BestMatch returns the first result whose track name contains title and
// whose collection name contains show. Comparison ignores case and quote
// style. Results without a link never match.
func BestMatch(title, show string, results []Result) (Result, bool) {
	want := textutil.NormalizeForMatch(title)
	collection := textutil.NormalizeForMatch(show)
	if want == "" {
		return Result{}, false
	}
	for _, result := range results {
		if strings.TrimSpace(result.TrackViewURL) == "" {
			continue
		}
		if !strings.Contains(textutil.NormalizeForMatch(result.TrackName), want) {
			continue
		}
		if collection != "" && !strings.Contains(textutil.NormalizeForMatch(result.CollectionName), collection) {
			continue
		}
		return result, true
	}
	return Result{}, false
}

// Localize rewrites the US storefront segment of link to store.
func Localize(link, store string) string {
	store = strings.ToLower(strings.TrimSpace(store))
	if store == "" || store == "us" {
		return link
	}
	return strings.Replace(link, "/us/", "/"+store+"/", 1)
}

// IsEpisodeURL reports whether link points at a single episode rather than
// the show page.
func IsEpisodeURL(link string) bool {
	return strings.Contains(link, "?i=")
}
