package streaming

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"rewatch/internal/catalog"
	"rewatch/internal/logging"
	"rewatch/internal/services"
	"rewatch/internal/studio"
)

// Outcome classifies a resolution.
type Outcome string

const (
	// OutcomeMatched means a candidate was selected and its offers applied.
	OutcomeMatched Outcome = "matched"
	// OutcomeNotFound means the search succeeded but no candidate qualified.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeUnresolved means the search failed after retries.
	OutcomeUnresolved Outcome = "unresolved"
)

// SearchRequest is the query sent to the catalog search API.
type SearchRequest struct {
	Query   string
	Country string
	Limit   int
}

// Searcher runs catalog searches.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]Candidate, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, req SearchRequest) ([]Candidate, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, req SearchRequest) ([]Candidate, error) {
	return f(ctx, req)
}

// Query identifies the title to resolve. Year and Studio are optional.
type Query struct {
	Title  string
	Year   int
	Studio string
}

// Resolution is the result for one query.
type Resolution struct {
	Streaming catalog.Streaming
	Outcome   Outcome
	// Candidate is set when Outcome is OutcomeMatched.
	Candidate *Candidate
	// Native is the service inferred from the studio, if any.
	Native catalog.Service
	// Err holds the search failure for OutcomeUnresolved.
	Err error
}

// Options configures a Resolver.
type Options struct {
	Country     string
	ResultLimit int
	Retry       services.RetryPolicy
	CacheSize   int
	CacheTTL    time.Duration
	Logger      *slog.Logger
}

// Resolver combines native inference and search-derived offers.
type Resolver struct {
	searcher Searcher
	tables   *studio.Tables
	opts     Options
	cache    *expirable.LRU[string, []Candidate]
	group    singleflight.Group
	logger   *slog.Logger
}

// NewResolver builds a resolver. A nil tables value uses the default studio
// tables; a non-positive cache size disables caching.
func NewResolver(searcher Searcher, tables *studio.Tables, opts Options) *Resolver {
	if tables == nil {
		tables = studio.DefaultTables()
	}
	if strings.TrimSpace(opts.Country) == "" {
		opts.Country = "AU"
	}
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = 5
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Resolver{
		searcher: searcher,
		tables:   tables,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "streaming"),
	}
	if opts.CacheSize > 0 {
		r.cache = expirable.NewLRU[string, []Candidate](opts.CacheSize, nil, opts.CacheTTL)
	}
	return r
}

// Resolve never returns an error. Search failures are logged and reported
// through the Unresolved outcome.
func (r *Resolver) Resolve(ctx context.Context, q Query) Resolution {
	native, hasNative := r.tables.NativeService(strings.ToLower(strings.TrimSpace(q.Studio)))
	res := Resolution{Streaming: catalog.Streaming{RentBuy: []string{}}}
	if hasNative {
		res.Native = native
	}

	candidates, err := r.search(ctx, q)
	switch {
	case err != nil:
		res.Outcome = OutcomeUnresolved
		res.Err = err
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "streaming search failed", "search_failed",
			logging.String("title", q.Title),
			logging.Int("year", q.Year),
			logging.String(logging.FieldErrorHint, "check network access to the search API"),
			logging.String(logging.FieldImpact, "entry keeps native flags only and is not stamped"),
			logging.Error(err),
		)
	default:
		if best, ok := SelectBest(q.Title, q.Year, candidates); ok {
			res.Outcome = OutcomeMatched
			res.Streaming = ClassifyOffers(best.Offers)
			res.Candidate = &best
		} else {
			res.Outcome = OutcomeNotFound
		}
	}

	if hasNative {
		res.Streaming.Set(native, true)
	}
	return res
}

func (r *Resolver) search(ctx context.Context, q Query) ([]Candidate, error) {
	if r.searcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "streaming", "search", "no searcher configured", nil)
	}
	req := SearchRequest{
		Query:   searchText(q.Title, q.Year),
		Country: r.opts.Country,
		Limit:   r.opts.ResultLimit,
	}
	if req.Query == "" {
		return nil, services.Wrap(services.ErrParse, "streaming", "search", "empty title", nil)
	}
	key := cacheKey(req)
	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			return cached, nil
		}
	}

	val, err, _ := r.group.Do(key, func() (any, error) {
		var found []Candidate
		err := services.Retry(ctx, r.opts.Retry, func(attemptCtx context.Context) error {
			var searchErr error
			found, searchErr = r.searcher.Search(attemptCtx, req)
			return searchErr
		})
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			r.cache.Add(key, found)
		}
		return found, nil
	})
	if err != nil {
		return nil, err
	}
	candidates, _ := val.([]Candidate)
	return candidates, nil
}

func searchText(title string, year int) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	if year > 0 {
		return title + " " + strconv.Itoa(year)
	}
	return title
}

func cacheKey(req SearchRequest) string {
	return fmt.Sprintf("%s|%d|%s", req.Country, req.Limit, strings.ToLower(req.Query))
}
