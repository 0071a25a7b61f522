package applepodcasts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rewatch/internal/services"
)

const (
	// DefaultURL is the public iTunes search endpoint.
	DefaultURL     = "https://itunes.apple.com/search"
	defaultTimeout = 15 * time.Second
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
	entityEpisode  = "podcastEpisode"
)

// SearchRequest is one episode search.
type SearchRequest struct {
	Term  string
	Limit int
}

// Result is the subset of an iTunes search result used for matching.
type Result struct {
	TrackName      string `json:"trackName"`
	CollectionName string `json:"collectionName"`
	TrackViewURL   string `json:"trackViewUrl"`
}

// Client issues episode searches.
type Client struct {
	url        string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New constructs a client for the search endpoint. An empty endpoint uses
// DefaultURL.
func New(endpoint string, opts ...Option) *Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultURL
	}
	client := &Client{
		url:        endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

type searchResponse struct {
	ResultCount int      `json:"resultCount"`
	Results     []Result `json:"results"`
}

// Search runs one podcastEpisode search. Network failures, timeouts, and 5xx
// or 429 responses are transport errors; other failures are parse errors.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Result, error) {
	term := strings.TrimSpace(req.Term)
	if term == "" {
		return nil, errors.New("search term must not be empty")
	}
	endpoint, err := url.Parse(c.url)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "applepodcasts", "build request", "invalid endpoint", err)
	}
	params := endpoint.Query()
	params.Set("term", term)
	params.Set("entity", entityEpisode)
	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}
	endpoint.RawQuery = params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "applepodcasts", "build request", "invalid endpoint", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "applepodcasts", "search", fmt.Sprintf("request failed (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		marker := services.ErrParse
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			marker = services.ErrTransport
		}
		return nil, services.Wrap(marker, "applepodcasts", "search", fmt.Sprintf("search returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrParse, "applepodcasts", "decode", "invalid response body", err)
	}
	return payload.Results, nil
}
