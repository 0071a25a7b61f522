package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rewatch/internal/logging"
	"rewatch/internal/services"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "rewatch/1.0 (+https://github.com/rewatch)"
)

// Client fetches the podcast feed over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
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

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a feed client for url.
func NewClient(url string, opts ...Option) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("feed url required")
	}
	client := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	client.logger = logging.NewComponentLogger(client.logger, "feed")
	return client, nil
}

// URL returns the feed location.
func (c *Client) URL() string {
	return c.url
}

// Fetch downloads and parses the feed. Network and status failures are
// reported as transport errors, malformed documents as parse errors.
func (c *Client) Fetch(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "feed", "build request", "invalid feed url", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "feed", "fetch", fmt.Sprintf("request failed (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransport, "feed", "fetch", fmt.Sprintf("feed returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	items, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("feed fetched",
		logging.String(logging.FieldEventType, "feed_fetched"),
		logging.Int("items", len(items)),
		logging.Duration("latency", latency),
	)
	return items, nil
}
