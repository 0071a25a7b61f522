package justwatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rewatch/internal/services"
	"rewatch/internal/streaming"
)

const (
	// DefaultURL is the public GraphQL endpoint.
	DefaultURL     = "https://apis.justwatch.com/graphql"
	defaultTimeout = 15 * time.Second
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
)

const searchQuery = `query GetSearchTitles($country: Country!, $searchTitlesFilter: TitleFilter!, $first: Int!) {
  popularTitles(country: $country, filter: $searchTitlesFilter, first: $first) {
    edges {
      node {
        id
        objectId
        objectType
        content(country: $country, language: "en") {
          title
          originalReleaseYear
        }
        offers(country: $country, platform: WEB) {
          monetizationType
          package {
            packageId
            clearName
          }
        }
      }
    }
  }
}`

// Client issues title searches.
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

// New constructs a client for the GraphQL endpoint. An empty url uses
// DefaultURL.
func New(url string, opts ...Option) *Client {
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultURL
	}
	client := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		PopularTitles struct {
			Edges []struct {
				Node node `json:"node"`
			} `json:"edges"`
		} `json:"popularTitles"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type node struct {
	ID         string `json:"id"`
	ObjectType string `json:"objectType"`
	Content    struct {
		Title               string `json:"title"`
		OriginalReleaseYear int    `json:"originalReleaseYear"`
	} `json:"content"`
	Offers []struct {
		MonetizationType string `json:"monetizationType"`
		Package          struct {
			PackageID int    `json:"packageId"`
			ClearName string `json:"clearName"`
		} `json:"package"`
	} `json:"offers"`
}

// Search runs a popularTitles query. Network failures, timeouts, and 5xx or
// 429 responses are transport errors; other failures are parse errors.
func (c *Client) Search(ctx context.Context, req streaming.SearchRequest) ([]streaming.Candidate, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	body, err := json.Marshal(graphQLRequest{
		Query: searchQuery,
		Variables: map[string]any{
			"country":            req.Country,
			"searchTitlesFilter": map[string]string{"searchQuery": query},
			"first":              req.Limit,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "justwatch", "build request", "invalid endpoint", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "justwatch", "search", fmt.Sprintf("request failed (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		marker := services.ErrParse
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			marker = services.ErrTransport
		}
		return nil, services.Wrap(marker, "justwatch", "search", fmt.Sprintf("search returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrParse, "justwatch", "decode", "invalid response body", err)
	}
	if len(payload.Errors) > 0 {
		return nil, services.Wrap(services.ErrParse, "justwatch", "search", payload.Errors[0].Message, nil)
	}

	edges := payload.Data.PopularTitles.Edges
	candidates := make([]streaming.Candidate, 0, len(edges))
	for _, edge := range edges {
		candidates = append(candidates, edge.Node.candidate())
	}
	return candidates, nil
}

func (n node) candidate() streaming.Candidate {
	c := streaming.Candidate{
		ID:          n.ID,
		ObjectType:  n.ObjectType,
		Title:       n.Content.Title,
		ReleaseYear: n.Content.OriginalReleaseYear,
		Offers:      make([]streaming.Offer, 0, len(n.Offers)),
	}
	for _, offer := range n.Offers {
		c.Offers = append(c.Offers, streaming.Offer{
			MonetizationType: offer.MonetizationType,
			PackageID:        offer.Package.PackageID,
			ProviderName:     offer.Package.ClearName,
		})
	}
	return c
}
