// Package openmeteo implements geocoding.Searcher on the Open-Meteo
// geocoding API.
package openmeteo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/weatherodds/weatherodds/internal/geocoding"
	"github.com/weatherodds/weatherodds/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "open-meteo-geocoding"

	// DefaultBaseURL is the Open-Meteo geocoding API base URL.
	DefaultBaseURL = "https://geocoding-api.open-meteo.com"

	// DefaultResultCount is how many matches are requested per query.
	DefaultResultCount = 5
)

var _ geocoding.Searcher = (*Client)(nil)

// ClientConfig holds configuration for the geocoding client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional).
	BaseURL string

	// Count is the maximum number of results (default: 5).
	Count int

	// Language of returned place names (default: "en").
	Language string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo geocoding API client.
type Client struct {
	baseURL    string
	count      int
	language   string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new geocoding client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	count := cfg.Count
	if count <= 0 {
		count = DefaultResultCount
	}

	language := cfg.Language
	if language == "" {
		language = "en"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		count:      count,
		language:   language,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Search looks up places by name. Queries shorter than
// geocoding.MinQueryLength return no results without calling upstream.
func (c *Client) Search(ctx context.Context, query string) ([]geocoding.Location, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < geocoding.MinQueryLength {
		return []geocoding.Location{}, nil
	}

	q := url.Values{}
	q.Set("name", query)
	q.Set("count", strconv.Itoa(c.count))
	q.Set("language", c.language)
	q.Set("format", "json")

	var resp searchResponse
	if err := c.httpClient.GetJSON(ctx, "search", c.baseURL+"/v1/search?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", geocoding.ErrLookupFailed, err)
	}

	locations := make([]geocoding.Location, 0, len(resp.Results))
	for _, r := range resp.Results {
		locations = append(locations, geocoding.Location{
			Lat:     r.Latitude,
			Lon:     r.Longitude,
			Name:    r.Name,
			Country: r.Country,
		})
	}

	c.logger.Debug().Str("query", query).Int("results", len(locations)).Msg("geocoded")

	return locations, nil
}

// Open-Meteo geocoding response structures.

type searchResponse struct {
	Results []struct {
		ID        int64   `json:"id"`
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}
