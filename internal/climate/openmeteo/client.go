// Package openmeteo adapts the Open-Meteo historical archive API into
// recent-archive records.
package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/weatherodds/weatherodds/internal/climate"
	"github.com/weatherodds/weatherodds/internal/provider/resilience"
)

const (
	// ProviderName identifies this climate provider.
	ProviderName = "open-meteo-archive"

	// DefaultBaseURL is the Open-Meteo archive API base URL.
	DefaultBaseURL = "https://archive-api.open-meteo.com"
)

var dailyVariables = []string{
	"temperature_2m_max",
	"temperature_2m_min",
	"relative_humidity_2m_max",
	"precipitation_sum",
	"wind_speed_10m_max",
}

var _ climate.RecentArchiveProvider = (*Client)(nil)

// ClientConfig holds configuration for the Open-Meteo archive client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public archive API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo archive API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Open-Meteo archive client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FetchDailySamples fetches daily aggregates for [start, end]. Wind speed is
// requested in m/s.
func (c *Client) FetchDailySamples(ctx context.Context, lat, lon float64, start, end time.Time) ([]climate.RawRecord, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("start_date", start.Format(climate.DateLayout))
	q.Set("end_date", end.Format(climate.DateLayout))
	q.Set("daily", strings.Join(dailyVariables, ","))
	q.Set("wind_speed_unit", "ms")
	q.Set("timezone", "auto")

	var resp archiveResponse
	if err := c.httpClient.GetJSON(ctx, "archive", c.baseURL+"/v1/archive?"+q.Encode(), &resp); err != nil {
		if errors.Is(err, resilience.ErrMalformedResponse) {
			return nil, fmt.Errorf("%w: %w", climate.ErrDataUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %w", climate.ErrNetworkFailure, err)
	}

	if resp.Daily == nil {
		return nil, fmt.Errorf("%w: response has no daily block", climate.ErrDataUnavailable)
	}

	records, err := toRecords(resp.Daily)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("provider", ProviderName).
		Str("start", start.Format(climate.DateLayout)).
		Str("end", end.Format(climate.DateLayout)).
		Int("records", len(records)).
		Msg("fetched archive days")

	return records, nil
}

// toRecords zips the parallel daily arrays. Null or missing entries become 0.
// Records stay index-aligned with the requested span, so an unparseable day
// fails the whole payload.
func toRecords(d *dailyBlock) ([]climate.RawRecord, error) {
	records := make([]climate.RawRecord, 0, len(d.Time))
	for i, day := range d.Time {
		date, err := time.Parse(climate.DateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("%w: daily.time[%d] %q is not a date", climate.ErrDataUnavailable, i, day)
		}
		records = append(records, climate.RawRecord{
			Date:            date,
			TemperatureMaxC: at(d.TemperatureMax, i),
			TemperatureMinC: at(d.TemperatureMin, i),
			HumidityPct:     at(d.HumidityMax, i),
			PrecipitationMm: at(d.PrecipitationSum, i),
			WindSpeedMS:     at(d.WindSpeedMax, i),
		})
	}
	return records, nil
}

func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

// Open-Meteo API response structures.

type archiveResponse struct {
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Timezone  string      `json:"timezone"`
	Daily     *dailyBlock `json:"daily"`
}

type dailyBlock struct {
	Time             []string   `json:"time"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	HumidityMax      []*float64 `json:"relative_humidity_2m_max"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	WindSpeedMax     []*float64 `json:"wind_speed_10m_max"`
}
