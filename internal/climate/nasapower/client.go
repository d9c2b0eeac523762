// Package nasapower adapts the NASA POWER daily point API into climate-normal
// records.
package nasapower

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/weatherodds/weatherodds/internal/climate"
	"github.com/weatherodds/weatherodds/internal/provider/resilience"
)

const (
	// ProviderName identifies this climate provider.
	ProviderName = "nasa-power"

	// DefaultBaseURL is the NASA POWER API base URL.
	DefaultBaseURL = "https://power.larc.nasa.gov/api"

	// FillValue marks a missing measurement in POWER responses.
	FillValue = -999.0

	dayKeyLayout = "20060102"
)

// Requested POWER parameters.
const (
	paramTemperatureMax = "T2M_MAX"
	paramPrecipitation  = "PRECTOTCORR"
	paramHumidity       = "RH2M"
	paramWindSpeedMax   = "WS10M_MAX"
)

var parameters = []string{paramTemperatureMax, paramPrecipitation, paramHumidity, paramWindSpeedMax}

var _ climate.ClimateNormalProvider = (*Client)(nil)

// ClientConfig holds configuration for the NASA POWER client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public POWER API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a NASA POWER API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new NASA POWER client.
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

// FetchSamples fetches every day from Jan 1 of startYear through Dec 31 of endYear.
func (c *Client) FetchSamples(ctx context.Context, lat, lon float64, startYear, endYear int) ([]climate.RawRecord, error) {
	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	return c.FetchDailySamples(ctx, lat, lon, start, end)
}

// FetchDailySamples fetches one record per reported day of [start, end].
func (c *Client) FetchDailySamples(ctx context.Context, lat, lon float64, start, end time.Time) ([]climate.RawRecord, error) {
	q := url.Values{}
	q.Set("parameters", strings.Join(parameters, ","))
	q.Set("community", "RE")
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("start", start.Format(dayKeyLayout))
	q.Set("end", end.Format(dayKeyLayout))
	q.Set("format", "JSON")

	var resp dailyPointResponse
	if err := c.httpClient.GetJSON(ctx, "daily_point", c.baseURL+"/temporal/daily/point?"+q.Encode(), &resp); err != nil {
		return nil, classify(err)
	}

	if resp.Properties == nil || resp.Properties.Parameter == nil {
		return nil, fmt.Errorf("%w: response has no properties.parameter", climate.ErrDataUnavailable)
	}

	records := toRecords(resp.Properties.Parameter)

	c.logger.Debug().
		Str("provider", ProviderName).
		Str("start", start.Format(climate.DateLayout)).
		Str("end", end.Format(climate.DateLayout)).
		Int("records", len(records)).
		Msg("fetched climate normals")

	return records, nil
}

// toRecords builds one record per day key reported by any parameter, oldest first.
func toRecords(params map[string]map[string]*float64) []climate.RawRecord {
	keys := make(map[string]struct{})
	for _, series := range params {
		for k := range series {
			keys[k] = struct{}{}
		}
	}

	days := make([]time.Time, 0, len(keys))
	for k := range keys {
		d, err := time.Parse(dayKeyLayout, k)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	records := make([]climate.RawRecord, 0, len(days))
	for _, d := range days {
		k := d.Format(dayKeyLayout)
		records = append(records, climate.RawRecord{
			Date:            d,
			TemperatureMaxC: value(params[paramTemperatureMax], k),
			HumidityPct:     value(params[paramHumidity], k),
			PrecipitationMm: value(params[paramPrecipitation], k),
			WindSpeedMS:     value(params[paramWindSpeedMax], k),
		})
	}
	return records
}

// value returns series[key], or 0 when absent, null or the fill value.
func value(series map[string]*float64, key string) float64 {
	v, ok := series[key]
	if !ok || v == nil || *v == FillValue {
		return 0
	}
	return *v
}

func classify(err error) error {
	if errors.Is(err, resilience.ErrMalformedResponse) {
		return fmt.Errorf("%w: %w", climate.ErrDataUnavailable, err)
	}
	return fmt.Errorf("%w: %w", climate.ErrNetworkFailure, err)
}

// NASA POWER API response structures.

type dailyPointResponse struct {
	Properties *struct {
		Parameter map[string]map[string]*float64 `json:"parameter"`
	} `json:"properties"`
}
