package api_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherodds/weatherodds/internal/api"
	"github.com/weatherodds/weatherodds/internal/api/models"
	"github.com/weatherodds/weatherodds/internal/climate"
	"github.com/weatherodds/weatherodds/internal/export"
	"github.com/weatherodds/weatherodds/internal/geocoding"
)

var testNow = time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)

// stubProvider serves July 1-5 of every requested year at a fixed temperature.
type stubProvider struct {
	name  string
	tempC float64
	err   error
	calls atomic.Int32
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) FetchSamples(_ context.Context, _, _ float64, startYear, endYear int) ([]climate.RawRecord, error) {
	return p.records(startYear, endYear)
}

func (p *stubProvider) FetchDailySamples(_ context.Context, _, _ float64, start, end time.Time) ([]climate.RawRecord, error) {
	return p.records(start.Year(), end.Year())
}

func (p *stubProvider) records(startYear, endYear int) ([]climate.RawRecord, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	var out []climate.RawRecord
	for y := startYear; y <= endYear; y++ {
		for d := 1; d <= 5; d++ {
			out = append(out, climate.RawRecord{
				Date:            time.Date(y, time.July, d, 0, 0, 0, 0, time.UTC),
				TemperatureMaxC: p.tempC,
				HumidityPct:     40,
				WindSpeedMS:     2,
			})
		}
	}
	return out, nil
}

type stubSearcher struct{}

func (stubSearcher) Name() string { return "stub" }

func (stubSearcher) Search(_ context.Context, query string) ([]geocoding.Location, error) {
	return []geocoding.Location{{Lat: 51.5074, Lon: -0.1278, Name: query, Country: "United Kingdom"}}, nil
}

type testEnv struct {
	router  http.Handler
	normal  *stubProvider
	archive *stubProvider
}

func newTestEnv(t *testing.T, providerErr error, requireTLS bool) *testEnv {
	t.Helper()

	normal := &stubProvider{name: "nasa-power", tempC: 35, err: providerErr}
	archive := &stubProvider{name: "open-meteo-archive", tempC: 35, err: providerErr}
	clock := clockwork.NewFakeClockAt(testNow)

	service := climate.NewService(climate.ServiceConfig{
		ClimateNormal: normal,
		RecentArchive: archive,
		Logger:        zerolog.Nop(),
		Clock:         clock,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:     "test",
		BuildTime:   "2025-07-01T00:00:00Z",
		Logger:      zerolog.New(io.Discard),
		OddsService: service,
		Geocoder:    geocoding.NewService(stubSearcher{}, zerolog.Nop()),
		Clock:       clock,
		RequireTLS:  requireTLS,
	})

	return &testEnv{router: router, normal: normal, archive: archive}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t, nil, false)

	rec := env.do(http.MethodGet, "/v1/ops/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/v1/ops/ready", "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/v1/ops/status", "").Code)
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, nil, false)

	rec := env.do(http.MethodGet, "/v1/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, models.ProblemTypeNotFound, decodeProblem(t, rec).Type)

	rec = env.do(http.MethodGet, "/v1/odds", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, models.ProblemTypeMethodNotAllowed, decodeProblem(t, rec).Type)
}

func TestRouter_ListConditions(t *testing.T) {
	env := newTestEnv(t, nil, false)

	rec := env.do(http.MethodGet, "/v1/conditions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ConditionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Conditions, 6)
	assert.Equal(t, climate.ConditionVeryHot, resp.Conditions[0].ID)
	assert.Equal(t, "Very Hot", resp.Conditions[0].Label)
	assert.Equal(t, climate.ConditionVeryComfortable, resp.Conditions[5].ID)
}

func TestRouter_ComputeOdds(t *testing.T) {
	env := newTestEnv(t, nil, false)

	rec := env.do(http.MethodPost, "/v1/odds",
		`{"lat":40.7128,"lon":-74.006,"date":"2025-07-04","conditions":["very-hot","very-cold"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.OddsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []climate.ProbabilityResult{
		{ConditionID: climate.ConditionVeryHot, Probability: 100},
		{ConditionID: climate.ConditionVeryCold, Probability: 0},
	}, resp.Probabilities)
}

func TestRouter_ComputeOdds_ProvidersDownStillAnswers(t *testing.T) {
	env := newTestEnv(t, climate.ErrNetworkFailure, false)

	rec := env.do(http.MethodPost, "/v1/odds",
		`{"lat":40.7128,"lon":-74.006,"date":"2025-07-04","conditions":["very-hot","very-wet"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.OddsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Probabilities, 2)
	for _, p := range resp.Probabilities {
		assert.Equal(t, climate.DefaultProbability, p.Probability)
	}
}

func TestRouter_ComputeOdds_InvalidInput(t *testing.T) {
	env := newTestEnv(t, nil, false)

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"out of range latitude", `{"lat":120,"lon":0,"date":"2025-07-04","conditions":["very-hot"]}`, []string{"lat"}},
		{"missing date", `{"lat":1,"lon":1,"conditions":["very-hot"]}`, []string{"date"}},
		{"no conditions", `{"lat":1,"lon":1,"date":"2025-07-04","conditions":[]}`, []string{"conditions"}},
		{"unknown condition", `{"lat":1,"lon":1,"date":"2025-07-04","conditions":["foggy"]}`, []string{"conditions[0]"}},
		{"malformed json", `{"lat":`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/v1/odds", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			p := decodeProblem(t, rec)
			assert.Equal(t, models.ProblemTypeValidation, p.Type)
			assert.Equal(t, "/v1/odds", p.Instance)

			fields := make([]string, 0, len(p.Errors))
			for _, e := range p.Errors {
				fields = append(fields, e.Field)
			}
			if tt.fields == nil {
				assert.Empty(t, fields)
			} else {
				assert.ElementsMatch(t, tt.fields, fields)
			}
		})
	}

	assert.Zero(t, env.normal.calls.Load(), "validation failures must not reach providers")
	assert.Zero(t, env.archive.calls.Load())
}

func TestRouter_ComputeOdds_RejectsNonJSON(t *testing.T) {
	env := newTestEnv(t, nil, false)

	req := httptest.NewRequest(http.MethodPost, "/v1/odds", strings.NewReader("lat=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_ComputeRange(t *testing.T) {
	env := newTestEnv(t, nil, false)

	rec := env.do(http.MethodPost, "/v1/odds:range",
		`{"lat":1,"lon":2,"startDate":"2025-07-01","endDate":"2025-07-03","conditions":["very-hot"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result climate.RangeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.DailyPredictions, 3)
	assert.Equal(t, "2025-07-01", result.DailyPredictions[0].Date.String())
	assert.Equal(t, "2025-07-03", result.DailyPredictions[2].Date.String())
	assert.Equal(t, 100.0, result.DailyPredictions[1].AverageProbability)
	assert.Equal(t, []climate.ProbabilityResult{{ConditionID: climate.ConditionVeryHot, Probability: 100}}, result.OverallProbabilities)
}

func TestRouter_ComputeRange_EngineValidation(t *testing.T) {
	env := newTestEnv(t, nil, false)

	tests := map[string]string{
		"inverted":  `{"lat":1,"lon":2,"startDate":"2025-07-10","endDate":"2025-07-01","conditions":["very-hot"]}`,
		"too long":  `{"lat":1,"lon":2,"startDate":"2025-01-01","endDate":"2025-03-01","conditions":["very-hot"]}`,
		"bad dates": `{"lat":1,"lon":2,"startDate":"tomorrow","endDate":"2025-03-01","conditions":["very-hot"]}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/v1/odds:range", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Zero(t, env.normal.calls.Load())
}

func TestRouter_GetTrend(t *testing.T) {
	env := newTestEnv(t, nil, false)

	rec := env.do(http.MethodGet, "/v1/trends?lat=40.7&lon=-74&date=2025-07-01", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.TrendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Points)
	assert.Equal(t, "2020", resp.Points[0].Year)
	assert.Equal(t, 95, resp.Points[0].TemperatureF)
}

func TestRouter_GetTrend_ProviderDownIsEmpty(t *testing.T) {
	env := newTestEnv(t, errors.New("boom"), false)

	rec := env.do(http.MethodGet, "/v1/trends?lat=40.7&lon=-74&date=2025-07-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"points":[]}`, rec.Body.String())
}

func TestRouter_GetTrend_InvalidQuery(t *testing.T) {
	env := newTestEnv(t, nil, false)

	rec := env.do(http.MethodGet, "/v1/trends?lat=north&lon=-74&date=2025-07-01", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodeProblem(t, rec)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "lat", p.Errors[0].Field)
	assert.Equal(t, models.CodeInvalidFormat, p.Errors[0].Code)

	rec = env.do(http.MethodGet, "/v1/trends", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decodeProblem(t, rec).Errors, 3)
}

func TestRouter_SearchLocations(t *testing.T) {
	env := newTestEnv(t, nil, false)

	rec := env.do(http.MethodGet, "/v1/locations?q=London", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LocationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "London", resp.Results[0].Name)

	rec = env.do(http.MethodGet, "/v1/locations?q=L", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestRouter_CreateExport_CSV(t *testing.T) {
	env := newTestEnv(t, nil, false)

	rec := env.do(http.MethodPost, "/v1/exports?format=csv",
		`{"lat":40.7,"lon":-74,"date":"2025-07-04","probabilities":[{"conditionId":"very-hot","probability":40},{"conditionId":"very-wet","probability":12}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="weather-odds-20250715T120000Z.csv"`, rec.Header().Get("Content-Disposition"))

	rows, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, export.CSVHeader, rows[0])
}

func TestRouter_CreateExport_JSON(t *testing.T) {
	env := newTestEnv(t, nil, false)

	rec := env.do(http.MethodPost, "/v1/exports",
		`{"lat":40.7,"lon":-74,"trend":[{"year":"2024","temperatureF":88,"humidityPct":60,"precipitationMm":0.5,"windSpeedMph":7}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".json")

	var report export.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, testNow.Equal(report.GeneratedAt))
	require.Len(t, report.Trend, 1)
}

func TestRouter_CreateExport_Invalid(t *testing.T) {
	env := newTestEnv(t, nil, false)

	rec := env.do(http.MethodPost, "/v1/exports?format=xml", `{"lat":1,"lon":1,"probabilities":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "format", decodeProblem(t, rec).Errors[0].Field)

	rec = env.do(http.MethodPost, "/v1/exports?format=csv", `{"lat":1,"lon":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "probabilities", decodeProblem(t, rec).Errors[0].Field)
}

func TestRouter_ComputeRateLimit(t *testing.T) {
	env := newTestEnv(t, nil, false)

	body := `{"lat":1,"lon":1,"date":"2025-07-04","conditions":["very-hot"]}`
	for i := 0; i < 30; i++ {
		require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/v1/odds", body).Code, "request %d", i+1)
	}

	rec := env.do(http.MethodPost, "/v1/odds", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// health probes are not limited
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/v1/ops/health", "").Code)
}

func TestRouter_RequireTLS(t *testing.T) {
	env := newTestEnv(t, nil, true)

	req := httptest.NewRequest(http.MethodGet, "/v1/conditions", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "http")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, models.ProblemTypeTLSRequired, decodeProblem(t, rec).Type)
}
