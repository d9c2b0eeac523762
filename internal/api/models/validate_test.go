package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherodds/weatherodds/internal/api/models"
	"github.com/weatherodds/weatherodds/internal/climate"
)

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func fieldCodes(errs []models.FieldError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Code
	}
	return out
}

func TestValidate_OddsRequest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected map[string]string
	}{
		{
			name: "valid",
			body: `{"lat":40.7128,"lon":-74.006,"date":"2025-07-04","conditions":["very-hot","very-wet"]}`,
		},
		{
			name: "zero coordinates are valid",
			body: `{"lat":0,"lon":0,"date":"2025-07-04","conditions":["very-cold"]}`,
		},
		{
			name:     "missing everything",
			body:     `{}`,
			expected: map[string]string{"lat": "REQUIRED", "lon": "REQUIRED", "date": "REQUIRED", "conditions": "REQUIRED"},
		},
		{
			name:     "coordinates out of range",
			body:     `{"lat":91,"lon":-181,"date":"2025-07-04","conditions":["very-hot"]}`,
			expected: map[string]string{"lat": "OUT_OF_RANGE", "lon": "OUT_OF_RANGE"},
		},
		{
			name:     "bad date",
			body:     `{"lat":1,"lon":1,"date":"07/04/2025","conditions":["very-hot"]}`,
			expected: map[string]string{"date": "INVALID_FORMAT"},
		},
		{
			name:     "empty conditions",
			body:     `{"lat":1,"lon":1,"date":"2025-07-04","conditions":[]}`,
			expected: map[string]string{"conditions": "REQUIRED"},
		},
		{
			name:     "unknown condition",
			body:     `{"lat":1,"lon":1,"date":"2025-07-04","conditions":["very-hot","balmy"]}`,
			expected: map[string]string{"conditions[1]": "UNKNOWN_CONDITION"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := models.Validate(decode[models.OddsRequest](t, tt.body))
			if tt.expected == nil {
				assert.Nil(t, errs)
				return
			}
			assert.Equal(t, tt.expected, fieldCodes(errs))
		})
	}
}

func TestValidate_UnknownConditionMessageListsCatalogue(t *testing.T) {
	errs := models.Validate(decode[models.OddsRequest](t, `{"lat":1,"lon":1,"date":"2025-07-04","conditions":["balmy"]}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "very-hot")
	assert.Contains(t, errs[0].Message, "very-comfortable")
}

func TestOddsRequest_ToQuery(t *testing.T) {
	req := decode[models.OddsRequest](t, `{"lat":51.5,"lon":-0.12,"date":"2024-02-29","conditions":["very-wet"]}`)
	require.Nil(t, models.Validate(req))

	q, err := req.ToQuery()
	require.NoError(t, err)
	assert.Equal(t, 51.5, q.Lat)
	assert.Equal(t, -0.12, q.Lon)
	assert.Equal(t, climate.NewDate(2024, time.February, 29), q.Date)
	assert.Equal(t, []climate.ConditionID{climate.ConditionVeryWet}, q.Conditions)
}

func TestRangeRequest_Validate(t *testing.T) {
	errs := models.Validate(decode[models.RangeRequest](t, `{"lat":1,"lon":1,"startDate":"2025-07-01","conditions":["very-hot"]}`))
	assert.Equal(t, map[string]string{"endDate": "REQUIRED"}, fieldCodes(errs))

	req := decode[models.RangeRequest](t, `{"lat":1,"lon":2,"startDate":"2025-07-01","endDate":"2025-07-03","conditions":["very-hot"]}`)
	require.Nil(t, models.Validate(req))

	q, err := req.ToQuery()
	require.NoError(t, err)
	assert.Equal(t, climate.NewDate(2025, time.July, 1), q.Start)
	assert.Equal(t, climate.NewDate(2025, time.July, 3), q.End)
}

func TestTrendParams_Validate(t *testing.T) {
	lat, lon := 95.0, 10.0
	errs := models.Validate(models.TrendParams{Lat: &lat, Lon: &lon, Date: "2025-07-04"})
	assert.Equal(t, map[string]string{"lat": "OUT_OF_RANGE"}, fieldCodes(errs))

	lat = 45
	p := models.TrendParams{Lat: &lat, Lon: &lon, Date: "2025-07-04"}
	require.Nil(t, models.Validate(p))

	q, err := p.ToQuery()
	require.NoError(t, err)
	assert.Equal(t, climate.NewDate(2025, time.July, 4), q.Date)
}

func TestExportRequest_RequiresASection(t *testing.T) {
	errs := models.Validate(decode[models.ExportRequest](t, `{"lat":1,"lon":1}`))
	assert.Equal(t, map[string]string{"probabilities": "REQUIRED"}, fieldCodes(errs))

	for _, body := range []string{
		`{"lat":1,"lon":1,"probabilities":[{"conditionId":"very-hot","probability":40}]}`,
		`{"lat":1,"lon":1,"trend":[{"year":"2020","temperatureF":80,"humidityPct":50,"precipitationMm":0,"windSpeedMph":5}]}`,
		`{"lat":1,"lon":1,"range":{"dailyPredictions":[],"overallProbabilities":[]}}`,
	} {
		assert.Nil(t, models.Validate(decode[models.ExportRequest](t, body)), body)
	}
}

func TestExportRequest_ToReport(t *testing.T) {
	req := decode[models.ExportRequest](t, `{"lat":40.7,"lon":-74,"location":"New York","date":"2025-07-04",
		"probabilities":[{"conditionId":"very-hot","probability":40}]}`)
	now := time.Date(2025, time.July, 1, 9, 30, 0, 0, time.UTC)

	report := req.ToReport(now)
	assert.Equal(t, 40.7, report.Lat)
	assert.Equal(t, "New York", report.Location)
	assert.Equal(t, now, report.GeneratedAt)
	require.NotNil(t, report.Date)
	assert.Equal(t, "2025-07-04", report.Date.String())
	require.Len(t, report.Odds, 1)
	assert.Equal(t, 40, report.Odds[0].Probability)
}
