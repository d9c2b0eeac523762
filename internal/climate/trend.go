package climate

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TrendYears is the length of the trailing trend window, current year included.
	TrendYears = 6

	// trendDayStride is the index offset between yearly anchors in the fetched
	// span. It ignores leap days, so anchors after a Feb 29 drift by one day.
	trendDayStride = 365
)

// ComputeTrend returns one representative point per year for the trailing
// TrendYears years, oldest first, anchored at the query date's month and day.
// Provider failures yield an empty series; the only error returned is a
// validation error.
func (s *Service) ComputeTrend(ctx context.Context, q TrendQuery) ([]TrendPoint, error) {
	if err := validateCoordinates(q.Lat, q.Lon); err != nil {
		return nil, err
	}
	if q.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}

	ctx, span := s.tracer.Start(ctx, "climate.ComputeTrend", trace.WithAttributes(
		attribute.String("odds.date", q.Date.String()),
	))
	defer span.End()

	today := DateOf(s.clock.Now())
	firstYear := today.Year() - (TrendYears - 1)

	start := q.Date.InYear(firstYear)
	end := q.Date.InYear(today.Year())
	// The archive rejects spans reaching into the future.
	if yesterday := today.AddDays(-1); yesterday.Before(end) {
		end = yesterday
	}

	records, err := s.recentArchive.FetchDailySamples(ctx, q.Lat, q.Lon, start.Time(), end.Time())
	if err != nil {
		s.logger.Warn().Err(err).
			Str("provider", s.recentArchive.Name()).
			Str("date", q.Date.String()).
			Msg("trend fetch failed, returning empty series")
		return []TrendPoint{}, nil
	}

	return sampleTrend(records, firstYear), nil
}

// sampleTrend picks records[i*trendDayStride] for each year of the window,
// skipping anchors past the end of the span.
func sampleTrend(records []RawRecord, firstYear int) []TrendPoint {
	points := make([]TrendPoint, 0, TrendYears)
	for i := 0; i < TrendYears; i++ {
		idx := i * trendDayStride
		if idx >= len(records) {
			break
		}
		r := records[idx]
		points = append(points, TrendPoint{
			Year:            strconv.Itoa(firstYear + i),
			TemperatureF:    int(math.Round(CelsiusToFahrenheit(r.TemperatureMaxC))),
			HumidityPct:     int(math.Round(r.HumidityPct)),
			PrecipitationMm: roundTo(r.PrecipitationMm, 1),
			WindSpeedMph:    roundTo(MetersPerSecondToMph(r.WindSpeedMS), 1),
		})
	}
	return points
}
