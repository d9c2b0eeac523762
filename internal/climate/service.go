package climate

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const instrumentationName = "github.com/weatherodds/weatherodds/internal/climate"

// RecentArchiveProvider fetches recent daily weather records.
type RecentArchiveProvider interface {
	// FetchDailySamples fetches one record per day of [start, end] inclusive.
	// It returns an empty slice when the provider has no data for the span.
	FetchDailySamples(ctx context.Context, lat, lon float64, start, end time.Time) ([]RawRecord, error)

	// Name returns the provider name for logging.
	Name() string
}

// ClimateNormalProvider fetches multi-decade daily climate records.
type ClimateNormalProvider interface {
	RecentArchiveProvider

	// FetchSamples fetches every day from Jan 1 of startYear to Dec 31 of endYear.
	FetchSamples(ctx context.Context, lat, lon float64, startYear, endYear int) ([]RawRecord, error)
}

// ServiceConfig holds configuration for the probability engine.
type ServiceConfig struct {
	// ClimateNormal is the long-range climate-normal provider.
	ClimateNormal ClimateNormalProvider

	// RecentArchive is the recent-years observational archive provider.
	RecentArchive RecentArchiveProvider

	// Logger for engine operations.
	Logger zerolog.Logger

	// Clock anchors the recent-archive and trend windows to "today".
	// Default: real clock.
	Clock clockwork.Clock

	// ClimateNormalStartYear and ClimateNormalEndYear bound the climate-normal
	// span (default: 1990-2020).
	ClimateNormalStartYear int
	ClimateNormalEndYear   int

	// RecentArchiveYears is how many trailing years the archive window covers (default: 10).
	RecentArchiveYears int

	// RangeConcurrency bounds how many days of a range are computed at once (default: 4).
	RangeConcurrency int

	// MaxRangeDays is the longest accepted range, inclusive of both ends (default: 31).
	MaxRangeDays int
}

// Service computes condition probabilities and trend series. It holds only
// configuration, so concurrent use is safe and identical inputs over identical
// upstream data give identical outputs.
type Service struct {
	climateNormal ClimateNormalProvider
	recentArchive RecentArchiveProvider
	logger        zerolog.Logger
	clock         clockwork.Clock

	normalStartYear  int
	normalEndYear    int
	recentYears      int
	rangeConcurrency int
	maxRangeDays     int

	tracer    trace.Tracer
	fallbacks metric.Int64Counter
	samples   metric.Int64Histogram
}

// NewService creates a new probability engine.
func NewService(cfg ServiceConfig) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	normalStart := cfg.ClimateNormalStartYear
	if normalStart == 0 {
		normalStart = 1990
	}

	normalEnd := cfg.ClimateNormalEndYear
	if normalEnd == 0 {
		normalEnd = 2020
	}

	recentYears := cfg.RecentArchiveYears
	if recentYears == 0 {
		recentYears = 10
	}

	concurrency := cfg.RangeConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	maxRangeDays := cfg.MaxRangeDays
	if maxRangeDays <= 0 {
		maxRangeDays = 31
	}

	meter := otel.Meter(instrumentationName)

	fallbacks, err := meter.Int64Counter(
		"odds.fallback.total",
		metric.WithDescription("Number of days answered with the default probability"),
		metric.WithUnit("{day}"),
	)
	if err != nil {
		fallbacks = noop.Int64Counter{}
	}

	var samples metric.Int64Histogram
	samples, err = meter.Int64Histogram(
		"odds.dataset.size",
		metric.WithDescription("Number of pooled samples per computed day"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		samples = noop.Int64Histogram{}
	}

	return &Service{
		climateNormal:    cfg.ClimateNormal,
		recentArchive:    cfg.RecentArchive,
		logger:           cfg.Logger,
		clock:            clock,
		normalStartYear:  normalStart,
		normalEndYear:    normalEnd,
		recentYears:      recentYears,
		rangeConcurrency: concurrency,
		maxRangeDays:     maxRangeDays,
		tracer:           otel.Tracer(instrumentationName),
		fallbacks:        fallbacks,
		samples:          samples,
	}
}

// ComputeProbabilities returns the probability of each requested condition on
// the query date's month and day. Provider failures degrade to
// DefaultProbability; the only error returned is a validation error.
func (s *Service) ComputeProbabilities(ctx context.Context, q ProbabilityQuery) ([]ProbabilityResult, error) {
	if err := validateCoordinates(q.Lat, q.Lon); err != nil {
		return nil, err
	}
	if q.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	if err := validateConditions(q.Conditions); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "climate.ComputeProbabilities", trace.WithAttributes(
		attribute.String("odds.date", q.Date.String()),
		attribute.Int("odds.conditions", len(q.Conditions)),
	))
	defer span.End()

	return s.probabilitiesForDay(ctx, q.Lat, q.Lon, q.Date, q.Conditions), nil
}

// ComputeRangeProbabilities runs the single-date pipeline for every day of
// [Start, End] and averages each condition across days.
func (s *Service) ComputeRangeProbabilities(ctx context.Context, q RangeQuery) (*RangeResult, error) {
	if err := validateCoordinates(q.Lat, q.Lon); err != nil {
		return nil, err
	}
	if q.Start.IsZero() || q.End.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if q.End.Before(q.Start) {
		return nil, fmt.Errorf("%w: end date %s is before start date %s", ErrValidation, q.End, q.Start)
	}
	days := q.Start.DaysUntil(q.End) + 1
	if days > s.maxRangeDays {
		return nil, fmt.Errorf("%w: range of %d days exceeds the limit of %d", ErrValidation, days, s.maxRangeDays)
	}
	if err := validateConditions(q.Conditions); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "climate.ComputeRangeProbabilities", trace.WithAttributes(
		attribute.String("odds.start", q.Start.String()),
		attribute.String("odds.end", q.End.String()),
		attribute.Int("odds.days", days),
	))
	defer span.End()

	predictions := make([]DailyPrediction, days)

	var g errgroup.Group
	g.SetLimit(s.rangeConcurrency)
	for i := 0; i < days; i++ {
		day := q.Start.AddDays(i)
		g.Go(func() error {
			probs := s.probabilitiesForDay(ctx, q.Lat, q.Lon, day, q.Conditions)
			predictions[i] = DailyPrediction{
				Date:               day,
				Probabilities:      probs,
				AverageProbability: AverageProbability(probs),
			}
			return nil
		})
	}
	_ = g.Wait() // day pipelines never fail

	return &RangeResult{
		DailyPredictions:     predictions,
		OverallProbabilities: overallProbabilities(predictions, q.Conditions),
	}, nil
}

// probabilitiesForDay builds the pooled dataset for day and evaluates it.
func (s *Service) probabilitiesForDay(ctx context.Context, lat, lon float64, day Date, ids []ConditionID) []ProbabilityResult {
	ds := s.buildDataset(ctx, lat, lon, day)

	s.samples.Record(ctx, int64(len(ds.Samples)))
	if len(ds.Samples) == 0 {
		s.fallbacks.Add(ctx, 1)
		s.logger.Warn().
			Float64("lat", lat).
			Float64("lon", lon).
			Str("date", day.String()).
			Int("default_probability", DefaultProbability).
			Msg("no samples available, answering with default probability")
	}

	return Evaluate(ds.Samples, ids)
}

// overallProbabilities averages each condition's per-day probability.
// Predictions must carry probabilities in ids order.
func overallProbabilities(predictions []DailyPrediction, ids []ConditionID) []ProbabilityResult {
	overall := make([]ProbabilityResult, len(ids))
	for j, id := range ids {
		sum := 0
		for _, p := range predictions {
			sum += p.Probabilities[j].Probability
		}
		mean := 0.0
		if len(predictions) > 0 {
			mean = float64(sum) / float64(len(predictions))
		}
		overall[j] = ProbabilityResult{ConditionID: id, Probability: int(math.Round(mean))}
	}
	return overall
}

func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: coordinates (%v, %v) out of range", ErrValidation, lat, lon)
	}
	return nil
}

func validateConditions(ids []ConditionID) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one condition is required", ErrValidation)
	}
	for _, id := range ids {
		if _, ok := LookupCondition(id); !ok {
			return fmt.Errorf("%w: unknown condition %q", ErrValidation, id)
		}
	}
	return nil
}
