// Package climate implements the climatological probability engine: it pools
// historical daily weather from a climate-normal provider and a recent-archive
// provider and turns the pooled samples into condition probabilities.
package climate

import (
	"errors"
	"time"
)

// Engine errors.
var (
	// ErrNetworkFailure means a provider was unreachable or answered non-2xx.
	ErrNetworkFailure = errors.New("weather provider unreachable")

	// ErrDataUnavailable means a provider answered but without a usable payload.
	ErrDataUnavailable = errors.New("weather data unavailable")

	// ErrValidation is wrapped by every input validation failure.
	ErrValidation = errors.New("invalid query")
)

// DefaultProbability is reported for every requested condition when the pooled
// dataset is empty, e.g. because both providers failed.
const DefaultProbability = 50

// Provenance identifies which provider produced a sample.
type Provenance string

const (
	ProvenanceClimateNormal Provenance = "CLIMATE_NORMAL"
	ProvenanceRecentArchive Provenance = "RECENT_ARCHIVE"
)

// RawRecord is one day of provider data in provider units.
type RawRecord struct {
	Date time.Time

	// Temperatures in Celsius
	TemperatureMaxC float64
	TemperatureMinC float64

	// Relative humidity percentage (0-100)
	HumidityPct float64

	// Daily precipitation total in mm
	PrecipitationMm float64

	// Daily maximum wind speed in m/s
	WindSpeedMS float64
}

// Sample is one day of weather in canonical units.
type Sample struct {
	TemperatureF    float64 // daily maximum
	HumidityPct     float64
	PrecipitationMm float64
	WindSpeedMph    float64 // daily maximum
	Provenance      Provenance
}

// ProbabilityResult is the estimated probability of one condition.
type ProbabilityResult struct {
	ConditionID ConditionID `json:"conditionId"`
	Probability int         `json:"probability"`
}

// DailyPrediction holds the probabilities computed for one calendar day of a range.
type DailyPrediction struct {
	Date               Date                `json:"date"`
	Probabilities      []ProbabilityResult `json:"probabilities"`
	AverageProbability float64             `json:"averageProbability"`
}

// RangeResult is the outcome of a range query.
type RangeResult struct {
	DailyPredictions     []DailyPrediction   `json:"dailyPredictions"`
	OverallProbabilities []ProbabilityResult `json:"overallProbabilities"`
}

// TrendPoint is one representative day per year, used for charting only.
type TrendPoint struct {
	Year            string  `json:"year"`
	TemperatureF    int     `json:"temperatureF"`
	HumidityPct     int     `json:"humidityPct"`
	PrecipitationMm float64 `json:"precipitationMm"`
	WindSpeedMph    float64 `json:"windSpeedMph"`
}

// ProbabilityQuery asks for probabilities on a single calendar day.
type ProbabilityQuery struct {
	Lat        float64
	Lon        float64
	Date       Date
	Conditions []ConditionID
}

// RangeQuery asks for probabilities on every day of [Start, End].
type RangeQuery struct {
	Lat        float64
	Lon        float64
	Start      Date
	End        Date
	Conditions []ConditionID
}

// TrendQuery asks for the trailing trend series anchored at Date's month and day.
type TrendQuery struct {
	Lat  float64
	Lon  float64
	Date Date
}
