package models

import (
	"time"

	"github.com/weatherodds/weatherodds/internal/climate"
	"github.com/weatherodds/weatherodds/internal/export"
	"github.com/weatherodds/weatherodds/internal/geocoding"
)

// OddsRequest is the body of POST /v1/odds.
type OddsRequest struct {
	Lat        *float64              `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon        *float64              `json:"lon" validate:"required,gte=-180,lte=180"`
	Date       string                `json:"date" validate:"required,datetime=2006-01-02"`
	Conditions []climate.ConditionID `json:"conditions" validate:"required,min=1,dive,condition"`
}

// ToQuery converts a validated request into an engine query.
func (r OddsRequest) ToQuery() (climate.ProbabilityQuery, error) {
	date, err := climate.ParseDate(r.Date)
	if err != nil {
		return climate.ProbabilityQuery{}, err
	}
	return climate.ProbabilityQuery{
		Lat:        deref(r.Lat),
		Lon:        deref(r.Lon),
		Date:       date,
		Conditions: r.Conditions,
	}, nil
}

// OddsResponse is returned by POST /v1/odds.
type OddsResponse struct {
	Probabilities []climate.ProbabilityResult `json:"probabilities"`
}

// RangeRequest is the body of POST /v1/odds:range. Ordering and length of the
// range are checked by the engine.
type RangeRequest struct {
	Lat        *float64              `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon        *float64              `json:"lon" validate:"required,gte=-180,lte=180"`
	StartDate  string                `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate    string                `json:"endDate" validate:"required,datetime=2006-01-02"`
	Conditions []climate.ConditionID `json:"conditions" validate:"required,min=1,dive,condition"`
}

// ToQuery converts a validated request into an engine query.
func (r RangeRequest) ToQuery() (climate.RangeQuery, error) {
	start, err := climate.ParseDate(r.StartDate)
	if err != nil {
		return climate.RangeQuery{}, err
	}
	end, err := climate.ParseDate(r.EndDate)
	if err != nil {
		return climate.RangeQuery{}, err
	}
	return climate.RangeQuery{
		Lat:        deref(r.Lat),
		Lon:        deref(r.Lon),
		Start:      start,
		End:        end,
		Conditions: r.Conditions,
	}, nil
}

// TrendParams holds the query parameters of GET /v1/trends.
type TrendParams struct {
	Lat  *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon  *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Date string   `json:"date" validate:"required,datetime=2006-01-02"`
}

// ToQuery converts validated parameters into an engine query.
func (p TrendParams) ToQuery() (climate.TrendQuery, error) {
	date, err := climate.ParseDate(p.Date)
	if err != nil {
		return climate.TrendQuery{}, err
	}
	return climate.TrendQuery{Lat: deref(p.Lat), Lon: deref(p.Lon), Date: date}, nil
}

// TrendResponse is returned by GET /v1/trends.
type TrendResponse struct {
	Points []climate.TrendPoint `json:"points"`
}

// ConditionInfo describes one entry of the condition catalogue.
type ConditionInfo struct {
	ID    climate.ConditionID `json:"id"`
	Label string              `json:"label"`
}

// ConditionsResponse is returned by GET /v1/conditions.
type ConditionsResponse struct {
	Conditions []ConditionInfo `json:"conditions"`
}

// LocationsResponse is returned by GET /v1/locations.
type LocationsResponse struct {
	Results []geocoding.Location `json:"results"`
}

// ExportRequest is the body of POST /v1/exports. At least one result section
// must be present.
type ExportRequest struct {
	Lat           *float64                    `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon           *float64                    `json:"lon" validate:"required,gte=-180,lte=180"`
	Location      string                      `json:"location" validate:"max=200"`
	Date          *climate.Date               `json:"date"`
	Probabilities []climate.ProbabilityResult `json:"probabilities" validate:"required_without_all=Range Trend"`
	Range         *climate.RangeResult        `json:"range"`
	Trend         []climate.TrendPoint        `json:"trend"`
}

// ToReport builds the export report, stamped with generatedAt.
func (r ExportRequest) ToReport(generatedAt time.Time) export.Report {
	return export.Report{
		Lat:         deref(r.Lat),
		Lon:         deref(r.Lon),
		Location:    r.Location,
		GeneratedAt: generatedAt,
		Date:        r.Date,
		Odds:        r.Probabilities,
		Range:       r.Range,
		Trend:       r.Trend,
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
