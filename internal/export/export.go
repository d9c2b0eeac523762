// Package export renders probability and trend results as downloadable CSV
// or JSON documents.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/weatherodds/weatherodds/internal/climate"
)

// Format is an export document format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned by ParseFormat for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat parses a format name. An empty name selects JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Report bundles engine results for one location. Any section may be empty.
type Report struct {
	Lat         float64                     `json:"lat"`
	Lon         float64                     `json:"lon"`
	Location    string                      `json:"location,omitempty"`
	GeneratedAt time.Time                   `json:"generatedAt"`
	Date        *climate.Date               `json:"date,omitempty"`
	Odds        []climate.ProbabilityResult `json:"probabilities,omitempty"`
	Range       *climate.RangeResult        `json:"range,omitempty"`
	Trend       []climate.TrendPoint        `json:"trend,omitempty"`
}

// Filename returns an attachment name for the report in format f.
func (r Report) Filename(f Format) string {
	return fmt.Sprintf("weather-odds-%s.%s", r.GeneratedAt.UTC().Format("20060102T150405Z"), f)
}

// Write renders r to w in format f.
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// WriteJSON renders r as indented JSON with the engine shapes unchanged.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// CSVHeader is the column layout of WriteCSV.
var CSVHeader = []string{
	"record", "date", "year", "condition_id", "condition",
	"probability", "temperature_f", "humidity_pct", "precipitation_mm", "wind_speed_mph",
}

// WriteCSV renders r as one header row followed by one row per result:
// "probability" rows for single-date results, "daily" and "overall" rows for
// a range, and "trend" rows for the trend series.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)

	rows := [][]string{CSVHeader}

	date := ""
	if r.Date != nil {
		date = r.Date.String()
	}
	for _, p := range r.Odds {
		rows = append(rows, probabilityRow("probability", date, p))
	}

	if r.Range != nil {
		for _, day := range r.Range.DailyPredictions {
			for _, p := range day.Probabilities {
				rows = append(rows, probabilityRow("daily", day.Date.String(), p))
			}
		}
		for _, p := range r.Range.OverallProbabilities {
			rows = append(rows, probabilityRow("overall", "", p))
		}
	}

	for _, t := range r.Trend {
		rows = append(rows, []string{
			"trend", "", t.Year, "", "", "",
			strconv.Itoa(t.TemperatureF),
			strconv.Itoa(t.HumidityPct),
			formatFloat(t.PrecipitationMm),
			formatFloat(t.WindSpeedMph),
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func probabilityRow(record, date string, p climate.ProbabilityResult) []string {
	label := ""
	if c, ok := climate.LookupCondition(p.ConditionID); ok {
		label = c.Label
	}
	return []string{
		record, date, "", string(p.ConditionID), label,
		strconv.Itoa(p.Probability), "", "", "", "",
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
