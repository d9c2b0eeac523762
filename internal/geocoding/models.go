// Package geocoding resolves free-text place names to coordinates for the
// location picker.
package geocoding

import (
	"context"
	"errors"
)

// MinQueryLength is the shortest query that reaches a provider.
const MinQueryLength = 2

// ErrLookupFailed is returned by a Searcher when the provider cannot be queried.
var ErrLookupFailed = errors.New("geocoding lookup failed")

// Location is a named point.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
}

// Searcher looks up places by name.
type Searcher interface {
	// Search returns matching locations, best match first. A query with no
	// matches yields an empty slice and a nil error.
	Search(ctx context.Context, query string) ([]Location, error)

	// Name returns the provider name for logging.
	Name() string
}
