package geocoding

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Service fronts a Searcher for the location picker. It never fails: short
// queries and provider errors both yield an empty list.
type Service struct {
	searcher Searcher
	logger   zerolog.Logger
}

// NewService creates a geocoding service.
func NewService(searcher Searcher, logger zerolog.Logger) *Service {
	return &Service{
		searcher: searcher,
		logger:   logger,
	}
}

// Search returns up to the provider's limit of locations matching query.
func (s *Service) Search(ctx context.Context, query string) []Location {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []Location{}
	}

	locations, err := s.searcher.Search(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("provider", s.searcher.Name()).
			Str("query", query).
			Msg("location search failed")
		return []Location{}
	}
	if locations == nil {
		return []Location{}
	}

	return locations
}
