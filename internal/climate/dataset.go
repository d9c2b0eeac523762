package climate

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Dataset is the pooled sample set for one calendar day.
type Dataset struct {
	Samples            []Sample
	ClimateNormalCount int
	RecentArchiveCount int
}

// buildDataset fetches both providers concurrently and pools the samples that
// fall on day's month and day. Sources are neither deduplicated nor weighted.
// A failing source contributes nothing.
func (s *Service) buildDataset(ctx context.Context, lat, lon float64, day Date) Dataset {
	currentYear := s.clock.Now().Year()

	var normals, recent []Sample

	var g errgroup.Group
	g.Go(func() error {
		records, err := s.climateNormal.FetchSamples(ctx, lat, lon, s.normalStartYear, s.normalEndYear)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("provider", s.climateNormal.Name()).
				Str("date", day.String()).
				Msg("climate-normal fetch failed")
			return nil
		}
		normals = filterMonthDay(records, day, ProvenanceClimateNormal)
		return nil
	})
	g.Go(func() error {
		start := day.InYear(currentYear - s.recentYears)
		end := day.InYear(currentYear - 1)
		records, err := s.recentArchive.FetchDailySamples(ctx, lat, lon, start.Time(), end.Time())
		if err != nil {
			s.logger.Warn().Err(err).
				Str("provider", s.recentArchive.Name()).
				Str("date", day.String()).
				Msg("recent-archive fetch failed")
			return nil
		}
		recent = filterMonthDay(records, day, ProvenanceRecentArchive)
		return nil
	})
	_ = g.Wait() // both goroutines swallow their errors

	samples := make([]Sample, 0, len(recent)+len(normals))
	samples = append(samples, recent...)
	samples = append(samples, normals...)

	s.logger.Debug().
		Str("date", day.String()).
		Int("samples", len(samples)).
		Int("climate_normal", len(normals)).
		Int("recent_archive", len(recent)).
		Msg("combined dataset")

	return Dataset{
		Samples:            samples,
		ClimateNormalCount: len(normals),
		RecentArchiveCount: len(recent),
	}
}

// filterMonthDay normalizes the records that fall on day's month and day.
func filterMonthDay(records []RawRecord, day Date, provenance Provenance) []Sample {
	samples := make([]Sample, 0, len(records)/365+1)
	for _, r := range records {
		if day.SameMonthDay(r.Date) {
			samples = append(samples, Normalize(r, provenance))
		}
	}
	return samples
}
