package usecases

import (
	"fmt"
	"iter"
	"math"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

// MaxSamples bounds the number of samples one dataset may hold.
const MaxSamples = 500_000

// Aggregate consumes every page and builds the dataset. Frames keep the order
// in which their timesteps first appear. The global value range and extent
// cover every sample of every frame and are final when Aggregate returns.
func Aggregate(pages iter.Seq2[domain.ResultPage, error]) (*domain.Dataset, error) {
	ds := &domain.Dataset{
		MinValue: math.Inf(1),
		MaxValue: math.Inf(-1),
		Extent: domain.Extent{
			MinLon: math.Inf(1), MaxLon: math.Inf(-1),
			MinLat: math.Inf(1), MaxLat: math.Inf(-1),
		},
	}
	index := make(map[string]int)

	for page, err := range pages {
		if err != nil {
			return nil, fmt.Errorf("fetch results: %w", err)
		}
		for _, row := range page.Rows {
			n := len(row.Values)
			if len(row.Latitudes) != n || len(row.Longitudes) != n {
				return nil, fmt.Errorf("%w: timestep %q has %d latitudes, %d longitudes, %d values",
					domain.ErrMalformedRow, row.Timestep, len(row.Latitudes), len(row.Longitudes), n)
			}
			if ds.SampleCount+n > MaxSamples {
				return nil, fmt.Errorf("%w: more than %d samples", domain.ErrDatasetTooLarge, MaxSamples)
			}
			if ds.Description == "" {
				ds.Description = row.Description
			}

			i, ok := index[row.Timestep]
			if !ok {
				i = len(ds.Frames)
				index[row.Timestep] = i
				ds.Frames = append(ds.Frames, domain.Frame{Timestep: row.Timestep})
			}

			frame := &ds.Frames[i]
			for k := 0; k < n; k++ {
				s := domain.Sample{
					Point:    domain.GeoPoint{Lon: row.Longitudes[k], Lat: row.Latitudes[k]},
					Value:    row.Values[k],
					Timestep: row.Timestep,
				}
				frame.Samples = append(frame.Samples, s)
				ds.MinValue = math.Min(ds.MinValue, s.Value)
				ds.MaxValue = math.Max(ds.MaxValue, s.Value)
				ds.Extent.Include(s.Point)
			}
			ds.SampleCount += n
		}
	}

	if ds.SampleCount == 0 {
		return nil, domain.ErrEmptyResultSet
	}
	return ds, nil
}
