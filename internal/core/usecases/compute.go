package usecases

import (
	"fmt"
	"math"

	"github.com/samirrijal/geodist/internal/core/domain"
	"github.com/samirrijal/geodist/internal/pkg/geospatial"
)

// ComputeDistances returns the great-circle surface distance (altitude
// ignored) and the straight-line chord distance (altitude included) between
// two points. It is pure and safe for concurrent use.
func ComputeDistances(p1, p2 domain.GeoPoint) (domain.Distances, error) {
	d := domain.Distances{
		SurfaceMeters: geospatial.Haversine(p1.LatitudeRad, p1.LongitudeRad, p2.LatitudeRad, p2.LongitudeRad),
		StraightMeters: geospatial.ChordDistance(
			p1.LatitudeRad, p1.LongitudeRad, p1.AltitudeM,
			p2.LatitudeRad, p2.LongitudeRad, p2.AltitudeM,
		),
	}

	if !finite(d.SurfaceMeters) {
		return domain.Distances{}, &domain.ComputeError{Err: fmt.Errorf("surface distance is %v", d.SurfaceMeters)}
	}
	if !finite(d.StraightMeters) {
		return domain.Distances{}, &domain.ComputeError{Err: fmt.Errorf("straight distance is %v", d.StraightMeters)}
	}
	return d, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
