package geospatial

import "math"

// EarthRadiusMeters is the mean Earth radius used for every calculation.
const EarthRadiusMeters = 6371000.0

// Haversine calculates the great-circle distance in meters between two points
// given in radians. Altitude plays no part.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return EarthRadiusMeters * CentralAngle(lat1, lon1, lat2, lon2)
}

// CentralAngle returns the angle in radians subtended at the Earth's centre.
func CentralAngle(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push a just outside [0,1] near antipodes.
	a = math.Max(0, math.Min(1, a))

	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
