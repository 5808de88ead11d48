package geospatial

import "math"

// Vec3 is an Earth-centred Cartesian position in meters.
type Vec3 struct {
	X, Y, Z float64
}

// ToCartesian places a point given in radians at altitudeM above the sphere.
func ToCartesian(lat, lon, altitudeM float64) Vec3 {
	r := EarthRadiusMeters + altitudeM
	return Vec3{
		X: r * math.Cos(lat) * math.Cos(lon),
		Y: r * math.Cos(lat) * math.Sin(lon),
		Z: r * math.Sin(lat),
	}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// ChordDistance is the straight-line distance in meters between two points,
// each lifted to its own altitude.
func ChordDistance(lat1, lon1, alt1, lat2, lon2, alt2 float64) float64 {
	return ToCartesian(lat2, lon2, alt2).Sub(ToCartesian(lat1, lon1, alt1)).Norm()
}
