package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/samirrijal/geodist/internal/pkg/geospatial"
)

// EarthRadiusMeters is the mean Earth radius every distance is computed on.
const EarthRadiusMeters = geospatial.EarthRadiusMeters

// InputMode selects how coordinates arrive from the caller.
type InputMode string

const (
	ModeDMS     InputMode = "dms"
	ModeRadians InputMode = "radians"
)

// ParseInputMode normalises a raw mode string.
func ParseInputMode(s string) (InputMode, error) {
	switch m := InputMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDMS, ModeRadians:
		return m, nil
	default:
		return "", &ParseError{Field: "mode", Value: s, Err: fmt.Errorf("must be %q or %q", ModeDMS, ModeRadians)}
	}
}

// GeoPoint is a point on or above the sphere. Latitude is within [-π/2, π/2]
// and longitude within [-π, π]; altitude is added to the Earth radius.
type GeoPoint struct {
	LatitudeRad  float64 `json:"latitude_rad"`
	LongitudeRad float64 `json:"longitude_rad"`
	AltitudeM    float64 `json:"altitude_m"`
}

// LatitudeDegrees returns the latitude in decimal degrees.
func (p GeoPoint) LatitudeDegrees() float64 {
	return geospatial.RadiansToDegrees(p.LatitudeRad)
}

// LongitudeDegrees returns the longitude in decimal degrees.
func (p GeoPoint) LongitudeDegrees() float64 {
	return geospatial.RadiansToDegrees(p.LongitudeRad)
}

// DMSAngle is one coordinate in degrees/minutes/seconds notation.
type DMSAngle struct {
	Degrees   float64              `json:"degrees"`
	Minutes   float64              `json:"minutes"`
	Seconds   float64              `json:"seconds"`
	Direction geospatial.Direction `json:"direction"`
}

// Decimal returns the signed decimal degree value (negative for S and W).
func (a DMSAngle) Decimal() float64 {
	return geospatial.DMSToDecimalDegrees(a.Degrees, a.Minutes, a.Seconds, a.Direction)
}

// Radians returns the angle in radians.
func (a DMSAngle) Radians() float64 {
	return geospatial.DegreesToRadians(a.Decimal())
}

// Distances holds both metrics between two points, in meters.
type Distances struct {
	SurfaceMeters  float64 `json:"surface_distance"`
	StraightMeters float64 `json:"straight_distance"`
}

// Calculation is one completed request: the normalised inputs and the result.
type Calculation struct {
	Mode      InputMode `json:"mode"`
	Point1    GeoPoint  `json:"point1"`
	Point2    GeoPoint  `json:"point2"`
	Distances Distances `json:"distances"`
	Cached    bool      `json:"cached"`
}

// DistanceEvent is published after every successful calculation.
type DistanceEvent struct {
	ID         string    `json:"id"`
	Mode       InputMode `json:"mode"`
	Point1     GeoPoint  `json:"point1"`
	Point2     GeoPoint  `json:"point2"`
	Distances  Distances `json:"distances"`
	ComputedAt time.Time `json:"computed_at"`
}
