package geospatial

import (
	"fmt"
	"math"
	"strings"
)

// Direction is the hemisphere letter attached to a DMS angle.
type Direction string

const (
	North Direction = "N"
	South Direction = "S"
	East  Direction = "E"
	West  Direction = "W"
)

// Axis tells latitude and longitude apart where the math alone cannot.
type Axis string

const (
	AxisLatitude  Axis = "latitude"
	AxisLongitude Axis = "longitude"
)

// ParseDirection accepts a hemisphere letter for the given axis.
// An empty string yields the positive hemisphere (N or E).
func ParseDirection(s string, axis Axis) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if d == "" {
		if axis == AxisLongitude {
			return East, nil
		}
		return North, nil
	}

	switch axis {
	case AxisLatitude:
		if d == North || d == South {
			return d, nil
		}
	case AxisLongitude:
		if d == East || d == West {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid %s direction %q", axis, s)
}

// Negative reports whether the direction flips the sign of the angle.
func (d Direction) Negative() bool {
	return d == South || d == West
}

// DMSToDecimalDegrees converts degrees/minutes/seconds to signed decimal degrees.
// Components are not range-checked: 75 minutes simply adds 1.25 degrees.
func DMSToDecimalDegrees(degrees, minutes, seconds float64, dir Direction) float64 {
	decimal := degrees + minutes/60 + seconds/3600
	if dir.Negative() {
		return -decimal
	}
	return decimal
}

// DegreesToRadians converts decimal degrees to radians.
func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadiansToDegrees converts radians to decimal degrees.
func RadiansToDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// DMSToRadians is DMSToDecimalDegrees followed by DegreesToRadians.
func DMSToRadians(degrees, minutes, seconds float64, dir Direction) float64 {
	return DegreesToRadians(DMSToDecimalDegrees(degrees, minutes, seconds, dir))
}

// DMS is a display form of a decimal angle. Degrees is always non-negative;
// the sign lives in Direction.
type DMS struct {
	Degrees   int       `json:"degrees"`
	Minutes   int       `json:"minutes"`
	Seconds   float64   `json:"seconds"`
	Direction Direction `json:"direction"`
}

// DecimalToDMS splits a decimal angle into truncated degrees and minutes plus
// fractional seconds. Direction is S for negative input and N otherwise; use
// DecimalToDMSAxis to get E/W for longitudes.
func DecimalToDMS(decimal float64) DMS {
	dir := North
	if decimal < 0 {
		dir = South
	}

	abs := math.Abs(decimal)
	deg := math.Trunc(abs)
	minutesDecimal := (abs - deg) * 60
	min := math.Trunc(minutesDecimal)

	return DMS{
		Degrees:   int(deg),
		Minutes:   int(min),
		Seconds:   (minutesDecimal - min) * 60,
		Direction: dir,
	}
}

// DecimalToDMSAxis is DecimalToDMS with the hemisphere letter matched to axis.
func DecimalToDMSAxis(decimal float64, axis Axis) DMS {
	dms := DecimalToDMS(decimal)
	if axis == AxisLongitude {
		if dms.Direction == South {
			dms.Direction = West
		} else {
			dms.Direction = East
		}
	}
	return dms
}

// Decimal converts the display form back to signed decimal degrees.
func (d DMS) Decimal() float64 {
	return DMSToDecimalDegrees(float64(d.Degrees), float64(d.Minutes), d.Seconds, d.Direction)
}

func (d DMS) String() string {
	return fmt.Sprintf("%d° %d' %.2f\" %s", d.Degrees, d.Minutes, d.Seconds, d.Direction)
}
