package usecases

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samirrijal/geodist/internal/core/domain"
	"github.com/samirrijal/geodist/internal/pkg/geospatial"
)

// Fields is a flat map of raw request values, keyed the way the form and the
// JSON endpoint name them: lat1_d, lat1_m, lat1_s, lat1_dir, lat1_rad, h1, ...
type Fields map[string]string

// ConvertInput parses point n (1 or 2) out of fields, validates it for the
// given mode and returns it in radians.
//
// DMS fields may also use the older _deg/_min/_sec suffixes and alt<n> for
// the altitude.
//
// DMS latitudes must lie in [-90, 90) and longitudes in [-180, 180) degrees.
// Radian latitudes must lie in [-π/2, π/2] and longitudes in [-π, π].
func ConvertInput(mode domain.InputMode, fields Fields, n int) (domain.GeoPoint, error) {
	var (
		p   domain.GeoPoint
		err error
	)

	switch mode {
	case domain.ModeDMS:
		p, err = convertDMS(fields, n)
	case domain.ModeRadians:
		p, err = convertRadians(fields, n)
	default:
		return domain.GeoPoint{}, &domain.ParseError{Field: "mode", Value: string(mode), Err: errors.New("unsupported input mode")}
	}
	if err != nil {
		return domain.GeoPoint{}, err
	}

	p.AltitudeM, err = fields.altitude(n)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	return p, nil
}

func convertDMS(fields Fields, n int) (domain.GeoPoint, error) {
	lat, err := fields.dmsAngle(fmt.Sprintf("lat%d", n), geospatial.AxisLatitude)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	lon, err := fields.dmsAngle(fmt.Sprintf("lon%d", n), geospatial.AxisLongitude)
	if err != nil {
		return domain.GeoPoint{}, err
	}

	latDeg, lonDeg := lat.Decimal(), lon.Decimal()
	if latDeg < -90 || latDeg >= 90 {
		return domain.GeoPoint{}, &domain.RangeError{
			Axis: geospatial.AxisLatitude, Field: fmt.Sprintf("lat%d", n),
			Value: latDeg, Min: -90, Max: 90, Unit: "degrees",
		}
	}
	if lonDeg < -180 || lonDeg >= 180 {
		return domain.GeoPoint{}, &domain.RangeError{
			Axis: geospatial.AxisLongitude, Field: fmt.Sprintf("lon%d", n),
			Value: lonDeg, Min: -180, Max: 180, Unit: "degrees",
		}
	}

	return domain.GeoPoint{
		LatitudeRad:  lat.Radians(),
		LongitudeRad: lon.Radians(),
	}, nil
}

func convertRadians(fields Fields, n int) (domain.GeoPoint, error) {
	latKey, lonKey := fmt.Sprintf("lat%d_rad", n), fmt.Sprintf("lon%d_rad", n)

	lat, err := fields.number(latKey)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	lon, err := fields.number(lonKey)
	if err != nil {
		return domain.GeoPoint{}, err
	}

	if lat < -math.Pi/2 || lat > math.Pi/2 {
		return domain.GeoPoint{}, &domain.RangeError{
			Axis: geospatial.AxisLatitude, Field: latKey,
			Value: lat, Min: -math.Pi / 2, Max: math.Pi / 2, Unit: "radians", MaxInclusive: true,
		}
	}
	if lon < -math.Pi || lon > math.Pi {
		return domain.GeoPoint{}, &domain.RangeError{
			Axis: geospatial.AxisLongitude, Field: lonKey,
			Value: lon, Min: -math.Pi, Max: math.Pi, Unit: "radians", MaxInclusive: true,
		}
	}

	return domain.GeoPoint{LatitudeRad: lat, LongitudeRad: lon}, nil
}

func (f Fields) dmsAngle(prefix string, axis geospatial.Axis) (domain.DMSAngle, error) {
	var (
		a   domain.DMSAngle
		err error
	)
	if a.Degrees, err = f.number(f.key(prefix+"_d", prefix+"_deg")); err != nil {
		return a, err
	}
	if a.Minutes, err = f.number(f.key(prefix+"_m", prefix+"_min")); err != nil {
		return a, err
	}
	if a.Seconds, err = f.number(f.key(prefix+"_s", prefix+"_sec")); err != nil {
		return a, err
	}

	key := prefix + "_dir"
	raw := f[key]
	if a.Direction, err = geospatial.ParseDirection(raw, axis); err != nil {
		return a, &domain.ParseError{Field: key, Value: raw, Err: err}
	}
	return a, nil
}

// altitude reads h<n>, accepting alt<n> as the form's older spelling.
func (f Fields) altitude(n int) (float64, error) {
	return f.number(f.key(fmt.Sprintf("h%d", n), fmt.Sprintf("alt%d", n)))
}

// key returns name, or alias when only the older spelling was sent.
// Errors keep reporting the current name.
func (f Fields) key(name, alias string) string {
	if strings.TrimSpace(f[name]) == "" && strings.TrimSpace(f[alias]) != "" {
		return alias
	}
	return name
}

func (f Fields) number(key string) (float64, error) {
	raw := strings.TrimSpace(f[key])
	if raw == "" {
		return 0, &domain.ParseError{Field: key, Err: domain.ErrMissing}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &domain.ParseError{Field: key, Value: raw, Err: errors.New("not a number")}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &domain.ParseError{Field: key, Value: raw, Err: errors.New("not a finite number")}
	}
	return v, nil
}
