package http

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geodist/internal/core/domain"
	"github.com/samirrijal/geodist/internal/core/usecases"
	"github.com/samirrijal/geodist/internal/pkg/geospatial"
)

// defaultMode applies when a request omits mode.
const defaultMode = string(domain.ModeDMS)

// PointView is a normalised point echoed back to the caller.
type PointView struct {
	LatitudeRad  float64        `json:"latitude_rad"`
	LongitudeRad float64        `json:"longitude_rad"`
	AltitudeM    float64        `json:"altitude_m"`
	LatitudeDeg  float64        `json:"latitude_deg"`
	LongitudeDeg float64        `json:"longitude_deg"`
	LatitudeDMS  geospatial.DMS `json:"latitude_dms"`
	LongitudeDMS geospatial.DMS `json:"longitude_dms"`
}

// DistanceResponse is the body of a successful distance request. Distance is
// the straight-line value, the one that accounts for altitude.
type DistanceResponse struct {
	Distance                  float64   `json:"distance"`
	FormattedDistance         string    `json:"formatted_distance"`
	SurfaceDistance           float64   `json:"surface_distance"`
	FormattedSurfaceDistance  string    `json:"formatted_surface_distance"`
	StraightDistance          float64   `json:"straight_distance"`
	FormattedStraightDistance string    `json:"formatted_straight_distance"`
	Mode                      string    `json:"mode"`
	Point1                    PointView `json:"point1"`
	Point2                    PointView `json:"point2"`
}

func newPointView(p domain.GeoPoint) PointView {
	lat, lon := p.LatitudeDegrees(), p.LongitudeDegrees()
	return PointView{
		LatitudeRad:  p.LatitudeRad,
		LongitudeRad: p.LongitudeRad,
		AltitudeM:    p.AltitudeM,
		LatitudeDeg:  lat,
		LongitudeDeg: lon,
		LatitudeDMS:  geospatial.DecimalToDMSAxis(lat, geospatial.AxisLatitude),
		LongitudeDMS: geospatial.DecimalToDMSAxis(lon, geospatial.AxisLongitude),
	}
}

func newDistanceResponse(calc *domain.Calculation) DistanceResponse {
	d := calc.Distances
	return DistanceResponse{
		Distance:                  d.StraightMeters,
		FormattedDistance:         geospatial.FormatDistance(d.StraightMeters),
		SurfaceDistance:           d.SurfaceMeters,
		FormattedSurfaceDistance:  geospatial.FormatDistance(d.SurfaceMeters),
		StraightDistance:          d.StraightMeters,
		FormattedStraightDistance: geospatial.FormatDistance(d.StraightMeters),
		Mode:                      string(calc.Mode),
		Point1:                    newPointView(calc.Point1),
		Point2:                    newPointView(calc.Point2),
	}
}

// DistanceHandler computes distances from a JSON body.
func DistanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode, fields, err := parseJSONFields(c.Body())
		if err != nil {
			return errFromCalculation(c, err)
		}

		calc, err := deps.Distances.Calculate(c.UserContext(), mode, fields)
		if err != nil {
			return errFromCalculation(c, err)
		}

		c.Set("Cache-Control", "no-store")
		return c.JSON(newDistanceResponse(calc))
	}
}

// DistanceQueryHandler computes distances from query parameters.
func DistanceQueryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fields := usecases.Fields(c.Queries())
		mode := fields["mode"]
		if mode == "" {
			mode = defaultMode
		}

		calc, err := deps.Distances.Calculate(c.UserContext(), mode, fields)
		if err != nil {
			return errFromCalculation(c, err)
		}

		// Same inputs always give the same answer.
		c.Set("Cache-Control", "public, max-age=86400")
		return c.JSON(newDistanceResponse(calc))
	}
}

// parseJSONFields decodes a JSON body into flat fields and picks the mode.
func parseJSONFields(body []byte) (string, usecases.Fields, error) {
	var fields usecases.Fields
	if err := json.Unmarshal(body, &fields); err != nil {
		var pe *domain.ParseError
		if errors.As(err, &pe) {
			return "", nil, err
		}
		return "", nil, &domain.ParseError{Field: "body", Value: truncate(body, 64), Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	mode := fields["mode"]
	if mode == "" {
		mode = defaultMode
	}
	return mode, fields, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
