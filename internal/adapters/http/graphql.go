package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geodist/internal/core/usecases"
	"github.com/samirrijal/geodist/internal/pkg/geospatial"
)

// pointInputFields maps GraphQL input names to the flat field suffixes
// shared with the form and JSON endpoints.
var pointInputFields = map[string]string{
	"latDeg": "lat%d_d",
	"latMin": "lat%d_m",
	"latSec": "lat%d_s",
	"latDir": "lat%d_dir",
	"lonDeg": "lon%d_d",
	"lonMin": "lon%d_m",
	"lonSec": "lon%d_s",
	"lonDir": "lon%d_dir",
	"latRad": "lat%d_rad",
	"lonRad": "lon%d_rad",
	"alt":    "h%d",
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	dmsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DMS",
		Fields: graphql.Fields{
			"degrees":   &graphql.Field{Type: graphql.Int},
			"minutes":   &graphql.Field{Type: graphql.Int},
			"seconds":   &graphql.Field{Type: graphql.Float},
			"direction": &graphql.Field{Type: graphql.String},
			"text": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(geospatial.DMS).String(), nil
				},
			},
		},
	})

	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"latitudeRad":  &graphql.Field{Type: graphql.Float},
			"longitudeRad": &graphql.Field{Type: graphql.Float},
			"altitudeM":    &graphql.Field{Type: graphql.Float},
			"latitudeDeg":  &graphql.Field{Type: graphql.Float},
			"longitudeDeg": &graphql.Field{Type: graphql.Float},
			"latitudeDms":  &graphql.Field{Type: dmsType},
			"longitudeDms": &graphql.Field{Type: dmsType},
		},
	})

	distanceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Distance",
		Fields: graphql.Fields{
			"surfaceDistance":           &graphql.Field{Type: graphql.Float},
			"straightDistance":          &graphql.Field{Type: graphql.Float},
			"formattedSurfaceDistance":  &graphql.Field{Type: graphql.String},
			"formattedStraightDistance": &graphql.Field{Type: graphql.String},
			"mode":                      &graphql.Field{Type: graphql.String},
			"point1":                    &graphql.Field{Type: pointType},
			"point2":                    &graphql.Field{Type: pointType},
		},
	})

	inputFields := graphql.InputObjectConfigFieldMap{}
	for name := range pointInputFields {
		t := graphql.Input(graphql.Float)
		if name == "latDir" || name == "lonDir" {
			t = graphql.String
		}
		inputFields[name] = &graphql.InputObjectFieldConfig{Type: t}
	}
	pointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        "PointInput",
		Description: "DMS fields for mode dms, latRad/lonRad for mode radians; alt in meters",
		Fields:      inputFields,
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"distance": &graphql.Field{
				Type:        distanceType,
				Description: "Surface and straight-line distance between two points",
				Args: graphql.FieldConfigArgument{
					"mode":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: defaultMode},
					"point1": &graphql.ArgumentConfig{Type: graphql.NewNonNull(pointInput)},
					"point2": &graphql.ArgumentConfig{Type: graphql.NewNonNull(pointInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					mode, _ := p.Args["mode"].(string)
					fields := usecases.Fields{}
					for i, key := range []string{"point1", "point2"} {
						in, _ := p.Args[key].(map[string]interface{})
						flattenPointInput(fields, in, i+1)
					}

					calc, err := deps.Distances.Calculate(p.Context, mode, fields)
					if err != nil {
						_, _, msg := classify(err)
						return nil, fmt.Errorf("%s", msg)
					}
					return distanceResult(newDistanceResponse(calc)), nil
				},
			},
			"formatDistance": &graphql.Field{
				Type:        graphql.String,
				Description: "Render meters the way the API does",
				Args: graphql.FieldConfigArgument{
					"meters": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return geospatial.FormatDistance(p.Args["meters"].(float64)), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func flattenPointInput(fields usecases.Fields, in map[string]interface{}, n int) {
	for name, v := range in {
		pattern, ok := pointInputFields[name]
		if !ok || v == nil {
			continue
		}
		key := fmt.Sprintf(pattern, n)
		switch val := v.(type) {
		case float64:
			fields[key] = strconv.FormatFloat(val, 'g', -1, 64)
		case int:
			fields[key] = strconv.Itoa(val)
		case string:
			fields[key] = val
		}
	}
}

func distanceResult(r DistanceResponse) map[string]interface{} {
	point := func(v PointView) map[string]interface{} {
		return map[string]interface{}{
			"latitudeRad":  v.LatitudeRad,
			"longitudeRad": v.LongitudeRad,
			"altitudeM":    v.AltitudeM,
			"latitudeDeg":  v.LatitudeDeg,
			"longitudeDeg": v.LongitudeDeg,
			"latitudeDms":  v.LatitudeDMS,
			"longitudeDms": v.LongitudeDMS,
		}
	}
	return map[string]interface{}{
		"surfaceDistance":           r.SurfaceDistance,
		"straightDistance":          r.StraightDistance,
		"formattedSurfaceDistance":  r.FormattedSurfaceDistance,
		"formattedStraightDistance": r.FormattedStraightDistance,
		"mode":                      r.Mode,
		"point1":                    point(r.Point1),
		"point2":                    point(r.Point2),
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
