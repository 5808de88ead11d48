package http

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geodist/internal/core/domain"
	"github.com/samirrijal/geodist/internal/core/usecases"
)

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Earth Distance Calculator</title>
  <style>
    body{font-family:system-ui,sans-serif;max-width:760px;margin:2rem auto;padding:0 1rem;color:#222}
    fieldset{margin-bottom:1rem}input[type=text]{width:5.5rem}
    .error{color:#b00020;font-weight:600}.result td{padding:.2rem .8rem}
  </style>
</head>
<body>
  <h1>Earth Distance Calculator</h1>
  <form method="post" action="/">
    <p>
      Input format:
      <label><input type="radio" name="mode" value="dms"{{if eq .Mode "dms"}} checked{{end}}> Degrees / minutes / seconds</label>
      <label><input type="radio" name="mode" value="radians"{{if eq .Mode "radians"}} checked{{end}}> Radians</label>
    </p>
    {{range .Points}}
    <fieldset>
      <legend>Point {{.}}</legend>
      {{if eq $.Mode "radians"}}
      Latitude <input type="text" name="lat{{.}}_rad" value="{{index $.Values (printf "lat%d_rad" .)}}"> rad
      Longitude <input type="text" name="lon{{.}}_rad" value="{{index $.Values (printf "lon%d_rad" .)}}"> rad
      {{else}}
      <div>Latitude
        <input type="text" name="lat{{.}}_d" value="{{index $.Values (printf "lat%d_d" .)}}">°
        <input type="text" name="lat{{.}}_m" value="{{index $.Values (printf "lat%d_m" .)}}">′
        <input type="text" name="lat{{.}}_s" value="{{index $.Values (printf "lat%d_s" .)}}">″
        <select name="lat{{.}}_dir">
          <option{{if ne (index $.Values (printf "lat%d_dir" .)) "S"}} selected{{end}}>N</option>
          <option{{if eq (index $.Values (printf "lat%d_dir" .)) "S"}} selected{{end}}>S</option>
        </select>
      </div>
      <div>Longitude
        <input type="text" name="lon{{.}}_d" value="{{index $.Values (printf "lon%d_d" .)}}">°
        <input type="text" name="lon{{.}}_m" value="{{index $.Values (printf "lon%d_m" .)}}">′
        <input type="text" name="lon{{.}}_s" value="{{index $.Values (printf "lon%d_s" .)}}">″
        <select name="lon{{.}}_dir">
          <option{{if ne (index $.Values (printf "lon%d_dir" .)) "W"}} selected{{end}}>E</option>
          <option{{if eq (index $.Values (printf "lon%d_dir" .)) "W"}} selected{{end}}>W</option>
        </select>
      </div>
      {{end}}
      <div>Altitude <input type="text" name="h{{.}}" value="{{index $.Values (printf "h%d" .)}}"> m</div>
    </fieldset>
    {{end}}
    <button type="submit">Calculate</button>
  </form>

  {{with .Error}}<p class="error">{{.}}</p>{{end}}
  {{with .Result}}
  <table class="result">
    <tr><td>Point 1</td><td>{{.Point1.LatitudeDMS}}, {{.Point1.LongitudeDMS}}, {{printf "%.2f" .Point1.AltitudeM}} m</td></tr>
    <tr><td>Point 2</td><td>{{.Point2.LatitudeDMS}}, {{.Point2.LongitudeDMS}}, {{printf "%.2f" .Point2.AltitudeM}} m</td></tr>
    <tr><td>Surface distance</td><td id="surface">{{.FormattedSurfaceDistance}}</td></tr>
    <tr><td>Straight-line distance</td><td id="straight">{{.FormattedStraightDistance}}</td></tr>
  </table>
  {{end}}
</body>
</html>`

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

type formPage struct {
	Mode   string
	Points []int
	Values map[string]string
	Result *DistanceResponse
	Error  string
}

// FormPageHandler renders the empty calculator form.
func FormPageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return renderForm(c, fiber.StatusOK, formPage{Mode: pageMode(c.Query("mode")), Values: map[string]string{}})
	}
}

// FormSubmitHandler computes distances from a submitted form and renders
// the result, or the error, under the form.
func FormSubmitHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fields := usecases.Fields{}
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			fields[string(k)] = string(v)
		})

		mode := fields["mode"]
		if mode == "" {
			mode = fields["input_format"]
		}
		if mode == "" {
			mode = defaultMode
		}

		page := formPage{Mode: pageMode(mode), Values: fields}
		calc, err := deps.Distances.Calculate(c.UserContext(), mode, fields)
		if err != nil {
			status, _, msg := classify(err)
			page.Error = msg
			return renderForm(c, status, page)
		}

		res := newDistanceResponse(calc)
		page.Result = &res
		return renderForm(c, fiber.StatusOK, page)
	}
}

// pageMode picks which inputs to draw, matching the mode the calculator
// itself resolves (case-insensitive); anything unrecognised draws DMS.
func pageMode(raw string) string {
	if m, err := domain.ParseInputMode(raw); err == nil {
		return string(m)
	}
	return defaultMode
}

func renderForm(c *fiber.Ctx, status int, page formPage) error {
	page.Points = []int{1, 2}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, page); err != nil {
		return errInternal(c, "render form: "+err.Error())
	}
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Status(status).Send(buf.Bytes())
}
