package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/geodist/internal/adapters/http"
	"github.com/samirrijal/geodist/internal/core/domain"
	"github.com/samirrijal/geodist/internal/core/usecases"
)

// ---- Mocks ----

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

type mockBroker struct {
	connected bool
}

func (m *mockBroker) IsConnected() bool { return m.connected }

type mockRelay struct {
	subscribeFn func(subject string, fn func([]byte)) (func() error, error)
}

func (m *mockRelay) Subscribe(subject string, fn func([]byte)) (func() error, error) {
	if m.subscribeFn != nil {
		return m.subscribeFn(subject, fn)
	}
	return func() error { return nil }, nil
}

func (m *mockRelay) IsConnected() bool { return true }

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	d := &handler.Dependencies{
		Distances: usecases.NewDistanceService(nil, nil, 0),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// ---- JSON endpoint ----

func TestDistance_RadiansSuccess(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/v1/distance", `{
		"mode": "radians",
		"lat1_rad": 0, "lon1_rad": 0, "h1": 0,
		"lat2_rad": 0, "lon2_rad": 1.5707963267948966, "h2": 0
	}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var res handler.DistanceResponse
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !near(res.SurfaceDistance, math.Pi/2*domain.EarthRadiusMeters, 1e-6) {
		t.Errorf("unexpected surface distance %f", res.SurfaceDistance)
	}
	if !near(res.Distance, domain.EarthRadiusMeters*math.Sqrt2, 1e-6) {
		t.Errorf("expected distance to be the chord, got %f", res.Distance)
	}
	if res.FormattedSurfaceDistance != "10,007,543.40 meters" {
		t.Errorf("unexpected formatted surface distance %q", res.FormattedSurfaceDistance)
	}
	if res.FormattedDistance != res.FormattedStraightDistance {
		t.Errorf("formatted distance %q should match straight %q", res.FormattedDistance, res.FormattedStraightDistance)
	}
	if res.Point2.LongitudeDMS.Degrees != 90 || res.Point2.LongitudeDMS.Direction != "E" {
		t.Errorf("unexpected point2 longitude %+v", res.Point2.LongitudeDMS)
	}
}

func TestDistance_DMSWithStringNumbers(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/v1/distance", `{
		"mode": "dms",
		"lat1_d": "90", "lat1_m": "0", "lat1_s": "0", "lat1_dir": "S",
		"lon1_d": "0", "lon1_m": "0", "lon1_s": "0", "lon1_dir": "E", "h1": "0",
		"lat2_d": 89, "lat2_m": 59, "lat2_s": 59.99, "lat2_dir": "N",
		"lon2_d": 0, "lon2_m": 0, "lon2_s": 0, "lon2_dir": "W", "h2": 0
	}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var res handler.DistanceResponse
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !near(res.SurfaceDistance, math.Pi*domain.EarthRadiusMeters, 1) {
		t.Errorf("expected roughly half a circumference, got %f", res.SurfaceDistance)
	}
	if res.Point1.LatitudeDMS.Direction != "S" {
		t.Errorf("expected point1 in the south, got %+v", res.Point1.LatitudeDMS)
	}
}

func TestDistance_DefaultsToDMS(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/v1/distance", `{
		"lat1_d": 0, "lat1_m": 0, "lat1_s": 0, "lon1_d": 0, "lon1_m": 0, "lon1_s": 0, "h1": 0,
		"lat2_d": 0, "lat2_m": 0, "lat2_s": 0, "lon2_d": 0, "lon2_m": 0, "lon2_s": 0, "h2": 100
	}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var res handler.DistanceResponse
	_ = json.Unmarshal(body, &res)
	if res.Mode != "dms" {
		t.Errorf("expected mode dms, got %s", res.Mode)
	}
	if !near(res.Distance, 100, 1e-6) || res.SurfaceDistance != 0 {
		t.Errorf("expected only the altitude to separate the points, got %+v", res)
	}
}

func TestDistance_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		code    string
		message string
	}{
		{
			name:    "missing altitude",
			body:    `{"mode":"radians","lat1_rad":0,"lon1_rad":0,"lat2_rad":0,"lon2_rad":0,"h2":0}`,
			code:    "parse_error",
			message: "h1 is required",
		},
		{
			name:    "non numeric",
			body:    `{"mode":"radians","lat1_rad":"north","lon1_rad":0,"h1":0,"lat2_rad":0,"lon2_rad":0,"h2":0}`,
			code:    "parse_error",
			message: "lat1_rad",
		},
		{
			name:    "boolean is not a number",
			body:    `{"mode":"radians","lat1_rad":true,"lon1_rad":0,"h1":0,"lat2_rad":0,"lon2_rad":0,"h2":0}`,
			code:    "parse_error",
			message: "lat1_rad",
		},
		{
			name:    "invalid JSON",
			body:    `{"mode":`,
			code:    "parse_error",
			message: "invalid JSON",
		},
		{
			name:    "unknown mode",
			body:    `{"mode":"grads"}`,
			code:    "parse_error",
			message: "mode",
		},
		{
			name: "dms latitude 90 is out of range",
			body: `{"mode":"dms","lat1_d":90,"lat1_m":0,"lat1_s":0,"lat1_dir":"N","lon1_d":0,"lon1_m":0,"lon1_s":0,"h1":0,
				"lat2_d":0,"lat2_m":0,"lat2_s":0,"lon2_d":0,"lon2_m":0,"lon2_s":0,"h2":0}`,
			code:    "range_error",
			message: "latitude must be between -90 and 90 degrees",
		},
		{
			name:    "radian longitude out of range",
			body:    `{"mode":"radians","lat1_rad":0,"lon1_rad":0,"h1":0,"lat2_rad":0,"lon2_rad":3.2,"h2":0}`,
			code:    "range_error",
			message: "longitude must be between",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			app := setupApp(makeDeps())
			status, body := postJSON(t, app, "/v1/distance", test.body)
			if status != 400 {
				t.Fatalf("expected 400, got %d: %s", status, body)
			}

			var apiErr handler.APIError
			if err := json.Unmarshal(body, &apiErr); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if apiErr.Code != test.code {
				t.Errorf("expected code %s, got %s", test.code, apiErr.Code)
			}
			if !strings.Contains(apiErr.Message, test.message) {
				t.Errorf("expected error containing %q, got %q", test.message, apiErr.Message)
			}
			if apiErr.RequestID == "" {
				t.Error("expected request id")
			}
		})
	}
}

func TestDistance_RadianPoleBoundaryAccepted(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/v1/distance", `{"mode":"radians",
		"lat1_rad":1.5707963267948966,"lon1_rad":0,"h1":0,
		"lat2_rad":-1.5707963267948966,"lon2_rad":0,"h2":0}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var res handler.DistanceResponse
	_ = json.Unmarshal(body, &res)
	if !near(res.StraightDistance, 12742000, 1e-6) {
		t.Errorf("expected 12742000, got %f", res.StraightDistance)
	}
}

// ---- GET endpoint ----

func TestDistanceQuery_ETag(t *testing.T) {
	app := setupApp(makeDeps())

	q := url.Values{
		"mode":     {"radians"},
		"lat1_rad": {"0.5"}, "lon1_rad": {"0.1"}, "h1": {"10"},
		"lat2_rad": {"0.6"}, "lon2_rad": {"0.2"}, "h2": {"20"},
	}
	req := httptest.NewRequest("GET", "/v1/distance?"+q.Encode(), nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=86400" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req = httptest.NewRequest("GET", "/v1/distance?"+q.Encode(), nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestDistanceQuery_RangeError(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/distance?mode=radians&lat1_rad=2&lon1_rad=0&h1=0&lat2_rad=0&lon2_rad=0&h2=0", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("error responses must not be cacheable, got Cache-Control %q", cc)
	}
	if resp.Header.Get("ETag") != "" {
		t.Error("expected no ETag on an error response")
	}
}

// ---- HTML form ----

func TestFormPage(t *testing.T) {
	app := setupApp(makeDeps())

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := string(readBody(t, resp.Body))
	for _, want := range []string{`name="lat1_d"`, `name="lon2_dir"`, `name="h2"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in form", want)
		}
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/?mode=radians", nil), -1)
	body = string(readBody(t, resp.Body))
	if !strings.Contains(body, `name="lat1_rad"`) {
		t.Error("expected radian inputs in radians mode")
	}
}

func TestFormSubmit(t *testing.T) {
	app := setupApp(makeDeps())

	form := url.Values{
		"mode":   {"dms"},
		"lat1_d": {"0"}, "lat1_m": {"0"}, "lat1_s": {"0"}, "lat1_dir": {"N"},
		"lon1_d": {"0"}, "lon1_m": {"0"}, "lon1_s": {"0"}, "lon1_dir": {"E"}, "h1": {"0"},
		"lat2_d": {"0"}, "lat2_m": {"0"}, "lat2_s": {"0"}, "lat2_dir": {"N"},
		"lon2_d": {"90"}, "lon2_m": {"0"}, "lon2_s": {"0"}, "lon2_dir": {"E"}, "h2": {"0"},
	}
	req := httptest.NewRequest("POST", "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, "10,007,543.40 meters") {
		t.Errorf("expected surface distance in page, got %s", body)
	}
	if !strings.Contains(body, "9,009,954.61 meters") {
		t.Errorf("expected straight distance in page, got %s", body)
	}
}

func TestFormSubmit_ModeIsCaseInsensitive(t *testing.T) {
	app := setupApp(makeDeps())

	form := url.Values{
		"mode":     {"RADIANS"},
		"lat1_rad": {"0"}, "lon1_rad": {"0"}, "h1": {"0"},
		"lat2_rad": {"0"}, "lon2_rad": {"1.5707963267948966"}, "h2": {"0"},
	}
	req := httptest.NewRequest("POST", "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, `name="lon2_rad" value="1.5707963267948966"`) {
		t.Error("expected radian inputs to be redrawn with the submitted values")
	}
	if strings.Contains(body, `name="lat1_d"`) {
		t.Error("expected no DMS inputs for a radians submission")
	}
	if !strings.Contains(body, "10,007,543.40 meters") {
		t.Error("expected result in page")
	}
}

func TestFormSubmit_Error(t *testing.T) {
	app := setupApp(makeDeps())

	form := url.Values{"input_format": {"radians"}, "lat1_rad": {"abc"}}
	req := httptest.NewRequest("POST", "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, `class="error"`) || !strings.Contains(body, "lat1_rad") {
		t.Errorf("expected rendered error, got %s", body)
	}
	if !strings.Contains(body, `value="abc"`) {
		t.Error("expected submitted value to be echoed back")
	}
}

// ---- GraphQL ----

func TestGraphQL_Distance(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/graphql", `{"query":"{ distance(mode: \"radians\", point1: {latRad: 1.5707963267948966, lonRad: 0, alt: 0}, point2: {latRad: -1.5707963267948966, lonRad: 0, alt: 0}) { surfaceDistance straightDistance formattedStraightDistance point1 { latitudeDms { degrees direction text } } } }"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var result struct {
		Data struct {
			Distance struct {
				SurfaceDistance           float64 `json:"surfaceDistance"`
				StraightDistance          float64 `json:"straightDistance"`
				FormattedStraightDistance string  `json:"formattedStraightDistance"`
				Point1                    struct {
					LatitudeDms struct {
						Degrees   int    `json:"degrees"`
						Direction string `json:"direction"`
						Text      string `json:"text"`
					} `json:"latitudeDms"`
				} `json:"point1"`
			} `json:"distance"`
		} `json:"data"`
		Errors []map[string]interface{} `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	d := result.Data.Distance
	if !near(d.StraightDistance, 12742000, 1e-6) {
		t.Errorf("expected 12742000, got %f", d.StraightDistance)
	}
	if d.FormattedStraightDistance != "12,742,000.00 meters" {
		t.Errorf("unexpected formatted distance %q", d.FormattedStraightDistance)
	}
	if d.Point1.LatitudeDms.Degrees != 90 || d.Point1.LatitudeDms.Direction != "N" {
		t.Errorf("unexpected latitude dms %+v", d.Point1.LatitudeDms)
	}
}

func TestGraphQL_RangeError(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/graphql", `{"query":"{ distance(point1: {latDeg: 95, latMin: 0, latSec: 0, lonDeg: 0, lonMin: 0, lonSec: 0, alt: 0}, point2: {latDeg: 0, latMin: 0, latSec: 0, lonDeg: 0, lonMin: 0, lonSec: 0, alt: 0}) { surfaceDistance } }"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(string(body), "latitude must be between -90 and 90 degrees") {
		t.Errorf("expected range error in body, got %s", body)
	}
}

func TestGraphQL_FormatDistance(t *testing.T) {
	app := setupApp(makeDeps())

	_, body := postJSON(t, app, "/graphql", `{"query":"{ formatDistance(meters: 1234.56) }"}`)
	if !strings.Contains(string(body), `"1,234.56 meters"`) {
		t.Errorf("unexpected body %s", body)
	}
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(func(d *handler.Dependencies) { d.Version = "1.2.3" }))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	var res map[string]string
	_ = json.Unmarshal(readBody(t, resp.Body), &res)
	if res["status"] != "healthy" || res["version"] != "1.2.3" {
		t.Errorf("unexpected health body %v", res)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		deps   *handler.Dependencies
		status int
	}{
		{name: "no backing services", deps: makeDeps(), status: 200},
		{
			name: "all ok",
			deps: makeDeps(func(d *handler.Dependencies) {
				d.Cache = &mockPinger{}
				d.Broker = &mockBroker{connected: true}
			}),
			status: 200,
		},
		{
			name:   "cache down",
			deps:   makeDeps(func(d *handler.Dependencies) { d.Cache = &mockPinger{err: errors.New("dial tcp: refused")} }),
			status: 503,
		},
		{
			name:   "nats disconnected",
			deps:   makeDeps(func(d *handler.Dependencies) { d.Broker = &mockBroker{} }),
			status: 503,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			app := setupApp(test.deps)
			resp, err := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != test.status {
				t.Errorf("expected %d, got %d", test.status, resp.StatusCode)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	app := setupApp(makeDeps())

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected nosniff header")
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}
}

// ---- WebSocket ----

func TestWebSocketRoute(t *testing.T) {
	t.Run("requires upgrade", func(t *testing.T) {
		app := setupApp(makeDeps(func(d *handler.Dependencies) { d.Relay = &mockRelay{} }))
		resp, err := app.Test(httptest.NewRequest("GET", "/ws", nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusUpgradeRequired {
			t.Errorf("expected 426, got %d", resp.StatusCode)
		}
	})

	t.Run("absent without relay", func(t *testing.T) {
		app := setupApp(makeDeps())
		resp, err := app.Test(httptest.NewRequest("GET", "/ws", nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})
}
