package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricCalculations     = "business.distance_calculations"
	MetricValidationErrors = "business.validation_errors"
)

// Span attribute keys shared by the calculator and its adapters.
const (
	AttrInputMode    = "geodist.mode"
	AttrCacheHit     = "geodist.cache_hit"
	AttrSurfaceM     = "geodist.surface_m"
	AttrStraightM    = "geodist.straight_m"
	AttrErrorKind    = "geodist.error_kind"
	TracerName       = "github.com/samirrijal/geodist"
	SpanCalculate    = "DistanceService.Calculate"
	SpanPublishEvent = "nats.PublishDistanceComputed"
)
