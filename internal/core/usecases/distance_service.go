package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/geodist/internal/core/domain"
	"github.com/samirrijal/geodist/internal/core/ports"
	"github.com/samirrijal/geodist/internal/pkg/logging"
	"github.com/samirrijal/geodist/internal/pkg/metrics"
	"github.com/samirrijal/geodist/internal/pkg/telemetry"
)

// DefaultCacheTTL is used when NewDistanceService gets a non-positive TTL.
const DefaultCacheTTL = 3600

// DistanceService validates raw coordinates, computes distances and fans the
// result out to the cache and the event stream. Both adapters are optional.
type DistanceService struct {
	cache    ports.CacheService
	events   ports.EventPublisher
	cacheTTL int
	now      func() time.Time
}

// NewDistanceService creates a new DistanceService. cache and events may be nil.
func NewDistanceService(cache ports.CacheService, events ports.EventPublisher, cacheTTLSeconds int) *DistanceService {
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = DefaultCacheTTL
	}
	return &DistanceService{cache: cache, events: events, cacheTTL: cacheTTLSeconds, now: time.Now}
}

// Calculate parses both points from fields and returns the distances between them.
func (s *DistanceService) Calculate(ctx context.Context, rawMode string, fields Fields) (*domain.Calculation, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanCalculate)
	defer span.End()

	calc, err := s.calculate(ctx, rawMode, fields)
	if err != nil {
		kind := errorKind(err)
		metrics.CalculationFailures.WithLabelValues(kind).Inc()
		span.SetAttributes(attribute.String(telemetry.AttrErrorKind, kind))
		span.SetStatus(codes.Error, err.Error())
		logging.FromContext(ctx).Info("distance calculation rejected", "kind", kind, "error", err)
		return nil, err
	}

	metrics.CalculationsTotal.WithLabelValues(string(calc.Mode)).Inc()
	span.SetAttributes(
		attribute.String(telemetry.AttrInputMode, string(calc.Mode)),
		attribute.Bool(telemetry.AttrCacheHit, calc.Cached),
		attribute.Float64(telemetry.AttrSurfaceM, calc.Distances.SurfaceMeters),
		attribute.Float64(telemetry.AttrStraightM, calc.Distances.StraightMeters),
	)
	return calc, nil
}

func (s *DistanceService) calculate(ctx context.Context, rawMode string, fields Fields) (*domain.Calculation, error) {
	mode, err := domain.ParseInputMode(rawMode)
	if err != nil {
		return nil, err
	}

	p1, err := ConvertInput(mode, fields, 1)
	if err != nil {
		return nil, fmt.Errorf("point 1: %w", err)
	}
	p2, err := ConvertInput(mode, fields, 2)
	if err != nil {
		return nil, fmt.Errorf("point 2: %w", err)
	}

	calc := &domain.Calculation{Mode: mode, Point1: p1, Point2: p2}

	// Try cache
	cacheKey := distanceCacheKey(p1, p2)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var d domain.Distances
			if err := json.Unmarshal(data, &d); err == nil {
				metrics.CacheHits.WithLabelValues("distance").Inc()
				calc.Distances = d
				calc.Cached = true
				return calc, nil
			}
			// Unreadable entry: evict it so the fresh result replaces it.
			if err := s.cache.Delete(ctx, cacheKey); err != nil {
				logging.FromContext(ctx).Warn("evict cached distance", "error", err)
			}
		}
		metrics.CacheMisses.WithLabelValues("distance").Inc()
	}

	start := time.Now()
	d, err := ComputeDistances(p1, p2)
	metrics.ComputeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	calc.Distances = d

	if s.cache != nil {
		if data, err := json.Marshal(d); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL); err != nil {
				logging.FromContext(ctx).Warn("cache distance", "error", err)
			}
		}
	}

	s.publish(ctx, calc)

	logging.FromContext(ctx).Debug("distance calculated",
		"mode", mode,
		"surface_m", d.SurfaceMeters,
		"straight_m", d.StraightMeters,
	)
	return calc, nil
}

// publish is best-effort: a broker outage never fails a calculation.
func (s *DistanceService) publish(ctx context.Context, calc *domain.Calculation) {
	if s.events == nil {
		return
	}

	event := &domain.DistanceEvent{
		ID:         uuid.NewString(),
		Mode:       calc.Mode,
		Point1:     calc.Point1,
		Point2:     calc.Point2,
		Distances:  calc.Distances,
		ComputedAt: s.now().UTC(),
	}
	if err := s.events.PublishDistanceComputed(ctx, event); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		logging.FromContext(ctx).Warn("publish distance event", "event_id", event.ID, "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}

// distanceCacheKey keys on the exact float bits so DMS and radian requests
// for the same point share an entry only when they agree bit for bit.
func distanceCacheKey(p1, p2 domain.GeoPoint) string {
	key := "geodist:v1"
	for _, v := range []float64{
		p1.LatitudeRad, p1.LongitudeRad, p1.AltitudeM,
		p2.LatitudeRad, p2.LongitudeRad, p2.AltitudeM,
	} {
		key += ":" + strconv.FormatUint(math.Float64bits(v), 16)
	}
	return key
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrParse):
		return "parse"
	case errors.Is(err, domain.ErrRange):
		return "range"
	default:
		return "compute"
	}
}
