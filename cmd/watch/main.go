// Command watch tails computed-distance events from NATS and logs them.
package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/geodist/internal/adapters/nats"
	"github.com/samirrijal/geodist/internal/core/domain"
	"github.com/samirrijal/geodist/internal/pkg/config"
	"github.com/samirrijal/geodist/internal/pkg/geospatial"
	"github.com/samirrijal/geodist/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("geodist-watch")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	subject := natsadapter.SubjectDistancesAll
	if len(os.Args) > 1 {
		subject = os.Args[1]
	}

	unsubscribe, err := sub.Subscribe(subject, func(data []byte) {
		handleEvent(logger, data)
	})
	if err != nil {
		log.Fatalf("subscribe %s: %v", subject, err)
	}
	defer unsubscribe()

	logger.Info("watching distance events", "subject", subject)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down watcher")
}

func handleEvent(logger *slog.Logger, data []byte) {
	var ev domain.DistanceEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		logger.Warn("malformed event", "error", err, "bytes", len(data))
		return
	}

	logger.Info("distance computed",
		"id", ev.ID,
		"mode", ev.Mode,
		"from", formatPoint(ev.Point1),
		"to", formatPoint(ev.Point2),
		"surface", geospatial.FormatDistance(ev.Distances.SurfaceMeters),
		"straight", geospatial.FormatDistance(ev.Distances.StraightMeters),
		"computed_at", ev.ComputedAt,
	)
}

func formatPoint(p domain.GeoPoint) string {
	lat := geospatial.DecimalToDMSAxis(p.LatitudeDegrees(), geospatial.AxisLatitude)
	lon := geospatial.DecimalToDMSAxis(p.LongitudeDegrees(), geospatial.AxisLongitude)
	return lat.String() + ", " + lon.String()
}
