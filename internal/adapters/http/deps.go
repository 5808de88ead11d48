package http

import (
	"context"

	"github.com/samirrijal/geodist/internal/core/usecases"
)

// EventRelay fans broker messages out to WebSocket clients.
type EventRelay interface {
	Subscribe(subject string, fn func(data []byte)) (unsubscribe func() error, err error)
	IsConnected() bool
}

// Broker is the publishing side of the event stream, checked for readiness.
type Broker interface {
	IsConnected() bool
}

// Pinger is a backing service that can be probed for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers. Everything except
// Distances is optional.
type Dependencies struct {
	Distances *usecases.DistanceService
	Relay     EventRelay
	Broker    Broker
	Cache     Pinger
	Version   string
	// RateLimit is requests per minute per IP; 0 means 120.
	RateLimit int
}
