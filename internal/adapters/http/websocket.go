package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/geodist/internal/pkg/metrics"
)

// distanceSubject is the NATS subject computed distances are published on.
const distanceSubject = "geo.distance.computed"

// wsMessage is sent from client to subscribe/unsubscribe to the feed.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "distances" (default)
}

// WebSocketHandler returns a handler that relays computed-distance events
// to connected clients. Clients are subscribed on connect and may send
// {"action":"unsubscribe"} / {"action":"subscribe"} to pause and resume.
func WebSocketHandler(relay EventRelay) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		var unsubscribe func() error
		subscribe := func() error {
			unsub, err := relay.Subscribe(distanceSubject, func(data []byte) {
				_ = writeJSON(json.RawMessage(data))
			})
			if err != nil {
				return err
			}
			unsubscribe = unsub
			return nil
		}

		if err := subscribe(); err != nil {
			slog.Warn("ws default subscribe", "error", err)
			return
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Read client messages for subscribe/unsubscribe
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			if m.Channel != "" && m.Channel != "distances" {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if unsubscribe != nil {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": distanceSubject})
					continue
				}
				if err := subscribe(); err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": distanceSubject})

			case "unsubscribe":
				if unsubscribe == nil {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + distanceSubject})
					continue
				}
				_ = unsubscribe()
				unsubscribe = nil
				_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": distanceSubject})

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		if unsubscribe != nil {
			_ = unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
