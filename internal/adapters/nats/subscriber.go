package natsadapter

import (
	"github.com/nats-io/nats.go"
)

// Subscriber relays core NATS messages to in-process callbacks. It backs the
// WebSocket feed, which needs live fan-out rather than durable consumers.
type Subscriber struct {
	conn *nats.Conn
}

// NewSubscriber opens a plain NATS connection for subscribing.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn}, nil
}

// Subscribe delivers every message on subject to fn until the returned
// unsubscribe func is called.
func (s *Subscriber) Subscribe(subject string, fn func(data []byte)) (func() error, error) {
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return sub.Unsubscribe, nil
}

// IsConnected reports whether the broker connection is up.
func (s *Subscriber) IsConnected() bool {
	return s.conn.IsConnected()
}

// Close drains and closes the connection.
func (s *Subscriber) Close() {
	_ = s.conn.Drain()
}
