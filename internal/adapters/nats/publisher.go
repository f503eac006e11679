package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/pkg/metrics"
)

// Subjects. Availability subjects are scoped by store then item so consumers
// can filter with wildcards, e.g. instock.availability.<storeId>.>.
const (
	AvailabilitySubjects = "instock.availability.>"
	StoreSubjects        = "instock.store.>"
)

// AvailabilitySubject returns the subject an availability event is published on.
func AvailabilitySubject(ev *domain.AvailabilityEvent) string {
	return "instock.availability." + ev.StoreID + "." + ev.ItemID
}

// StoreSubject returns the subject a store event is published on.
func StoreSubject(ev *domain.StoreEvent) string {
	return "instock.store." + ev.StoreID
}

// Streams returns the JetStream configuration backing the subjects.
func Streams() []nats.StreamConfig {
	return []nats.StreamConfig{
		{
			Name:      "INSTOCK_AVAILABILITY",
			Subjects:  []string{AvailabilitySubjects},
			Retention: nats.LimitsPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "INSTOCK_STORES",
			Subjects:  []string{StoreSubjects},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	for _, cfg := range Streams() {
		cfg := cfg
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist; update it instead
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishAvailability publishes a stock change.
func (p *Publisher) PublishAvailability(ctx context.Context, ev *domain.AvailabilityEvent) error {
	return p.publish(ctx, AvailabilitySubject(ev), ev.Type, ev)
}

// PublishStore publishes a store lifecycle event.
func (p *Publisher) PublishStore(ctx context.Context, ev *domain.StoreEvent) error {
	return p.publish(ctx, StoreSubject(ev), ev.Type, ev)
}

func (p *Publisher) publish(ctx context.Context, subject, eventType string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	metrics.EventsPublished.WithLabelValues(eventType).Inc()
	return nil
}

// Connected reports whether the underlying connection is up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("instock"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
