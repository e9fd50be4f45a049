package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/marcosvidal/carniceria-go/interfaces"
	"github.com/marcosvidal/carniceria-go/internal"
)

// NATSPublisher pushes accounting events over NATS so open dashboard
// sessions can refresh without polling. The core treats publishing as best
// effort; a dropped event costs one stale dashboard refresh, never data.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *internal.Logger
}

// NewNATSPublisher connects to the NATS server and returns a publisher.
func NewNATSPublisher(url, subject string, logger *internal.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = internal.GetLogger()
	}

	conn, err := nats.Connect(url,
		nats.Name("carniceria-accounting"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info(internal.ComponentEvents, "Connected to NATS at %s", url)
	return &NATSPublisher{conn: conn, subject: subject, logger: logger}, nil
}

// Publish sends one event. The subject is the configured prefix plus the
// event type.
func (p *NATSPublisher) Publish(event interfaces.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", p.subject, event.Type)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug(internal.ComponentEvents, "Published %s to %s", event.Type, subject)
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NoopPublisher is bound when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(interfaces.Event) error { return nil }
func (NoopPublisher) Close() error                   { return nil }
