package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"ngo-donation-ledger/internal/core/domain"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// conn is the subset of *nats.Conn the notifier uses.
type conn interface {
	Publish(subj string, data []byte) error
	Status() nats.Status
	Close()
}

// NATSNotifier implements ports.Notifier over NATS. Each event is published
// as JSON on a subject equal to its event type (e.g. "donation.received").
type NATSNotifier struct {
	conn conn
	log  zerolog.Logger
}

// NewNATSNotifier connects to NATS and returns a notifier.
func NewNATSNotifier(url string, log zerolog.Logger) (*NATSNotifier, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	log.Info().Str("url", url).Msg("NATS connection established")
	return &NATSNotifier{conn: nc, log: log}, nil
}

// newWithConn wires a notifier onto an existing connection (used in tests).
func newWithConn(c conn, log zerolog.Logger) *NATSNotifier {
	return &NATSNotifier{conn: c, log: log}
}

// Publish emits a commit notification. The caller treats failures as
// best-effort: the commit already happened and is never unwound for a lost
// notification.
func (n *NATSNotifier) Publish(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := n.conn.Publish(string(event.Type), data); err != nil {
		return fmt.Errorf("publish event %s: %w", event.Type, err)
	}

	n.log.Debug().
		Str("type", string(event.Type)).
		Str("event_id", event.ID).
		Msg("event published")
	return nil
}

// Close drains the underlying connection.
func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}

// HealthCheck implements ports.HealthChecker for NATS.
type HealthCheck struct {
	notifier *NATSNotifier
}

// NewHealthCheck creates a NATS health checker.
func NewHealthCheck(n *NATSNotifier) *HealthCheck {
	return &HealthCheck{notifier: n}
}

// Ping checks that the NATS connection is up.
func (h *HealthCheck) Ping(ctx context.Context) error {
	if h.notifier.conn.Status() != nats.CONNECTED {
		return fmt.Errorf("nats not connected: %s", h.notifier.conn.Status())
	}
	return nil
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "nats"
}
