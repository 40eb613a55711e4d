// Package eventbus forwards task events to NATS so other processes can react
// to task changes. Publishing is fire-and-forget on core NATS: the server does
// not wait for subscribers, and a NATS outage never fails a task mutation.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// MsgIDHeader carries the event id so consumers can de-duplicate.
const MsgIDHeader = "Nats-Msg-Id"

// Connect dials the NATS server at url with reconnects enabled.
func Connect(url string, log *slog.Logger) (*nats.Conn, error) {
	if log == nil {
		log = slog.Default()
	}

	nc, err := nats.Connect(url,
		nats.Name("taskflow-api"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", slog.String("url", c.ConnectedUrlRedacted()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return nc, nil
}

// MsgPublisher is the subset of *nats.Conn the publisher needs.
type MsgPublisher interface {
	PublishMsg(msg *nats.Msg) error
}

// Publisher is an events.EventHandler that publishes each event as JSON to
// "<prefix>.<event type>".
type Publisher struct {
	conn   MsgPublisher
	prefix string
	logger *slog.Logger
}

// NewPublisher creates a publisher writing to subjects under prefix.
func NewPublisher(conn MsgPublisher, prefix string, logger *slog.Logger) *Publisher {
	if conn == nil {
		panic("nats connection cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		prefix: prefix,
		logger: logger.With(slog.String("component", "event_publisher")),
	}
}

var _ events.EventHandler = (*Publisher)(nil)

// Subject returns the subject an event of the given type is published on.
func (p *Publisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

// HandleEvent implements events.EventHandler.
func (p *Publisher) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
	}

	msg := nats.NewMsg(p.Subject(event.Type))
	msg.Data = data
	msg.Header.Set(MsgIDHeader, event.ID.String())

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}

	logger.FromContextOrDefault(ctx, p.logger).Debug("event published",
		slog.String("subject", msg.Subject),
		slog.String("event_id", event.ID.String()))
	return nil
}
