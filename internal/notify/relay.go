package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// clientName is how the daemon identifies itself to the NATS server.
const clientName = "alarmd"

// reconnectWait is the pause between reconnect attempts.
const reconnectWait = 2 * time.Second

// Publisher sends a payload to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Subscriber hands out event subscriptions.
type Subscriber interface {
	Subscribe() *events.Subscription
}

// Message is the JSON payload of a relayed event.
type Message struct {
	Type    events.Type `json:"type"`
	At      time.Time   `json:"at"`
	AlarmID string      `json:"alarm_id,omitempty"`
	Time    string      `json:"time,omitempty"`
	Tone    string      `json:"tone,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Kind    domain.Kind `json:"kind,omitempty"`
	Message string      `json:"message,omitempty"`
}

// NewMessage converts a hub event to its payload.
func NewMessage(ev events.Event) Message {
	msg := Message{
		Type:    ev.Type,
		At:      ev.At,
		Tone:    ev.Tone,
		Kind:    ev.Kind,
		Message: ev.Message,
	}

	if ev.Alarm != nil {
		msg.AlarmID = ev.Alarm.ID.String()
		msg.Time = ev.Alarm.Time.String()
		msg.Tone = ev.Alarm.Tone
	}

	if ev.Type == events.TypeChanged {
		count := ev.Count
		msg.Count = &count
	}

	return msg
}

// Relay publishes every hub event as JSON on "<subject>.<type>".
type Relay struct {
	publisher Publisher
	subject   string
	// closer is set when the relay owns its connection.
	closer func()
}

// NewRelay creates a relay over an existing publisher.
func NewRelay(publisher Publisher, subject string) *Relay {
	return &Relay{
		publisher: publisher,
		subject:   subject,
	}
}

// Connect dials the NATS server at url and returns a relay owning the
// connection. An unreachable server is retried in the background for as long
// as the relay lives, so only a malformed url fails here.
func Connect(ctx context.Context, url, subject string) (*Relay, error) {
	conn, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.WarnKV(ctx, "Disconnected from NATS", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.InfoKV(ctx, "Reconnected to NATS", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}

	relay := NewRelay(conn, subject)
	relay.closer = func() {
		if err := conn.Drain(); err != nil {
			logger.WarnKV(ctx, "Failed to drain NATS connection", "error", err)
		}
	}

	logger.InfoKV(ctx, "Relaying events to NATS", "url", url, "subject", subject)

	return relay, nil
}

// Run relays events from source until ctx is done. A subscription dropped
// for falling behind is replaced.
func (r *Relay) Run(ctx context.Context, source Subscriber) {
	for {
		sub := source.Subscribe()

		if !r.drain(ctx, sub) {
			return
		}

		logger.Warn(ctx, "Event relay fell behind, resubscribing")
	}
}

// Close releases the connection opened by Connect.
func (r *Relay) Close() {
	if r.closer != nil {
		r.closer()
	}
}

// Send publishes one event.
func (r *Relay) Send(ev events.Event) error {
	data, err := json.Marshal(NewMessage(ev))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := r.publisher.Publish(r.subject+"."+string(ev.Type), data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}

// drain forwards events until ctx is done, returning false, or until the
// subscription is closed, returning true.
func (r *Relay) drain(ctx context.Context, sub *events.Subscription) bool {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-sub.C():
			if !ok {
				return true
			}

			if err := r.Send(ev); err != nil {
				logger.WarnKV(ctx, "Failed to relay event", "type", ev.Type, "error", err)
			}
		}
	}
}
