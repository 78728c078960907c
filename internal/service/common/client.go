//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/version"
)

// Client wraps the control API client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to alarmd.
	conn *grpc.ClientConn
	// api is the control API client.
	api api.AlarmClockClient

	// actor identifies the caller on every request.
	actor string
	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor overrides the detected caller identity.
func WithActor(actor string) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial prepares a connection to alarmd. The control API listens on loopback
// by default, so the transport is not encrypted.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUserAgent(version.UserAgent("alarmctl")),
	)
	if err != nil {
		return nil, fmt.Errorf("dial alarmd: %w", err)
	}

	client := newClient(conn, opts...)
	client.conn = conn

	if client.actor == "" {
		// An anonymous caller is still served.
		client.actor, _ = DetectActor()
	}

	return client, nil
}

// newClient builds a Client on any connection, used directly by tests.
func newClient(cc grpc.ClientConnInterface, opts ...Option) *Client {
	client := &Client{
		api:         api.NewAlarmClockClient(cc),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// AddAlarm schedules tone at the HH:MM:SS time at.
func (c *Client) AddAlarm(ctx context.Context, at, tone string) (domain.Alarm, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.AddAlarm(callCtx, api.AddRequest(at, tone))
	if err != nil {
		return domain.Alarm{}, fmt.Errorf("add alarm: %w", api.FromStatus(err))
	}

	return api.AlarmFromProto(resp)
}

// DeleteAlarm removes the alarm with the given id.
func (c *Client) DeleteAlarm(ctx context.Context, id uuid.UUID) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.DeleteAlarm(callCtx, wrapperspb.String(id.String())); err != nil {
		return fmt.Errorf("delete alarm: %w", api.FromStatus(err))
	}

	return nil
}

// ListAlarms returns the scheduled alarms in insertion order.
func (c *Client) ListAlarms(ctx context.Context) ([]domain.Alarm, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ListAlarms(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", api.FromStatus(err))
	}

	return api.AlarmsFromProto(resp)
}

// ListTones returns the tone vocabulary of the daemon.
func (c *Client) ListTones(ctx context.Context) ([]string, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ListTones(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("list tones: %w", api.FromStatus(err))
	}

	return api.StringsFromProto(resp), nil
}

// Snooze reschedules the ringing tone and returns the new alarm.
func (c *Client) Snooze(ctx context.Context) (domain.Alarm, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Snooze(callCtx, new(emptypb.Empty))
	if err != nil {
		return domain.Alarm{}, fmt.Errorf("snooze: %w", api.FromStatus(err))
	}

	return api.AlarmFromProto(resp)
}

// StopRinging silences the ringing tone and reports whether one rang.
func (c *Client) StopRinging(ctx context.Context) (bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.StopRinging(callCtx, new(emptypb.Empty))
	if err != nil {
		return false, fmt.Errorf("stop ringing: %w", api.FromStatus(err))
	}

	return resp.GetValue(), nil
}

// Status reports what the daemon is doing.
func (c *Client) Status(ctx context.Context) (domain.Status, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetStatus(callCtx, new(emptypb.Empty))
	if err != nil {
		return domain.Status{}, fmt.Errorf("get status: %w", api.FromStatus(err))
	}

	return api.StatusFromProto(resp)
}

// Shutdown asks the daemon to exit.
func (c *Client) Shutdown(ctx context.Context) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.Shutdown(callCtx, new(emptypb.Empty)); err != nil {
		return fmt.Errorf("shutdown: %w", api.FromStatus(err))
	}

	return nil
}

// Watch calls fn for every event the daemon publishes until ctx is done,
// the stream ends or fn fails. It has no call timeout.
func (c *Client) Watch(ctx context.Context, fn func(events.Event) error) error {
	ctx, cancel := context.WithCancel(api.WithActor(ctx, c.actor))
	defer cancel()

	stream, err := c.api.Watch(ctx, new(emptypb.Empty))
	if err != nil {
		return fmt.Errorf("watch: %w", api.FromStatus(err))
	}

	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return fmt.Errorf("watch: %w", api.FromStatus(err))
		}

		ev, err := api.EventFromProto(msg)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}

		if err := fn(ev); err != nil {
			return err
		}
	}
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline. Either carries the actor.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = api.WithActor(ctx, c.actor)

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
