package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/export"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Options configures how alarmctl reaches the daemon.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides the daemon address from config when specified.
	ServerAddress string
	// Out receives command output; stdout when nil.
	Out io.Writer
}

// shortIDLength is how much of an alarm id list prints.
const shortIDLength = 8

// errAmbiguousID is returned when an id prefix matches several alarms.
var errAmbiguousID = errors.New("alarm id prefix is ambiguous")

// Runner executes alarmctl commands against one daemon.
type Runner struct {
	client   *common.Client
	out      io.Writer
	location *time.Location
}

// Connect loads settings and dials the daemon.
func Connect(ctx context.Context, opts *Options) (*Runner, error) {
	ctx = logger.WithName(ctx, "alarmctl")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	serverAddress := cfg.ListenAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	location, err := cfg.TimeLocation()
	if err != nil {
		return nil, err
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Connected to alarm clock", "server_address", serverAddress)

	return NewRunner(client, opts.Out, location), nil
}

// NewRunner creates a runner over an established client.
func NewRunner(client *common.Client, out io.Writer, location *time.Location) *Runner {
	if out == nil {
		out = os.Stdout
	}

	if location == nil {
		location = time.Local
	}

	return &Runner{
		client:   client,
		out:      out,
		location: location,
	}
}

// Close releases the connection.
func (r *Runner) Close() error {
	return r.client.Close()
}

// Add schedules an alarm.
func (r *Runner) Add(ctx context.Context, at, tone string) error {
	a, err := r.client.AddAlarm(ctx, at, tone)
	if err != nil {
		return err
	}

	r.printf("Alarm added successfully! %s [%s]\n", a, shortID(a.ID))

	return nil
}

// List prints the scheduled alarms in insertion order.
func (r *Runner) List(ctx context.Context) error {
	list, err := r.client.ListAlarms(ctx)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		r.printf("No alarms scheduled\n")

		return nil
	}

	for _, a := range list {
		r.printf("[%s] %s\n", shortID(a.ID), a)
	}

	return nil
}

// Delete removes the alarm whose id, or unique id prefix, is given.
func (r *Runner) Delete(ctx context.Context, id string) error {
	resolved, err := r.resolveID(ctx, id)
	if err != nil {
		return err
	}

	if err = r.client.DeleteAlarm(ctx, resolved); err != nil {
		return err
	}

	r.printf("Alarm deleted successfully!\n")

	return nil
}

// Tones prints the tones the daemon can ring.
func (r *Runner) Tones(ctx context.Context) error {
	tones, err := r.client.ListTones(ctx)
	if err != nil {
		return err
	}

	for _, tone := range tones {
		r.printf("%s\n", tone)
	}

	return nil
}

// Snooze reschedules the ringing alarm.
func (r *Runner) Snooze(ctx context.Context) error {
	a, err := r.client.Snooze(ctx)
	if err != nil {
		return err
	}

	r.printf("Alarm snoozed to %s\n", a.Time)

	return nil
}

// Stop silences the ringing alarm.
func (r *Runner) Stop(ctx context.Context) error {
	rang, err := r.client.StopRinging(ctx)
	if err != nil {
		return err
	}

	if !rang {
		r.printf("Nothing is ringing\n")

		return nil
	}

	r.printf("Alarm stopped successfully!\n")

	return nil
}

// Status prints what the daemon is doing.
func (r *Runner) Status(ctx context.Context) error {
	st, err := r.client.Status(ctx)
	if err != nil {
		return err
	}

	ringing := "silent"
	if st.Ringing {
		ringing = "ringing " + st.Tone
	}

	r.printf("%s, %d alarm(s) scheduled, daemon time %s\n", ringing, st.Scheduled, st.Now)

	return nil
}

// Shutdown stops the daemon.
func (r *Runner) Shutdown(ctx context.Context) error {
	if err := r.client.Shutdown(ctx); err != nil {
		return err
	}

	r.printf("Alarm clock is shutting down\n")

	return nil
}

// Watch prints daemon events until ctx ends.
func (r *Runner) Watch(ctx context.Context) error {
	err := r.client.Watch(ctx, func(ev events.Event) error {
		r.printf("%s\n", FormatEvent(ev, r.location))

		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// Export writes the scheduled alarms as an iCalendar file at path, or to the
// output when path is "-".
func (r *Runner) Export(ctx context.Context, path string) error {
	list, err := r.client.ListAlarms(ctx)
	if err != nil {
		return err
	}

	if path == "-" {
		return export.Write(r.out, list, time.Now(), r.location)
	}

	file, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create calendar file: %w", err)
	}

	if err = export.Write(file, list, time.Now(), r.location); err != nil {
		_ = file.Close()

		return err
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close calendar file: %w", err)
	}

	r.printf("Exported %d alarm(s) to %s\n", len(list), path)

	return nil
}

// FormatEvent renders an event as one line.
func FormatEvent(ev events.Event, location *time.Location) string {
	at := ev.At.In(location).Format(domain.TimeLayout)

	switch ev.Type {
	case events.TypeRinging:
		if ev.Alarm != nil {
			return fmt.Sprintf("%s Alarm ringing at %s with tone %s!", at, ev.Alarm.Time, ev.Alarm.Tone)
		}
	case events.TypeStopped:
		return fmt.Sprintf("%s Alarm stopped (%s)", at, ev.Tone)
	case events.TypeChanged:
		return fmt.Sprintf("%s %d alarm(s) scheduled", at, ev.Count)
	case events.TypeError:
		return fmt.Sprintf("%s %s error: %s", at, ev.Kind, ev.Message)
	}

	return fmt.Sprintf("%s %s", at, ev.Type)
}

func (r *Runner) resolveID(ctx context.Context, id string) (uuid.UUID, error) {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed, nil
	}

	list, err := r.client.ListAlarms(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	var (
		match uuid.UUID
		found int
	)

	for _, a := range list {
		if strings.HasPrefix(a.ID.String(), strings.ToLower(id)) {
			match = a.ID
			found++
		}
	}

	switch {
	case id == "" || found == 0:
		return uuid.Nil, fmt.Errorf("%w: id %q", domain.ErrNotFound, id)
	case found > 1:
		return uuid.Nil, fmt.Errorf("%w: %q matches %d alarms", errAmbiguousID, id, found)
	default:
		return match, nil
	}
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func shortID(id uuid.UUID) string {
	return id.String()[:shortIDLength]
}
