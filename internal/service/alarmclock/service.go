package alarmclock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/metrics"
	"github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/wallclock"
)

// DefaultSnooze is how far ahead a snoozed alarm is rescheduled.
const DefaultSnooze = 5 * time.Minute

// Catalog lists the available tones.
type Catalog interface {
	Tones() []string
	Has(tone string) bool
}

// Playback is the part of the playback controller the service drives.
type Playback interface {
	StopIfRinging() (string, bool)
	Tone() (string, bool)
}

// Options configures a Service.
type Options struct {
	// Snooze defaults to DefaultSnooze.
	Snooze time.Duration
	// Hub receives stopped and changed events; optional.
	Hub *events.Hub
	// Recorder receives metrics; optional.
	Recorder *metrics.Recorder
	// Shutdown is called by Shutdown; optional.
	Shutdown func()
}

// Service implements the alarm clock operations.
type Service struct {
	store    *alarms.Store
	catalog  Catalog
	playback Playback
	source   *wallclock.Source
	snooze   time.Duration
	hub      *events.Hub
	recorder *metrics.Recorder
	shutdown func()
}

// NewService wires the operations to their collaborators.
func NewService(
	store *alarms.Store,
	catalog Catalog,
	playback Playback,
	source *wallclock.Source,
	opts Options,
) *Service {
	if opts.Snooze <= 0 {
		opts.Snooze = DefaultSnooze
	}

	if opts.Shutdown == nil {
		opts.Shutdown = func() {}
	}

	return &Service{
		store:    store,
		catalog:  catalog,
		playback: playback,
		source:   source,
		snooze:   opts.Snooze,
		hub:      opts.Hub,
		recorder: opts.Recorder,
		shutdown: opts.Shutdown,
	}
}

// Add schedules tone at the HH:MM:SS time at. Besides the store's own
// validation the tone must be one the catalog listed. A malformed time is
// reported before anything about the tone.
func (s *Service) Add(ctx context.Context, at, tone string) (domain.Alarm, error) {
	if _, err := domain.ParseTimeOfDay(at); err != nil {
		return domain.Alarm{}, err
	}

	if err := domain.ValidateTone(tone); err == nil && !s.catalog.Has(tone) {
		return domain.Alarm{}, fmt.Errorf("%w: %q", domain.ErrToneNotFound, tone)
	}

	a, err := s.store.Add(at, tone)
	if err != nil {
		return domain.Alarm{}, err
	}

	logger.InfoKV(ctx, "Alarm added", "time", a.Time.String(), "tone", a.Tone, "id", a.ID.String())
	s.changed()

	return a, nil
}

// Delete removes the alarm the user selected. The selection may have fired
// in the meantime, which is reported as domain.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (domain.Alarm, error) {
	a, err := s.store.Delete(id)
	if err != nil {
		return domain.Alarm{}, err
	}

	logger.InfoKV(ctx, "Alarm deleted", "time", a.Time.String(), "tone", a.Tone, "id", a.ID.String())
	s.changed()

	return a, nil
}

// Snooze silences the ringing tone and schedules it again after the snooze
// duration. Without a ringing tone it fails with domain.ErrNoActiveAlarm and
// changes nothing.
func (s *Service) Snooze(ctx context.Context) (domain.Alarm, error) {
	tone, ringing := s.playback.StopIfRinging()
	if !ringing {
		return domain.Alarm{}, domain.ErrNoActiveAlarm
	}

	s.hub.Stopped(tone)

	a, err := domain.New(s.source.Now().Add(s.snooze), tone)
	if err != nil {
		return domain.Alarm{}, err
	}

	s.store.Insert(a)
	s.recorder.IncSnooze()

	logger.InfoKV(ctx, "Alarm snoozed", "until", a.Time.String(), "tone", a.Tone, "id", a.ID.String())
	s.changed()

	return a, nil
}

// Stop silences the ringing tone. It reports whether something was ringing.
func (s *Service) Stop(ctx context.Context) bool {
	tone, ringing := s.playback.StopIfRinging()
	if ringing {
		logger.InfoKV(ctx, "Alarm stopped", "tone", tone)
		s.hub.Stopped(tone)
	}

	return ringing
}

// Alarms returns the scheduled alarms in insertion order.
func (s *Service) Alarms() []domain.Alarm {
	return s.store.Snapshot()
}

// Tones returns the tone vocabulary.
func (s *Service) Tones() []string {
	return s.catalog.Tones()
}

// Status reports the ringing state.
func (s *Service) Status() domain.Status {
	tone, ringing := s.playback.Tone()

	return domain.Status{
		Ringing:   ringing,
		Tone:      tone,
		Now:       s.source.Now(),
		Scheduled: s.store.Len(),
	}
}

// Shutdown asks the daemon to exit.
func (s *Service) Shutdown(ctx context.Context) {
	logger.Info(ctx, "Shutdown requested")
	s.shutdown()
}

func (s *Service) changed() {
	count := s.store.Len()
	s.recorder.SetScheduled(count)
	s.hub.Changed(count)
}
