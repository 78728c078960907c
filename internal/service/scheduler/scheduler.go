package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/metrics"
	"github.com/oshokin/alarm-clock/internal/wallclock"
)

// DefaultPollInterval is how often the store is checked.
const DefaultPollInterval = time.Second

// catchUpSlack extends the poll interval to the window a tick looks back
// over for seconds the previous tick did not reach.
const catchUpSlack = 5 * time.Second

// State is the lifecycle state of a Scheduler.
type State int32

const (
	// StateIdle means Run was not called yet.
	StateIdle State = iota
	// StateRunning means the polling loop is active.
	StateRunning
	// StateStopped is terminal.
	StateStopped
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrAlreadyStarted is returned when Run is called twice.
var ErrAlreadyStarted = errors.New("scheduler already started")

// Store is the part of the alarm store the scheduler uses.
type Store interface {
	Due(now domain.TimeOfDay) []domain.Alarm
	Delete(id uuid.UUID) (domain.Alarm, error)
	Len() int
}

// Ringer plays tones.
type Ringer interface {
	Start(ctx context.Context, tone string) error
	Stop()
}

// Options configures a Scheduler.
type Options struct {
	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
	// Hub receives ringing, changed and error events; optional.
	Hub *events.Hub
	// Recorder receives metrics; optional.
	Recorder *metrics.Recorder
}

// Scheduler is the background polling task.
type Scheduler struct {
	store    Store
	source   *wallclock.Source
	ringer   Ringer
	interval time.Duration
	hub      *events.Hub
	recorder *metrics.Recorder

	state atomic.Int32
	// rings tracks playback starts still in flight.
	rings sync.WaitGroup

	// mu guards last and polled.
	mu sync.Mutex
	// last is the time of day the previous tick checked.
	last   domain.TimeOfDay
	polled bool
}

// New creates an idle scheduler.
func New(store Store, source *wallclock.Source, ringer Ringer, opts Options) *Scheduler {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	return &Scheduler{
		store:    store,
		source:   source,
		ringer:   ringer,
		interval: opts.PollInterval,
		hub:      opts.Hub,
		recorder: opts.Recorder,
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Run polls until ctx is cancelled, then silences any ringing tone, waits for
// in-flight playback starts and moves to StateStopped.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyStarted
	}

	ctx = logger.WithName(ctx, "scheduler")

	ticker := s.source.Clock().NewTicker(s.interval)

	defer func() {
		ticker.Stop()
		s.rings.Wait()
		s.ringer.Stop()
		s.state.Store(int32(StateStopped))
		logger.Info(ctx, "Scheduler stopped")
	}()

	logger.InfoKV(ctx, "Scheduler started", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			s.Tick(ctx)
		}
	}
}

// Tick fires every alarm due since the previous tick. A late tick also
// checks the seconds it skipped, within the poll interval plus a few seconds.
// An alarm is fired only by the caller that removed it, so polling several
// times within the same second fires it once.
func (s *Scheduler) Tick(ctx context.Context) {
	var due []domain.Alarm

	for _, at := range s.pending(ctx) {
		due = append(due, s.store.Due(at)...)
	}

	if len(due) == 0 {
		return
	}

	for _, a := range due {
		if _, err := s.store.Delete(a.ID); err != nil {
			// Deleted by a user or an earlier tick in the same second.
			logger.DebugKV(ctx, "Due alarm already gone", "alarm", a.String(), "error", err)

			continue
		}

		s.fire(ctx, a)
	}

	remaining := s.store.Len()
	s.recorder.SetScheduled(remaining)
	s.hub.Changed(remaining)
}

// pending returns the seconds this tick is responsible for, oldest first:
// every second after the previous tick up to now. Only now is returned on
// the first tick and after the clock stepped back or far ahead.
func (s *Scheduler) pending(ctx context.Context) []domain.TimeOfDay {
	now := s.source.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	last, polled := s.last, s.polled
	s.last, s.polled = now, true

	gap := now.Since(last)

	switch {
	case !polled || gap == 0:
		return []domain.TimeOfDay{now}
	case gap > s.interval+catchUpSlack:
		logger.DebugKV(ctx, "Clock jumped, checking the current second only", "from", last.String(), "to", now.String())

		return []domain.TimeOfDay{now}
	}

	seconds := make([]domain.TimeOfDay, 0, gap/time.Second)
	for at := last.Add(time.Second); ; at = at.Add(time.Second) {
		seconds = append(seconds, at)

		if at == now {
			return seconds
		}
	}
}

// fire announces a and starts its tone without blocking the polling loop.
func (s *Scheduler) fire(ctx context.Context, a domain.Alarm) {
	logger.InfoKV(ctx, "Alarm ringing", "time", a.Time.String(), "tone", a.Tone, "id", a.ID.String())

	s.recorder.IncFired()
	s.hub.Ringing(a)

	s.rings.Go(func() {
		if err := s.ringer.Start(ctx, a.Tone); err != nil {
			logger.ErrorKV(ctx, "Failed to play tone", "tone", a.Tone, "error", err)
			s.hub.Failed(&a, err)
		}
	})
}
