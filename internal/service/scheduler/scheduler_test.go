package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/service/playback"
	"github.com/oshokin/alarm-clock/internal/wallclock"
)

var errNoDevice = errors.New("no audio device")

// recordingRinger remembers started tones and can be told to fail.
type recordingRinger struct {
	mu      sync.Mutex
	started []string
	stops   int
	fail    map[string]bool
}

func (r *recordingRinger) Start(_ context.Context, tone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail[tone] {
		return &domain.PlaybackError{Tone: tone, Reason: errNoDevice}
	}

	r.started = append(r.started, tone)

	return nil
}

func (r *recordingRinger) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stops++
}

func (r *recordingRinger) tones() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.started...)
}

// silentPlayer hands out no-op handles.
type silentPlayer struct{}

func (silentPlayer) Play(string) (io.Closer, error) { return io.NopCloser(nil), nil }

type staticResolver struct{}

func (staticResolver) Resolve(tone string) (string, error) { return "/sounds/" + tone, nil }

// TestTick_FiresOncePerSecond removes a due alarm exactly once even when polled repeatedly.
func TestTick_FiresOncePerSecond(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC))
	store := alarms.NewStore()
	ringer := new(recordingRinger)

	_, err := store.Add("07:00:00", "bell.wav")
	require.NoError(t, err)
	later, err := store.Add("07:00:01", "chime.wav")
	require.NoError(t, err)

	s := New(store, wallclock.New(clock, time.UTC), ringer, Options{})

	for range 3 {
		s.Tick(context.Background())
	}

	s.rings.Wait()

	require.Equal(t, []string{"bell.wav"}, ringer.tones())
	require.Equal(t, []domain.Alarm{later}, store.Snapshot())
}

// TestTick_ConcurrentTicksFireOnce races ticks within the same second.
func TestTick_ConcurrentTicksFireOnce(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC))
	store := alarms.NewStore()
	ringer := new(recordingRinger)

	_, err := store.Add("07:00:00", "bell.wav")
	require.NoError(t, err)

	s := New(store, wallclock.New(clock, time.UTC), ringer, Options{})

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() { s.Tick(context.Background()) })
	}

	wg.Wait()
	s.rings.Wait()

	require.Len(t, ringer.tones(), 1)
	require.Zero(t, store.Len())
}

// TestTick_CatchesUpSkippedSeconds fires alarms whose second fell between two late ticks.
func TestTick_CatchesUpSkippedSeconds(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 4, 999*int(time.Millisecond), time.UTC))
	store := alarms.NewStore()
	ringer := new(recordingRinger)

	_, err := store.Add("00:00:05", "bell.wav")
	require.NoError(t, err)
	_, err = store.Add("00:00:06", "chime.wav")
	require.NoError(t, err)
	later, err := store.Add("00:00:07", "song.mp3")
	require.NoError(t, err)

	s := New(store, wallclock.New(clock, time.UTC), ringer, Options{})

	s.Tick(context.Background())
	s.rings.Wait()
	require.Empty(t, ringer.tones())

	// 00:00:04.999 -> 00:00:06.001, no tick lands in 00:00:05.
	clock.Advance(1002 * time.Millisecond)
	s.Tick(context.Background())
	s.rings.Wait()

	require.ElementsMatch(t, []string{"bell.wav", "chime.wav"}, ringer.tones())
	require.Equal(t, []domain.Alarm{later}, store.Snapshot())
}

// TestTick_ClockJumpChecksCurrentSecondOnly does not replay a long stretch after a suspend or clock step.
func TestTick_ClockJumpChecksCurrentSecondOnly(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	store := alarms.NewStore()
	ringer := new(recordingRinger)

	skipped, err := store.Add("00:30:00", "bell.wav")
	require.NoError(t, err)
	_, err = store.Add("01:00:00", "chime.wav")
	require.NoError(t, err)

	s := New(store, wallclock.New(clock, time.UTC), ringer, Options{})

	s.Tick(context.Background())

	clock.Advance(time.Hour)
	s.Tick(context.Background())

	// A step back is a jump too.
	clock.Advance(-time.Second)
	s.Tick(context.Background())
	s.rings.Wait()

	require.Equal(t, []string{"chime.wav"}, ringer.tones())
	require.Equal(t, []domain.Alarm{skipped}, store.Snapshot())
}

// TestTick_PlaybackFailureIsReported publishes an error event and keeps the alarm removed.
func TestTick_PlaybackFailureIsReported(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC))
	store := alarms.NewStore()
	ringer := &recordingRinger{fail: map[string]bool{"song.mp3": true}}
	hub := events.NewHub(clock.Now)
	sub := hub.Subscribe()

	defer sub.Close()

	fired, err := store.Add("07:00:00", "song.mp3")
	require.NoError(t, err)

	s := New(store, wallclock.New(clock, time.UTC), ringer, Options{Hub: hub})
	s.Tick(context.Background())
	s.rings.Wait()

	require.Zero(t, store.Len())

	seen := map[events.Type]events.Event{}
	for range 3 {
		ev := <-sub.C()
		seen[ev.Type] = ev
	}

	require.Equal(t, fired, *seen[events.TypeRinging].Alarm)
	require.Zero(t, seen[events.TypeChanged].Count)
	require.Equal(t, domain.KindPlayback, seen[events.TypeError].Kind)
}

// TestRun_EndToEnd fires "00:00:05" five seconds after midnight and keeps ringing the bell.
func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		// The synctest clock starts at 2000-01-01 00:00:00 UTC.
		source := wallclock.New(clockwork.NewRealClock(), time.UTC)
		require.Equal(t, "00:00:00", source.Now().String())

		store := alarms.NewStore()
		_, err := store.Add("00:00:05", "bell.wav")
		require.NoError(t, err)

		controller := playback.NewController(staticResolver{}, silentPlayer{})
		s := New(store, source, controller, Options{})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		go func() { done <- s.Run(ctx) }()

		time.Sleep(4500 * time.Millisecond)
		synctest.Wait()
		require.Equal(t, StateRunning, s.State())
		require.Equal(t, 1, store.Len())
		require.False(t, controller.IsActive())

		time.Sleep(time.Second)
		synctest.Wait()
		require.Zero(t, store.Len())
		require.True(t, controller.IsActive())

		tone, ok := controller.Tone()
		require.True(t, ok)
		require.Equal(t, "bell.wav", tone)

		started := time.Now()

		cancel()
		require.NoError(t, <-done)
		require.Less(t, time.Since(started), time.Second)
		require.Equal(t, StateStopped, s.State())
		require.False(t, controller.IsActive())

		controller.Close()
	})
}

// TestRun_OnlyOnce rejects a second Run and stops the ringer on exit.
func TestRun_OnlyOnce(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ringer := new(recordingRinger)
		s := New(alarms.NewStore(), wallclock.New(nil, time.UTC), ringer, Options{PollInterval: 100 * time.Millisecond})
		require.Equal(t, StateIdle, s.State())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		go func() { done <- s.Run(ctx) }()

		synctest.Wait()
		require.ErrorIs(t, s.Run(ctx), ErrAlreadyStarted)

		cancel()
		require.NoError(t, <-done)
		require.Equal(t, StateStopped, s.State())
		require.Equal(t, "stopped", s.State().String())
		require.ErrorIs(t, s.Run(context.Background()), ErrAlreadyStarted)

		ringer.mu.Lock()
		require.Equal(t, 1, ringer.stops)
		ringer.mu.Unlock()
	})
}
