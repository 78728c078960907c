package alarmclock

import (
	"context"
	"fmt"
	"io"
	"slices"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/service/playback"
	"github.com/oshokin/alarm-clock/internal/wallclock"
)

// listCatalog serves a fixed tone list and resolves every listed tone.
type listCatalog []string

func (c listCatalog) Tones() []string { return slices.Clone(c) }

func (c listCatalog) Has(tone string) bool { return slices.Contains(c, tone) }

func (c listCatalog) Resolve(tone string) (string, error) {
	if !c.Has(tone) {
		return "", fmt.Errorf("%w: %q", domain.ErrToneNotFound, tone)
	}

	return "/sounds/" + tone, nil
}

type mutePlayer struct{}

func (mutePlayer) Play(string) (io.Closer, error) { return io.NopCloser(nil), nil }

type fixture struct {
	service    *Service
	store      *alarms.Store
	controller *playback.Controller
	hub        *events.Hub
	shutdowns  int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog := listCatalog{"bell.wav", "chime.mp3"}
	f := &fixture{
		store:      alarms.NewStore(),
		controller: playback.NewController(catalog, mutePlayer{}),
		hub:        events.NewHub(nil),
	}

	t.Cleanup(f.controller.Close)

	f.service = NewService(f.store, catalog, f.controller, wallclock.New(nil, time.UTC), Options{
		Hub:      f.hub,
		Shutdown: func() { f.shutdowns++ },
	})

	return f
}

func TestAdd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		at      string
		tone    string
		wantErr error
	}{
		{name: "valid", at: "07:30:00", tone: "bell.wav"},
		{name: "bad time", at: "7:30", tone: "bell.wav", wantErr: domain.ErrInvalidTimeFormat},
		{name: "empty tone", at: "07:30:00", tone: "", wantErr: domain.ErrInvalidTone},
		{name: "placeholder tone", at: "07:30:00", tone: domain.NoTonesAvailable, wantErr: domain.ErrInvalidTone},
		{name: "unknown tone", at: "07:30:00", tone: "gong.wav", wantErr: domain.ErrToneNotFound},
		{name: "bad time and unknown tone", at: "25:61:00", tone: "gong.wav", wantErr: domain.ErrInvalidTimeFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)

			a, err := f.service.Add(t.Context(), tt.at, tt.tone)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, f.service.Alarms())

				return
			}

			require.NoError(t, err)
			require.Equal(t, []domain.Alarm{a}, f.service.Alarms())
		})
	}
}

func TestAdd_PublishesChange(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sub := f.hub.Subscribe()

	defer sub.Close()

	_, err := f.service.Add(t.Context(), "07:30:00", "bell.wav")
	require.NoError(t, err)

	ev := <-sub.C()
	require.Equal(t, events.TypeChanged, ev.Type)
	require.Equal(t, 1, ev.Count)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	a, err := f.service.Add(t.Context(), "07:30:00", "bell.wav")
	require.NoError(t, err)

	removed, err := f.service.Delete(t.Context(), a.ID)
	require.NoError(t, err)
	require.Equal(t, a, removed)
	require.Empty(t, f.service.Alarms())

	// The selection is stale once the alarm is gone.
	_, err = f.service.Delete(t.Context(), a.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSnooze_NothingRinging(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	a, err := f.service.Add(t.Context(), "07:30:00", "bell.wav")
	require.NoError(t, err)

	_, err = f.service.Snooze(t.Context())
	require.ErrorIs(t, err, domain.ErrNoActiveAlarm)
	require.Equal(t, []domain.Alarm{a}, f.service.Alarms())
}

// TestSnooze_Reschedules rings a tone at midnight and snoozes it.
func TestSnooze_Reschedules(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		sub := f.hub.Subscribe()

		defer sub.Close()

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		require.NoError(t, f.controller.Start(ctx, "chime.mp3"))
		require.True(t, f.controller.IsActive())

		a, err := f.service.Snooze(ctx)
		require.NoError(t, err)
		require.False(t, f.controller.IsActive())
		require.Equal(t, domain.MustParseTimeOfDay("00:05:00"), a.Time)
		require.Equal(t, "chime.mp3", a.Tone)
		require.Equal(t, []domain.Alarm{a}, f.service.Alarms())

		stopped := <-sub.C()
		require.Equal(t, events.TypeStopped, stopped.Type)
		require.Equal(t, "chime.mp3", stopped.Tone)

		changed := <-sub.C()
		require.Equal(t, events.TypeChanged, changed.Type)
		require.Equal(t, 1, changed.Count)

		// A second snooze has nothing left to silence.
		_, err = f.service.Snooze(ctx)
		require.ErrorIs(t, err, domain.ErrNoActiveAlarm)
		require.Len(t, f.service.Alarms(), 1)
	})
}

// swappedPlayback reports one tone while another has replaced it by the time
// it is stopped.
type swappedPlayback struct {
	reported string
	ringing  string
	stopped  bool
}

func (p *swappedPlayback) Tone() (string, bool) { return p.reported, !p.stopped }

func (p *swappedPlayback) StopIfRinging() (string, bool) {
	if p.stopped {
		return "", false
	}

	p.stopped = true

	return p.ringing, true
}

// TestSnooze_ReschedulesTheSilencedTone snoozes the tone that was actually stopped.
func TestSnooze_ReschedulesTheSilencedTone(t *testing.T) {
	t.Parallel()

	store := alarms.NewStore()
	swapped := &swappedPlayback{reported: "bell.wav", ringing: "chime.mp3"}
	service := NewService(store, listCatalog{"bell.wav", "chime.mp3"}, swapped, wallclock.New(nil, time.UTC), Options{})

	a, err := service.Snooze(t.Context())
	require.NoError(t, err)
	require.Equal(t, "chime.mp3", a.Tone)
	require.Equal(t, []domain.Alarm{a}, store.Snapshot())

	require.False(t, service.Stop(t.Context()))
}

func TestStop(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)

		require.False(t, f.service.Stop(t.Context()))
		require.NoError(t, f.controller.Start(t.Context(), "bell.wav"))

		status := f.service.Status()
		require.True(t, status.Ringing)
		require.Equal(t, "bell.wav", status.Tone)

		require.True(t, f.service.Stop(t.Context()))
		require.False(t, f.service.Stop(t.Context()))
		require.False(t, f.service.Status().Ringing)
	})
}

func TestStatusAndShutdown(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.service.Add(t.Context(), "07:30:00", "bell.wav")
	require.NoError(t, err)

	status := f.service.Status()
	require.False(t, status.Ringing)
	require.Equal(t, 1, status.Scheduled)
	require.Equal(t, []string{"bell.wav", "chime.mp3"}, f.service.Tones())

	f.service.Shutdown(t.Context())
	require.Equal(t, 1, f.shutdowns)
}
