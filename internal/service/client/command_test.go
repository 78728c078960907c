package client

import (
	"bytes"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/service/alarmclock"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/service/playback"
	"github.com/oshokin/alarm-clock/internal/wallclock"
)

type bellOnly struct{}

func (bellOnly) Tones() []string { return []string{"bell.wav"} }

func (bellOnly) Has(tone string) bool { return tone == "bell.wav" }

func (bellOnly) Resolve(tone string) (string, error) {
	if tone != "bell.wav" {
		return "", domain.ErrToneNotFound
	}

	return "/sounds/bell.wav", nil
}

type silent struct{}

func (silent) Play(string) (io.Closer, error) { return io.NopCloser(nil), nil }

// startRunner serves a real service on loopback and returns a runner
// printing into the returned buffer.
func startRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()

	controller := playback.NewController(bellOnly{}, silent{})
	hub := events.NewHub(nil)
	svc := alarmclock.NewService(alarms.NewStore(), bellOnly{}, controller, wallclock.New(nil, time.UTC), alarmclock.Options{
		Hub: hub,
	})

	lis, err := new(net.ListenConfig).Listen(t.Context(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer()
	api.RegisterAlarmClockServer(srv, api.NewServer(svc, hub))

	go func() { _ = srv.Serve(lis) }()

	client, err := common.Dial(t.Context(), lis.Addr().String(), common.WithActor("tester@localhost"))
	require.NoError(t, err)

	var out bytes.Buffer

	runner := NewRunner(client, &out, time.UTC)

	t.Cleanup(func() {
		_ = runner.Close()

		srv.Stop()
		controller.Close()
	})

	return runner, &out
}

func TestRunner_Commands(t *testing.T) {
	t.Parallel()

	runner, out := startRunner(t)
	ctx := t.Context()

	require.NoError(t, runner.Add(ctx, "07:15:00", "bell.wav"))
	require.Contains(t, out.String(), "Alarm added successfully! Alarm at 07:15:00 with tone bell.wav")

	require.ErrorIs(t, runner.Add(ctx, "7:15", "bell.wav"), domain.ErrInvalidTimeFormat)
	require.ErrorIs(t, runner.Add(ctx, "07:15:00", "gong.wav"), domain.ErrToneNotFound)

	out.Reset()
	require.NoError(t, runner.List(ctx))

	line := strings.TrimSpace(out.String())
	require.True(t, strings.HasSuffix(line, "Alarm at 07:15:00 with tone bell.wav"), line)

	prefix := line[1 : 1+shortIDLength]

	out.Reset()
	require.NoError(t, runner.Tones(ctx))
	require.Equal(t, "bell.wav\n", out.String())

	out.Reset()
	require.NoError(t, runner.Export(ctx, "-"))
	require.Contains(t, out.String(), "BEGIN:VCALENDAR")

	path := filepath.Join(t.TempDir(), "alarms.ics")

	out.Reset()
	require.NoError(t, runner.Export(ctx, path))
	require.Equal(t, "Exported 1 alarm(s) to "+path+"\n", out.String())

	out.Reset()
	require.NoError(t, runner.Delete(ctx, prefix))
	require.Equal(t, "Alarm deleted successfully!\n", out.String())
	require.ErrorIs(t, runner.Delete(ctx, prefix), domain.ErrNotFound)

	out.Reset()
	require.NoError(t, runner.List(ctx))
	require.Equal(t, "No alarms scheduled\n", out.String())

	require.ErrorIs(t, runner.Snooze(ctx), domain.ErrNoActiveAlarm)

	out.Reset()
	require.NoError(t, runner.Stop(ctx))
	require.Equal(t, "Nothing is ringing\n", out.String())

	out.Reset()
	require.NoError(t, runner.Status(ctx))
	require.True(t, strings.HasPrefix(out.String(), "silent, 0 alarm(s) scheduled"), out.String())
}

func TestFormatEvent(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	a := domain.Alarm{Time: domain.MustParseTimeOfDay("07:00:00"), Tone: "bell.wav"}

	tests := []struct {
		ev   events.Event
		want string
	}{
		{events.Event{Type: events.TypeRinging, At: at, Alarm: &a}, "07:00:00 Alarm ringing at 07:00:00 with tone bell.wav!"},
		{events.Event{Type: events.TypeStopped, At: at, Tone: "bell.wav"}, "07:00:00 Alarm stopped (bell.wav)"},
		{events.Event{Type: events.TypeChanged, At: at, Count: 2}, "07:00:00 2 alarm(s) scheduled"},
		{
			events.Event{Type: events.TypeError, At: at, Kind: domain.KindPlayback, Message: "no device"},
			"07:00:00 playback error: no device",
		},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, FormatEvent(tt.ev, time.UTC))
	}
}
