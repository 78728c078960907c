package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

func TestWrite(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	later, err := domain.New(domain.MustParseTimeOfDay("09:15:00"), "bell.wav")
	require.NoError(t, err)

	// Already past today, so it lands on tomorrow.
	earlier, err := domain.New(domain.MustParseTimeOfDay("06:30:00"), "chime.mp3")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []domain.Alarm{later, earlier}, now, time.UTC))

	require.Contains(t, buf.String(), "PRODID:"+ProductID)

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)

	wantStart := []time.Time{
		time.Date(2024, 6, 1, 9, 15, 0, 0, time.UTC),
		time.Date(2024, 6, 2, 6, 30, 0, 0, time.UTC),
	}

	for i, a := range []domain.Alarm{later, earlier} {
		ev := events[i]

		require.Equal(t, a.ID.String(), ev.Props.Get(ical.PropUID).Value)
		require.Equal(t, a.Tone, ev.Props.Get(ical.PropDescription).Value)

		start, err := ev.DateTimeStart(time.UTC)
		require.NoError(t, err)
		require.True(t, wantStart[i].Equal(start), "start %s, want %s", start, wantStart[i])

		require.Len(t, ev.Children, 1)
		require.Equal(t, ical.CompAlarm, ev.Children[0].Name)
	}
}

func TestWrite_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.ErrorIs(t, Write(&buf, nil, time.Now(), nil), ErrNothingToExport)
	require.Zero(t, buf.Len())
}
