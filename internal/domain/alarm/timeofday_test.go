package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestParseTimeOfDay_Valid checks that well-formed inputs parse and render back unchanged.
func TestParseTimeOfDay_Valid(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"00:00:00", "00:00:05", "07:30:15", "23:59:59"} {
		got, err := ParseTimeOfDay(s)
		require.NoError(t, err, s)
		require.Equal(t, s, got.String())
	}

	got := MustParseTimeOfDay("13:04:59")
	require.Equal(t, 13, got.Hour())
	require.Equal(t, 4, got.Minute())
	require.Equal(t, 59, got.Second())
}

// TestParseTimeOfDay_Malformed verifies every malformed input fails with ErrInvalidTimeFormat.
func TestParseTimeOfDay_Malformed(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"",
		"9:00",
		"9:00:00",
		"09:00",
		"25:61:00",
		"24:00:00",
		"12:60:00",
		"12:00:60",
		"12-00-00",
		"ab:cd:ef",
		" 12:00:00",
		"12:00:00 ",
		"+1:00:00",
	} {
		_, err := ParseTimeOfDay(s)
		require.ErrorIs(t, err, ErrInvalidTimeFormat, s)
	}
}

// TestTimeOfDay_Add checks forward and backward shifts, including wrap around midnight.
func TestTimeOfDay_Add(t *testing.T) {
	t.Parallel()

	require.Equal(t, "00:05:00", MustParseTimeOfDay("00:00:00").Add(5*time.Minute).String())
	require.Equal(t, "00:04:59", MustParseTimeOfDay("23:59:59").Add(5*time.Minute).String())
	require.Equal(t, "23:59:59", MustParseTimeOfDay("00:00:00").Add(-time.Second).String())
	require.Equal(t, "12:00:00", MustParseTimeOfDay("12:00:00").Add(24*time.Hour).String())
}

// TestTimeOfDay_Since measures forward distance, wrapping around midnight.
func TestTimeOfDay_Since(t *testing.T) {
	t.Parallel()

	require.Equal(t, 2*time.Second, MustParseTimeOfDay("00:00:07").Since(MustParseTimeOfDay("00:00:05")))
	require.Equal(t, 2*time.Second, MustParseTimeOfDay("00:00:01").Since(MustParseTimeOfDay("23:59:59")))
	require.Zero(t, MustParseTimeOfDay("12:00:00").Since(MustParseTimeOfDay("12:00:00")))
	require.Equal(t, 24*time.Hour-time.Second, MustParseTimeOfDay("12:00:00").Since(MustParseTimeOfDay("12:00:01")))
}

// TestTimeOfDayOf extracts the clock part of a full timestamp.
func TestTimeOfDayOf(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 1, 6, 45, 30, 999, time.UTC)
	require.Equal(t, MustParseTimeOfDay("06:45:30"), TimeOfDayOf(ts))
}

// TestTimeOfDay_Next covers the same-day and next-day cases.
func TestTimeOfDay_Next(t *testing.T) {
	t.Parallel()

	from := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.Equal(t, time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC), MustParseTimeOfDay("18:00:00").Next(from))
	require.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), MustParseTimeOfDay("12:00:00").Next(from))
	require.Equal(t, time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC), MustParseTimeOfDay("06:00:00").Next(from))
}
