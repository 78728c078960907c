package alarm

import (
	"fmt"
	"time"
)

// TimeLayout is the only accepted textual form of a TimeOfDay.
const TimeLayout = "15:04:05"

const (
	hoursPerDay      = 24
	minutesPerHour   = 60
	secondsPerMinute = 60
	secondsPerDay    = hoursPerDay * minutesPerHour * secondsPerMinute

	// timeOfDayLength is len("HH:MM:SS").
	timeOfDayLength = 8
)

// TimeOfDay is a wall-clock time of day with second resolution.
// The zero value is midnight.
type TimeOfDay struct {
	// seconds is the number of seconds elapsed since midnight, in [0, 86400).
	seconds int32
}

// NewTimeOfDay builds a TimeOfDay from its parts.
func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour >= hoursPerDay ||
		minute < 0 || minute >= minutesPerHour ||
		second < 0 || second >= secondsPerMinute {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d:%02d is out of range", ErrInvalidTimeFormat, hour, minute, second)
	}

	return TimeOfDay{seconds: int32(hour*minutesPerHour*secondsPerMinute + minute*secondsPerMinute + second)}, nil
}

// ParseTimeOfDay parses the strict HH:MM:SS form (24-hour, zero-padded).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != timeOfDayLength || s[2] != ':' || s[5] != ':' {
		return TimeOfDay{}, fmt.Errorf("%w: %q, use HH:MM:SS", ErrInvalidTimeFormat, s)
	}

	var parts [3]int

	for i := range parts {
		hi, lo := s[i*3], s[i*3+1]
		if !isDigit(hi) || !isDigit(lo) {
			return TimeOfDay{}, fmt.Errorf("%w: %q, use HH:MM:SS", ErrInvalidTimeFormat, s)
		}

		parts[i] = int(hi-'0')*10 + int(lo-'0')
	}

	return NewTimeOfDay(parts[0], parts[1], parts[2])
}

// MustParseTimeOfDay is like ParseTimeOfDay but panics on malformed input.
// It is meant for constants in tests and defaults.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}

	return t
}

// TimeOfDayOf extracts the time of day of t in t's location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	hour, minute, second := t.Clock()

	return TimeOfDay{seconds: int32(hour*minutesPerHour*secondsPerMinute + minute*secondsPerMinute + second)}
}

// Hour returns the hour in [0, 23].
func (t TimeOfDay) Hour() int { return int(t.seconds) / (minutesPerHour * secondsPerMinute) }

// Minute returns the minute in [0, 59].
func (t TimeOfDay) Minute() int { return int(t.seconds) / secondsPerMinute % minutesPerHour }

// Second returns the second in [0, 59].
func (t TimeOfDay) Second() int { return int(t.seconds) % secondsPerMinute }

// Add returns t shifted by d, wrapping around midnight.
// Sub-second parts of d are discarded.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	shifted := (int64(t.seconds) + int64(d/time.Second)) % secondsPerDay
	if shifted < 0 {
		shifted += secondsPerDay
	}

	return TimeOfDay{seconds: int32(shifted)}
}

// Since returns how far t lies after earlier, going forward around midnight.
// The result is in [0, 24h).
func (t TimeOfDay) Since(earlier TimeOfDay) time.Duration {
	gap := (int64(t.seconds) - int64(earlier.seconds) + secondsPerDay) % secondsPerDay

	return time.Duration(gap) * time.Second
}

// Next returns the first instant at or after from whose time of day is t,
// in from's location.
func (t TimeOfDay) Next(from time.Time) time.Time {
	year, month, day := from.Date()
	candidate := time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), 0, from.Location())

	if candidate.Before(from.Truncate(time.Second)) {
		candidate = time.Date(year, month, day+1, t.Hour(), t.Minute(), t.Second(), 0, from.Location())
	}

	return candidate
}

// String renders t as HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
