// Package wallclock supplies the current wall-clock time of day.
package wallclock

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Source reads the time of day from a clock in a fixed location.
type Source struct {
	// clock provides instants, tickers and timers.
	clock clockwork.Clock
	// location is the zone alarm times are expressed in.
	location *time.Location
}

// New returns a Source over clock. A nil clock means the real clock and a
// nil location means the local zone.
func New(clock clockwork.Clock, location *time.Location) *Source {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	if location == nil {
		location = time.Local
	}

	return &Source{
		clock:    clock,
		location: location,
	}
}

// Now returns the current time of day.
func (s *Source) Now() alarm.TimeOfDay {
	return alarm.TimeOfDayOf(s.Time())
}

// Time returns the current instant in the source's location.
func (s *Source) Time() time.Time {
	return s.clock.Now().In(s.location)
}

// Clock exposes the underlying clock for tickers and timers.
func (s *Source) Clock() clockwork.Clock {
	return s.clock
}
