// Package export renders scheduled alarms as an iCalendar document, so they
// can be imported into a calendar application.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// ErrNothingToExport is returned by Write for an empty alarm list, which
// would not be a valid calendar.
var ErrNothingToExport = errors.New("no alarms to export")

// ProductID identifies the producer of exported calendars.
const ProductID = "-//oshokin//alarm-clock//EN"

// Calendar builds a calendar with one event per alarm, each at the next
// occurrence of its time of day after now in loc and carrying a display alarm.
func Calendar(alarms []domain.Alarm, now time.Time, loc *time.Location) *ical.Calendar {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	stamp := now.UTC()
	from := now.In(loc)

	for _, a := range alarms {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, a.ID.String())
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDateTime(ical.PropDateTimeStart, a.Time.Next(from).UTC())
		event.Props.SetText(ical.PropSummary, a.String())
		event.Props.SetText(ical.PropDescription, a.Tone)

		reminder := ical.NewComponent(ical.CompAlarm)
		reminder.Props.SetText(ical.PropAction, "DISPLAY")
		reminder.Props.SetText(ical.PropDescription, a.String())

		trigger := ical.NewProp(ical.PropTrigger)
		trigger.Value = "PT0S"
		reminder.Props.Set(trigger)

		event.Children = append(event.Children, reminder)
		cal.Children = append(cal.Children, event.Component)
	}

	return cal
}

// Write encodes the calendar of alarms to w.
func Write(w io.Writer, alarms []domain.Alarm, now time.Time, loc *time.Location) error {
	if len(alarms) == 0 {
		return ErrNothingToExport
	}

	if err := ical.NewEncoder(w).Encode(Calendar(alarms, now, loc)); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}

	return nil
}
