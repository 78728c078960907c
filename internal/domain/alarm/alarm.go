package alarm

import (
	"fmt"

	"github.com/google/uuid"
)

// NoTonesAvailable is offered as the only tone when the sound directory is
// empty. It never names a playable resource.
const NoTonesAvailable = "No Sounds Available"

// Alarm is a scheduled time of day paired with the tone to ring.
// Alarms are values: once created they are never modified.
type Alarm struct {
	// ID identifies the alarm independently of how it is rendered.
	ID uuid.UUID
	// Time is the time of day the alarm rings at.
	Time TimeOfDay
	// Tone names the sound resource to play.
	Tone string
}

// New validates the tone and builds an alarm with a fresh identifier.
func New(at TimeOfDay, tone string) (Alarm, error) {
	if err := ValidateTone(tone); err != nil {
		return Alarm{}, err
	}

	return Alarm{
		ID:   uuid.New(),
		Time: at,
		Tone: tone,
	}, nil
}

// Matches reports whether the alarm has exactly the given time and tone.
func (a Alarm) Matches(at TimeOfDay, tone string) bool {
	return a.Time == at && a.Tone == tone
}

// String renders the alarm the way lists show it.
func (a Alarm) String() string {
	return fmt.Sprintf("Alarm at %s with tone %s", a.Time, a.Tone)
}

// ValidateTone rejects empty tones and the NoTonesAvailable sentinel.
func ValidateTone(tone string) error {
	if tone == "" || tone == NoTonesAvailable {
		return fmt.Errorf("%w: %q", ErrInvalidTone, tone)
	}

	return nil
}
