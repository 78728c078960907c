package alarm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimeFormat is returned when a time is not HH:MM:SS.
	ErrInvalidTimeFormat = errors.New("invalid time format")
	// ErrInvalidTone is returned when a tone is empty or the NoTonesAvailable sentinel.
	ErrInvalidTone = errors.New("invalid tone")
	// ErrNotFound is returned when an alarm selection matches no stored alarm.
	ErrNotFound = errors.New("alarm not found")
	// ErrToneNotFound is returned when a tone names no sound resource.
	ErrToneNotFound = errors.New("tone not found")
	// ErrNoActiveAlarm is returned by snooze when nothing is ringing.
	ErrNoActiveAlarm = errors.New("no alarm is currently sounding")
	// ErrPlaybackFailure is wrapped by every PlaybackError.
	ErrPlaybackFailure = errors.New("playback failure")
)

// Kind groups errors by how the UI should treat them.
type Kind string

const (
	// KindValidation marks rejected user input.
	KindValidation Kind = "validation"
	// KindLookup marks references to things that do not exist (anymore).
	KindLookup Kind = "lookup"
	// KindPlayback marks failures of the audio capability.
	KindPlayback Kind = "playback"
	// KindInternal marks everything else.
	KindInternal Kind = "internal"
)

// PlaybackError reports that a tone could not be played.
type PlaybackError struct {
	// Tone is the tone that failed.
	Tone string
	// Reason is the underlying error of the audio capability.
	Reason error
}

// Error implements the error interface.
func (e *PlaybackError) Error() string {
	return fmt.Sprintf("%s: tone %q: %v", ErrPlaybackFailure, e.Tone, e.Reason)
}

// Unwrap exposes both ErrPlaybackFailure and the reason to errors.Is/As.
func (e *PlaybackError) Unwrap() []error {
	return []error{ErrPlaybackFailure, e.Reason}
}

// KindOf classifies err, or returns "" for a nil error.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTimeFormat), errors.Is(err, ErrInvalidTone):
		return KindValidation
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrToneNotFound), errors.Is(err, ErrNoActiveAlarm):
		return KindLookup
	case errors.Is(err, ErrPlaybackFailure):
		return KindPlayback
	default:
		return KindInternal
	}
}

// Reason returns a stable machine-readable name for the sentinel wrapped by
// err, suitable for crossing process boundaries.
func Reason(err error) string {
	for _, known := range reasons {
		if errors.Is(err, known.err) {
			return known.reason
		}
	}

	return "INTERNAL"
}

// FromReason maps a name produced by Reason back to its sentinel, or nil.
func FromReason(reason string) error {
	for _, known := range reasons {
		if known.reason == reason {
			return known.err
		}
	}

	return nil
}

//nolint:gochecknoglobals // Fixed lookup table.
var reasons = []struct {
	err    error
	reason string
}{
	{ErrInvalidTimeFormat, "INVALID_TIME_FORMAT"},
	{ErrInvalidTone, "INVALID_TONE"},
	{ErrNotFound, "NOT_FOUND"},
	{ErrToneNotFound, "TONE_NOT_FOUND"},
	{ErrNoActiveAlarm, "NO_ACTIVE_ALARM"},
	{ErrPlaybackFailure, "PLAYBACK_FAILURE"},
}
