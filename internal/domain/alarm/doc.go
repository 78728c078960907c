// Package alarm contains core domain types for the alarm clock.
//
// It defines TimeOfDay (a wall-clock time with second resolution and no
// date), Alarm (a scheduled time paired with a tone) and the error taxonomy
// shared by the store, the playback controller and the transport.
package alarm
