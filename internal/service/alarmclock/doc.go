// Package alarmclock implements the user-facing operations of the alarm
// clock on top of the store, the playback controller and the wall clock:
// add, delete, snooze, stop, listing and shutdown.
package alarmclock
