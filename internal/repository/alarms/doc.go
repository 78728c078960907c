// Package alarms implements the in-memory alarm store.
//
// Store keeps scheduled alarms in insertion order behind a mutex so the
// scheduler and the control surface can share it.
package alarms
