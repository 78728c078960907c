// Package playback owns the ringing state of the alarm clock.
//
// Controller guarantees that at most one tone plays at a time, bounds how
// long a tone may ring, and releases audio resources on every exit path.
package playback
