package alarm

// Status describes what the alarm clock is doing right now.
type Status struct {
	// Ringing is true while a tone plays.
	Ringing bool
	// Tone is the ringing tone, empty when silent.
	Tone string
	// Now is the current time of day of the daemon.
	Now TimeOfDay
	// Scheduled is the number of pending alarms.
	Scheduled int
}
