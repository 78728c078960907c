// Package scheduler fires alarms: once per poll interval it compares the
// wall clock with the alarm store, removes what is due and starts its tone.
package scheduler
