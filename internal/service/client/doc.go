// Package client implements the alarmctl commands: each one connects to
// alarmd, performs a single control request and renders the outcome.
package client
