// Package daemon assembles and runs alarmd: the tone catalog, the alarm
// store, the scheduler, playback, the gRPC control API and the optional
// metrics endpoint and NATS relay.
package daemon
