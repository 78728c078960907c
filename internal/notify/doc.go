// Package notify relays alarm clock events to a NATS subject so other
// machines and dashboards can follow the daemon.
package notify
