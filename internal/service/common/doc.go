// Package common holds helpers shared by the daemon and its control tool.
//
// It provides a gRPC client of the control API with per-call timeouts that
// identifies the caller as user@host and hands back domain types and errors.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
