// Package version exposes build metadata of alarmd and alarmctl.
//
// Version, Commit and BuildTime are injected with -ldflags at build time and
// keep their placeholder values in local builds.
package version
