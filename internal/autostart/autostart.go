// Package autostart registers alarmd to start when the user logs in.
package autostart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"

	"github.com/oshokin/alarm-clock/internal/logger"
)

const (
	appName        = "alarmd"
	appDisplayName = "Alarm Clock"
)

// Entry is the login autostart entry of alarmd.
type Entry struct {
	app *autostart.App
}

// New describes an entry that runs the current executable with the given
// settings file. An empty configPath leaves the daemon on its defaults.
func New(configPath string) (*Entry, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}

	if configPath != "" {
		configPath, err = filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("resolve settings path: %w", err)
		}
	}

	return newEntry(exe, configPath), nil
}

func newEntry(exe, configPath string) *Entry {
	command := []string{exe}
	if configPath != "" {
		command = append(command, "--config", configPath)
	}

	return &Entry{
		app: &autostart.App{
			Name:        appName,
			DisplayName: appDisplayName,
			Exec:        command,
		},
	}
}

// Command returns the command line the entry starts.
func (e *Entry) Command() []string {
	return e.app.Exec
}

// Enabled reports whether the entry is registered.
func (e *Entry) Enabled() bool {
	return e.app.IsEnabled()
}

// Enable registers the entry; registering twice is a no-op.
func (e *Entry) Enable(ctx context.Context) error {
	if e.app.IsEnabled() {
		logger.Info(ctx, "Autostart already enabled")

		return nil
	}

	if err := e.app.Enable(); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	logger.InfoKV(ctx, "Autostart enabled", "command", e.app.Exec)

	return nil
}

// Disable removes the entry; removing a missing entry is a no-op.
func (e *Entry) Disable(ctx context.Context) error {
	if !e.app.IsEnabled() {
		logger.Info(ctx, "Autostart already disabled")

		return nil
	}

	if err := e.app.Disable(); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}

	logger.Info(ctx, "Autostart disabled")

	return nil
}
