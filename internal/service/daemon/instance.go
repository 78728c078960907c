package daemon

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another alarmd owns the machine's audio.
var ErrAlreadyRunning = errors.New("another instance is already running")

// ensureSingleInstance fails when another process runs the same executable.
func ensureSingleInstance() error {
	self := os.Getpid()

	me, err := ps.FindProcess(self)
	if err != nil {
		return fmt.Errorf("inspect own process: %w", err)
	}

	if me == nil {
		return nil
	}

	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	for _, process := range processList {
		if process.Pid() == self || process.Executable() != me.Executable() {
			continue
		}

		return fmt.Errorf("%w: %s has pid %d", ErrAlreadyRunning, process.Executable(), process.Pid())
	}

	return nil
}
