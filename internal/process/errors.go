package process

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the process package.
var (
	// ErrProcessNotStarted is returned when operations require a started process.
	ErrProcessNotStarted = errors.New("process not started")

	// ErrProcessAlreadyStarted is returned when trying to start an already running process.
	ErrProcessAlreadyStarted = errors.New("process already started")

	// ErrProcessLimit is returned when a supervisor already runs its
	// maximum number of children.
	ErrProcessLimit = errors.New("process limit reached")

	// ErrSupervisorShutdown is returned when the supervisor is shutting down.
	ErrSupervisorShutdown = errors.New("supervisor is shutting down")
)

// SpawnError reports that an executable could not be launched.
type SpawnError struct {
	// Executable is the name or path that was requested.
	Executable string
	// Err is the underlying lookup or start error.
	Err error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Executable, e.Err)
}

// Unwrap returns the underlying error.
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError reports an exit status that Classify does not accept.
type ExitError struct {
	// ExitCode is the child's exit code, or -1 if it was killed by a signal.
	ExitCode int
	// Killed is set when a signal ended the child.
	Killed bool
	// Stderr is everything the child wrote to standard error.
	Stderr []byte
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	status := fmt.Sprintf("editor exited with code %d", e.ExitCode)
	if e.Killed {
		status = "editor was killed by a signal"
	}
	msg := strings.TrimSpace(string(e.Stderr))
	if msg == "" {
		return status
	}
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return status + ": " + msg
}
