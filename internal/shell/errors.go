package shell

import (
	"errors"
	"fmt"
)

// ErrTimeout marks a command that exceeded its deadline.
var ErrTimeout = errors.New("shell: command timed out")

// ExitError reports a command that ran but returned a non-zero status.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("shell: command exited with status %d", e.Code)
	}
	return fmt.Sprintf("shell: command exited with status %d: %s", e.Code, e.Stderr)
}

// TransportError reports a command that never ran: the subprocess could not
// be spawned or the connection to the gateway failed outright.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "shell: transport failure: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
