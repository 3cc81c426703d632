package installer

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoCandidates is returned when no known provider can supply any of the
// required capabilities.
var ErrNoCandidates = errors.New("no install candidates for required capabilities")

// UnavailableError reports that the package manager a command needs is not
// on the PATH.
type UnavailableError struct {
	Method Method
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("installer method %s is not available", e.Method)
}

// TimeoutError reports an installation that exceeded its deadline.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("installing %s timed out after %s", e.Provider, e.Timeout)
}

// FailedError reports an installation subprocess that exited non-zero.
type FailedError struct {
	Provider string
	ExitCode int
	Stderr   string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("installing %s failed with exit code %d: %s", e.Provider, e.ExitCode, e.Stderr)
}
