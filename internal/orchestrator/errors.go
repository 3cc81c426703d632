package orchestrator

import (
	"errors"
	"fmt"

	"conductor/internal/strategy"
)

// FailureKind classifies a request failure for the caller.
type FailureKind string

const (
	FailureNoCapableProviders FailureKind = "no-capable-providers"
	FailureTimeout            FailureKind = "timeout"
	FailureCancelled          FailureKind = "cancelled"
	FailureExecutor           FailureKind = "executor"
	FailureShuttingDown       FailureKind = "shutting-down"
)

// ErrNoCapableProviders is the underlying cause when no provider covers any
// required capability even after installation was attempted.
var ErrNoCapableProviders = errors.New("no capable providers for required capabilities")

// ErrShuttingDown is returned for requests submitted after shutdown began.
var ErrShuttingDown = errors.New("coordinator is shutting down")

// RequestError is the structured failure surfaced to callers: kind, the
// pattern in play when the failure happened (empty before planning), elapsed
// time and the underlying cause.
type RequestError struct {
	Kind      FailureKind
	Pattern   strategy.Pattern
	ElapsedMS int64
	Cause     error
}

func (e *RequestError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("%s (pattern %s, %dms): %v", e.Kind, e.Pattern, e.ElapsedMS, e.Cause)
	}
	return fmt.Sprintf("%s (%dms): %v", e.Kind, e.ElapsedMS, e.Cause)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}
