package core

import (
	"fmt"
)

// ConfigurationError reports an invalid construction-time setup: a bad
// termination bound, an empty roster, duplicate agent names. It is fatal and
// surfaced before any turn executes.
type ConfigurationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// NewConfigurationError creates a ConfigurationError with a formatted reason.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// CapabilityError reports a failed agent invocation. The scheduler does not
// retry: the agent may already have performed side effects (e.g. a tool
// call), so the run is aborted and the error surfaced with the transcript
// recorded so far intact.
type CapabilityError struct {
	Agent string
	Err   error
}

// Error implements the error interface.
func (e *CapabilityError) Error() string {
	return fmt.Sprintf("agent %s failed: %v", e.Agent, e.Err)
}

// Unwrap exposes the underlying agent error for errors.Is/As.
func (e *CapabilityError) Unwrap() error { return e.Err }

// CancelledError reports cooperative cancellation observed at a turn
// boundary. It is a first-class outcome distinct from normal completion, not
// a corruption: all messages from completed turns remain recorded.
type CancelledError struct {
	Err error // the context error that triggered cancellation
}

// Error implements the error interface.
func (e *CancelledError) Error() string {
	return fmt.Sprintf("run cancelled: %v", e.Err)
}

// Unwrap exposes the context error (context.Canceled or DeadlineExceeded).
func (e *CancelledError) Unwrap() error { return e.Err }

// StalledError is the defensive fatal condition raised when the scheduler
// detects that no termination can ever fire: a bounded number of consecutive
// rounds produced zero context growth.
type StalledError struct {
	Rounds int
}

// Error implements the error interface.
func (e *StalledError) Error() string {
	return fmt.Sprintf("scheduler stalled: %d consecutive rounds without context growth", e.Rounds)
}
