// ABOUTME: Error taxonomy for the conversation orchestrator
// ABOUTME: Validation failures abort a turn before any side effect

package chat

import "fmt"

// ValidationError marks caller mistakes (empty prompt, out-of-range
// edit index). The transport layer maps it to a client-error response;
// nothing is persisted for the turn.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
