package ir

import "fmt"

// InternalError reports a violated compiler invariant: an IR shape a pass
// was not written for, a malformed edit request, or a stale handle. It is
// raised with panic and signals a compiler defect, never a user error.
type InternalError struct {
	Message string
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return "internal compiler error: " + e.Message
}

// InternalErrorf returns a formatted InternalError.
func InternalErrorf(format string, args ...interface{}) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}
