package backend

import (
	"errors"
	"fmt"
)

const (
	GenericErrorMessage     = "An error occurred"
	UnreachableErrorMessage = "Unable to connect to server. Please check your connection."
)

// APIError is returned when the backend answered with a non-2xx status.
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %s: status %d: %s", e.Op, e.StatusCode, e.Detail)
}

// UnreachableError wraps transport failures, including client timeouts.
type UnreachableError struct {
	Op  string
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("backend: %s: %v", e.Op, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// UserMessage renders err the way the booking page shows backend failures.
// The second result is false when err did not come from this package.
func UserMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail, true
	}
	var unreachable *UnreachableError
	if errors.As(err, &unreachable) {
		return UnreachableErrorMessage, true
	}
	return "", false
}
