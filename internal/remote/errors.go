// Package remote declares the gateway to the task-and-expense tracking
// service and the error returned when it cannot be reached.
package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError reports a transport failure or a non-success response.
type NetworkError struct {
	Op         string // e.g. "list tasks"
	StatusCode int    // 0 for transport failures
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
