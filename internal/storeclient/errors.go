package storeclient

import (
	"errors"
	"fmt"
	"net/http"

	"taskboard/pkg/circuitbreaker"
	"taskboard/pkg/util"
)

// TransportError is a network or HTTP failure talking to the task store.
type TransportError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("task store %s: %s %s returned %d", e.Op, e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("task store %s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same call may succeed.
func (e *TransportError) Retryable() bool {
	if e.StatusCode != 0 {
		return retryableStatus(e.StatusCode)
	}
	if errors.Is(e.Err, circuitbreaker.ErrOpen) {
		return true
	}
	retryable, _ := util.IsRetryableError(e.Err)
	return retryable
}

// NotFound reports a 404 from the store.
func (e *TransportError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}
