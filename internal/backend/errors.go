package backend

import (
	"errors"
	"fmt"
)

// RequestFailure is returned for every way a generate call can fail:
// transport errors, non-2xx statuses and bodies that are not usable JSON.
type RequestFailure struct {
	Op     string // "send", "status", "read", "decode"
	URL    string
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (e *RequestFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend %s %s: status %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("backend %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *RequestFailure) Unwrap() error {
	return e.Err
}

// IsRequestFailure reports whether err is (or wraps) a RequestFailure.
func IsRequestFailure(err error) bool {
	var rf *RequestFailure
	return errors.As(err, &rf)
}
