package placeholder

import (
	"errors"
	"fmt"
)

var (
	// ErrHTTPStatus matches any *HTTPError.
	ErrHTTPStatus = errors.New("unsuccessful HTTP status")

	// ErrDecode matches any *DecodeError.
	ErrDecode = errors.New("decode response")
)

// HTTPError reports a response whose status is outside the 2xx range.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}

	return fmt.Sprintf("%s %s: unexpected status: %s", e.Method, e.URL, status)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// DecodeError reports a 2xx response whose body is not the expected JSON shape.
type DecodeError struct {
	URL   string
	Cause error
}

func (e *DecodeError) Error() string {
	msg := "decode response"
	if e.URL != "" {
		msg += " from " + e.URL
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
