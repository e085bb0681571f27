package metaclient

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned when the last attempt to fetch a document received
// an HTTP response with an unexpected status.
type StatusError struct {
	URL        string
	Status     string
	StatusCode int
	Attempts   int
}

func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("GET %s: unexpected status %s (%s)", e.URL, status, attempts(e.Attempts))
}

// TransportError is returned when the last attempt to fetch a document failed
// without receiving an HTTP response (connection failure, timeout, etc).
type TransportError struct {
	Err      error
	URL      string
	Attempts int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("GET %s: %v (%s)", e.URL, e.Err, attempts(e.Attempts))
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func attempts(n int) string {
	if n == 1 {
		return "1 attempt"
	}

	return fmt.Sprintf("%d attempts", n)
}

// StatusCode returns the HTTP status carried by err, if err is (or wraps) a
// *StatusError.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}

	return 0, false
}

// IsNotFound reports whether err is an HTTP 404 that was not tolerated by the
// client.
func IsNotFound(err error) bool {
	code, ok := StatusCode(err)

	return ok && code == http.StatusNotFound
}

// errAbsent marks a tolerated 404 inside the retry loop
var errAbsent = errors.New("metadata not present")
