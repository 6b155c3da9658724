package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks failures reaching the provider: DNS, refused connections, timeouts.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedResponse marks a success status whose body lacks the expected fields.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrEmptyResponse marks a well formed response without usable text.
	ErrEmptyResponse = errors.New("empty response")
	ErrNoCallFunc    = errors.New("model has no call function")
)

// StatusError is returned when the provider answers with a non-success status.
// ErrorMessage holds the raw diagnostic text sent by the provider.
type StatusError struct {
	StatusCode   int
	Status       string
	ErrorMessage string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("status: %s, code: %d, error: %s", e.Status, e.StatusCode, e.ErrorMessage)
}

// TransportError wraps the underlying network error so callers can match ErrTransport.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}
