package recommend

import (
	"errors"
	"fmt"
)

var (
	ErrNoCredential = errors.New("language model credential not configured on server")
	ErrEmptyPrompt  = errors.New("prompt is required")
	ErrNoProducts   = errors.New("no products to compare")
	ErrStopped      = errors.New("recommendation service stopped")
)

// StatusError is a non-success response from the model endpoint.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("model API error: %d", e.StatusCode)
	}
	return fmt.Sprintf("model API error: %d %s", e.StatusCode, e.Message)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// TransientError marks a failure that may succeed on retry.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string { return e.err.Error() }

func (e *TransientError) Unwrap() error { return e.err }

func transient(err error) error { return &TransientError{err: err} }

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}
