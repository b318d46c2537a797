package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound marks lookups of identifiers the backend does not know.
// Wrapped by APIError for real 404s and returned directly by the mock.
var ErrNotFound = errors.New("not found")

// ValidationError reports a malformed or missing required parameter.
// It is raised before any I/O and is never retried.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// NewValidationError builds a ValidationError for a required parameter
func NewValidationError(param, reason string) error {
	return &ValidationError{Param: param, Reason: reason}
}

// RequireParam fails fast when a required identifier is empty
func RequireParam(value, name string) error {
	if value == "" {
		return NewValidationError(name, "required but was empty")
	}
	return nil
}

// TransientError reports a request that failed to reach or complete
// against the backend. Eligible for the fetcher's retry policy.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// APIError carries a non-2xx backend response. The message is the
// server-provided one when present, else a status-based fallback.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// DataShapeError reports a response body that is not valid JSON or is
// missing an expected field. Consumers degrade to an empty-result state
// rather than crashing.
type DataShapeError struct {
	Field string
	Err   error
}

func (e *DataShapeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed response: missing or invalid %q", e.Field)
	}
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *DataShapeError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether an error is worth retrying: network
// failures and server-side (5xx) statuses. Validation failures, client
// errors, and shape errors are terminal.
func IsRetryable(err error) bool {
	var transient *TransientError
	if errors.As(err, &transient) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}
