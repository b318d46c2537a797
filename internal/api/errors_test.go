package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireParam(t *testing.T) {
	assert.NoError(t, RequireParam("42", "comicId"))

	err := RequireParam("", "comicId")
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
	assert.Equal(t, "comicId", valErr.Param)
	assert.Contains(t, err.Error(), "comicId")
}

func TestAPIErrorMessage(t *testing.T) {
	withMsg := &APIError{StatusCode: 404, Message: "Comic not found"}
	assert.Equal(t, "Comic not found", withMsg.Error())

	withoutMsg := &APIError{StatusCode: http.StatusBadGateway}
	assert.Equal(t, "API error: 502 Bad Gateway", withoutMsg.Error())
}

func TestAPIErrorNotFound(t *testing.T) {
	err := error(&APIError{StatusCode: 404, Message: "Comic not found"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = &APIError{StatusCode: 500}
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transient network failure", &TransientError{Err: errors.New("connection refused")}, true},
		{"server error", &APIError{StatusCode: 503}, true},
		{"client error", &APIError{StatusCode: 400}, false},
		{"not found", &APIError{StatusCode: 404}, false},
		{"validation", NewValidationError("comicId", "required"), false},
		{"shape", &DataShapeError{Field: "comics"}, false},
		{"plain error", errors.New("whatever"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestTransientErrorUnwrap(t *testing.T) {
	inner := errors.New("dial tcp: timeout")
	err := &TransientError{Err: inner}
	assert.ErrorIs(t, err, inner)
}
