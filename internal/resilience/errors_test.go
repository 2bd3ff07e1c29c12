package resilience

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(NewTransientError(assert.AnError, 503)))
	assert.True(t, IsTransient(fmt.Errorf("outer: %w", NewTransientError(assert.AnError, 0))))
	assert.True(t, IsTransient(errors.New("request failed: rate limit exceeded")))
	assert.True(t, IsTransient(errors.New("api overloaded, try again")))

	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("invalid request body")))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{http.StatusOK, http.StatusBadRequest,
		http.StatusUnauthorized, http.StatusNotFound} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := NewTransientError(inner, 0)
	assert.ErrorIs(t, err, inner)
}
