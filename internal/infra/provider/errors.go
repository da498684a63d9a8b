package provider

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingCredentials is a configuration error: fatal, never retried.
	ErrMissingCredentials = errors.New("provider: client id and secret are required")
	// ErrNotFound maps the provider's 404 responses.
	ErrNotFound = errors.New("provider: resource not found")
)

// APIError is a non-2xx response from the inventory provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider: status %d: %s", e.StatusCode, e.Body)
}

// IsRateLimited reports whether the error is the provider's rate-limit
// signal.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsRetryable classifies errors for the shared retry policy: rate limits and
// transient transport/server failures retry, business errors do not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingCredentials) || errors.Is(err, ErrNotFound) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	// Anything that never produced an HTTP status is treated as a transient
	// network failure.
	return true
}
