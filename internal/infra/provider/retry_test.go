package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestDoRetriesRateLimitWithDoubling(t *testing.T) {
	var delays []time.Duration
	policy := RetryPolicy{MaxAttempts: 4, BaseDelay: time.Second, Sleep: noSleep(&delays)}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &APIError{StatusCode: http.StatusTooManyRequests, Body: "slow down"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestDoSurfacesErrorAfterCeiling(t *testing.T) {
	var delays []time.Duration
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Sleep: noSleep(&delays)}

	calls := 0
	rateLimited := &APIError{StatusCode: http.StatusTooManyRequests, Body: "nope"}
	err := policy.Do(context.Background(), func() error {
		calls++
		return rateLimited
	})

	assert.Equal(t, 3, calls)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestDoDoesNotRetryBusinessErrors(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second, Sleep: func(context.Context, time.Duration) error {
		t.Fatal("must not sleep for a non-retryable error")
		return nil
	}}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return ErrNotFound
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsRetryableClassification(t *testing.T) {
	assert.True(t, IsRetryable(&APIError{StatusCode: 429}))
	assert.True(t, IsRetryable(&APIError{StatusCode: 503}))
	assert.True(t, IsRetryable(errors.New("connection reset")), "transport errors are transient")
	assert.False(t, IsRetryable(&APIError{StatusCode: 400}))
	assert.False(t, IsRetryable(ErrNotFound))
	assert.False(t, IsRetryable(ErrMissingCredentials))
	assert.False(t, IsRetryable(nil))
}
