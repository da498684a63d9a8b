package provider

import (
	"context"
	"time"
)

// RetryPolicy retries an operation with exponential backoff. One policy is
// shared by the token exchange and every API call; what differs is only the
// operation being wrapped.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Retryable decides which errors are worth another attempt. Defaults to
	// IsRetryable.
	Retryable func(error) bool
	// Sleep is replaceable in tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy matches the provider's observed rate-limit behavior:
// three attempts, one second base delay, doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Do runs op, retrying retryable failures until the attempt ceiling is
// reached. The last error is surfaced to the caller once the ceiling is
// exceeded.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	delay := p.BaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		err = op()
		if err == nil || !retryable(err) || attempt >= attempts {
			return err
		}
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
		delay *= 2
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
