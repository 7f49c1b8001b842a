// Package retry runs an operation again after a failure, a bounded number of
// times, waiting between attempts as the Policy dictates.
package retry

import (
	"context"
	"time"
)

// DefaultDelay is the pause between attempts used by FetchWithRetry.
const DefaultDelay = time.Second

// Policy bounds how often and how patiently an operation is retried.
// Every error consumes one retry; there is no notion of a permanent error.
type Policy struct {
	// Retries is the number of extra attempts after the first one.
	// Negative values behave like zero.
	Retries int
	// Delay returns the pause before retry number attempt (1-based).
	// A nil Delay retries immediately.
	Delay func(attempt int) time.Duration
}

// Fixed returns a policy that waits the same delay before every retry.
func Fixed(retries int, delay time.Duration) Policy {
	return Policy{
		Retries: retries,
		Delay:   func(int) time.Duration { return delay },
	}
}

// Do calls op until it succeeds or the policy is exhausted, returning the
// first success or the last failure. If ctx is done while waiting between
// attempts, Do stops and returns ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	retries := max(p.Retries, 0)

	for attempt := 0; ; attempt++ {
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}

		if attempt >= retries {
			return res, err
		}

		if err := wait(ctx, p.delay(attempt+1)); err != nil {
			var zero T
			return zero, err
		}
	}
}

// FetchWithRetry is Do with a fixed one second delay.
func FetchWithRetry[T any](ctx context.Context, op func(ctx context.Context) (T, error), retries int) (T, error) {
	return Do(ctx, Fixed(retries, DefaultDelay), op)
}

func (p Policy) delay(attempt int) time.Duration {
	if p.Delay == nil {
		return 0
	}

	return p.Delay(attempt)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
