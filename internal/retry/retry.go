// Package retry wraps remote operations with bounded retries, exponential
// backoff and a hard per-attempt timeout.
package retry

import (
	"context"
	"time"
)

// Default policy for remote scan calls.
const (
	DefaultAttempts       = 3
	DefaultBaseDelay      = time.Second
	DefaultAttemptTimeout = 5 * time.Second
)

// Options configures a retried operation. Backoff is pure exponential
// (base * 2^attempt) with no jitter; a fleet-wide deployment should add
// jitter before pointing many devices at one backend.
type Options struct {
	Attempts       int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Attempts <= 0 {
		o.Attempts = DefaultAttempts
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = DefaultAttemptTimeout
	}
	return o
}

// Do runs op until it succeeds or attempts are exhausted. Each attempt runs
// under its own timeout; a timed-out attempt counts as a failure. It returns
// the result, the number of retries that were needed (0 when the first
// attempt succeeded), and the final attempt's error unchanged when all
// attempts fail.
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts Options) (T, int, error) {
	opts = opts.withDefaults()

	var zero T
	var lastErr error
	for attempt := 0; attempt < opts.Attempts; attempt++ {
		if attempt > 0 {
			delay := opts.BaseDelay * (1 << (attempt - 1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, attempt, ctx.Err()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, opts.AttemptTimeout)
		result, err := op(attemptCtx)
		cancel()
		if err == nil {
			return result, attempt, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, attempt, ctx.Err()
		}
	}
	return zero, opts.Attempts - 1, lastErr
}
