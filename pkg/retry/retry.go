// Package retry wraps an operation with bounded retries and exponential
// backoff.
//
// Only failures carrying the NETWORK error code are retried; every other
// error propagates immediately on first occurrence, unmodified. The backoff
// schedule is backoffBase^attempt seconds, slept between attempts (never
// before the first and never after the last).
package retry

import (
	"context"
	"math"
	"time"

	"github.com/conango/conango/pkg/errors"
	"github.com/conango/conango/pkg/logging"
)

// Do runs fn up to attempts times. A network-kind failure triggers a sleep of
// backoffBase^attempt seconds and a logged warning with the attempt count;
// any other failure is returned immediately. After exhausting all attempts
// the last network failure is returned. attempts values below 1 are treated
// as 1. The sleep honors ctx cancellation and returns ctx.Err() when
// interrupted.
func Do(ctx context.Context, attempts int, backoffBase float64, logger *logging.Logger, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, errors.CodeNetwork) {
			return err
		}
		lastErr = err

		if attempt < attempts {
			delay := time.Duration(math.Pow(backoffBase, float64(attempt)) * float64(time.Second))
			if logger != nil {
				logger.Warnf("network failure on attempt %d/%d, retrying in %s: %s",
					attempt, attempts, delay.Round(time.Millisecond), errors.UserMessage(err))
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return lastErr
}
