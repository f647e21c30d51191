package planner

import (
	"context"
	"time"
)

const retryBackoff = 150 * time.Millisecond

// callWithRetry runs fn and repeats it up to retries extra times while the error is transient.
func callWithRetry(ctx context.Context, retries int, fn func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(time.Duration(attempt) * retryBackoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}
		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err
		if !isTransient(err) || ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}
