package util

import (
	"context"
	"fmt"
	"time"
)

// Retry calls fn up to maxAttempts times, doubling the delay between attempts
// starting from baseDelay. It returns nil on the first successful call. When
// every attempt fails, the last error is returned wrapped with the attempt
// count. The context is honored both before each attempt and during backoff.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= maxAttempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay << (attempt - 1)):
		}
	}
}
