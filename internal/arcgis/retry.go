package arcgis

import (
	"context"
	"log"
	"time"
)

const retryAttempts = 3

// backoffDelay returns the exponential wait before retry n (0-based):
// 4s, 8s, capped at 10s.
func backoffDelay(attempt int) time.Duration {
	delay := 4 * time.Second << attempt
	if delay > 10*time.Second {
		delay = 10 * time.Second
	}
	return delay
}

// sleepFunc is injected so retry schedules are testable with a fake
// clock.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// withRetry runs op up to retryAttempts times with exponential backoff
// between failures.
func (c *Client) withRetry(ctx context.Context, label string, op func() error) error {
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			log.Printf("Retrying %s (attempt %d/%d): %v", label, attempt+1, retryAttempts, err)
			if sleepErr := c.sleep(ctx, backoffDelay(attempt-1)); sleepErr != nil {
				return sleepErr
			}
		}
		if err = op(); err == nil {
			return nil
		}
	}
	return err
}
