package infra

import (
	"context"
	"errors"
	"time"
)

// RetryConfig holds the retry policy for one request: a fixed number of
// retries with a fixed delay between attempts. OnRetry is told each retry
// count (1-based) before the delay, so the user can be shown a countdown.
type RetryConfig struct {
	MaxRetries int
	Delay      time.Duration
	OnRetry    func(attempt, max int)
}

// DefaultRetryConfig returns the policy used for inference requests.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		Delay:      time.Second,
	}
}

// WithRetry runs fn once plus up to cfg.MaxRetries more times on failure.
// Context cancellation ends retrying immediately, both when fn reports it
// and during the delay.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	var lastErr error

	for retry := 0; ; retry++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if retry == cfg.MaxRetries {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(retry+1, cfg.MaxRetries)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Delay):
		}
	}

	return lastErr
}
