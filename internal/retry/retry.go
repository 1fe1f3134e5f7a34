// internal/retry/retry.go

// Package retry wraps transient network calls with a bounded, linearly
// backed-off retry loop. Whether an error is worth retrying is decided by the
// caller through the Retryable predicate; validation and auth failures must
// never come back true from it.
package retry

import (
	"context"
	"time"
)

// Config controls the retry loop.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int
	// BaseDelay is multiplied by the attempt number to produce the wait
	// before the next attempt (delay, 2*delay, ...).
	BaseDelay time.Duration
	// Retryable reports whether the loop should try again after err.
	// A nil predicate retries everything.
	Retryable func(error) bool
	// OnRetry, when set, observes each scheduled retry.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultConfig returns the policy used for API calls: three attempts with a
// linearly increasing delay between them.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
	}
}

// Do runs op until it succeeds, a non-retryable error occurs, the attempt
// budget is spent, or the context is canceled. The error from the final
// attempt is returned.
func Do(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if cfg.Retryable != nil && !cfg.Retryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.BaseDelay * time.Duration(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, lastErr)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
