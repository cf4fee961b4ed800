// Package retry provides exponential backoff for rate-limited operations.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Config holds backoff configuration.
type Config struct {
	MaxAttempts int           // Attempt budget, including the first call
	BaseDelay   time.Duration // Delay before the first retry
	MaxDelay    time.Duration // Cap on the computed delay
}

// DefaultConfig returns sensible defaults for a management-API client.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// ExhaustedError is returned when every attempt in the budget was rate limited.
type ExhaustedError struct {
	Op       string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: exhausted %d retries: %v", e.Op, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Delay returns the backoff delay for a zero-based attempt number:
// min(base * 2^attempt, cap).
func (c Config) Delay(attempt int) time.Duration {
	d := c.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	if d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}

// Do invokes fn until it succeeds, fails with a non-retryable error, or the
// attempt budget runs out. retryable decides which errors trigger backoff;
// everything else propagates immediately. op names the operation (and entry)
// for the exhaustion error.
func Do(ctx context.Context, cfg Config, op string, retryable func(error) bool, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := cfg.Delay(attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return &ExhaustedError{Op: op, Attempts: cfg.MaxAttempts, Last: lastErr}
}

// DoWithResult is Do for operations that return a value.
func DoWithResult[T any](ctx context.Context, cfg Config, op string, retryable func(error) bool, fn func() (T, error)) (T, error) {
	var zero T
	var result T
	err := Do(ctx, cfg, op, retryable, func() error {
		var callErr error
		result, callErr = fn()
		return callErr
	})
	if err != nil {
		return zero, err
	}
	return result, nil
}
