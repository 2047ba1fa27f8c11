package judge

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"
)

// RetryConfig configures retries of failed judge calls.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt. 0 means
	// do not retry at all.
	MaxRetries int `yaml:"max_retries" json:"max_retries"`
	// BaseBackoff is doubled on every attempt, up to MaxBackoff.
	BaseBackoff time.Duration `yaml:"base_backoff" json:"base_backoff"`
	MaxBackoff  time.Duration `yaml:"max_backoff" json:"max_backoff"`
	// MaxJitter is the upper bound of random jitter added to each backoff.
	MaxJitter time.Duration `yaml:"max_jitter" json:"max_jitter"`
}

// Validate checks that the retry configuration has valid values.
func (c RetryConfig) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.BaseBackoff < 0 || c.MaxBackoff < 0 || c.MaxJitter < 0 {
		return errors.New("backoff durations cannot be negative")
	}
	return nil
}

// DefaultRetryConfig suits rate-limited hosted judges.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  3,
		BaseBackoff: time.Second,
		MaxBackoff:  30 * time.Second,
		MaxJitter:   500 * time.Millisecond,
	}
}

// IsRetryable treats everything except cancellation as transient. A
// per-call timeout is retried.
func IsRetryable(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// RetryWithBackoff runs fn until it succeeds, returns a non-retryable
// error, or runs out of retries. Backoff grows exponentially with jitter.
func RetryWithBackoff[T any](ctx context.Context, cfg RetryConfig, operation string, isRetryable func(error) bool, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}
		if !isRetryable(lastErr) {
			return result, lastErr
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		backoff := min(cfg.BaseBackoff<<attempt, cfg.MaxBackoff)
		var jitter time.Duration
		if cfg.MaxJitter > 0 {
			if n, err := rand.Int(rand.Reader, big.NewInt(int64(cfg.MaxJitter))); err == nil {
				jitter = time.Duration(n.Int64())
			}
		}

		slog.DebugContext(ctx, "retrying judge call",
			"operation", operation,
			"attempt", attempt+1,
			"max_retries", cfg.MaxRetries,
			"backoff", backoff+jitter,
			"error", lastErr)

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}

	return result, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, lastErr)
}

// WithRetry retries failed invocations of inv according to cfg.
func WithRetry(inv Invoker, operation string, cfg RetryConfig) Invoker {
	if cfg.MaxRetries <= 0 {
		return inv
	}
	return InvokerFunc(func(ctx context.Context, prompt string) (*Response, error) {
		retryable := func(err error) bool {
			return ctx.Err() == nil && IsRetryable(err)
		}
		return RetryWithBackoff(ctx, cfg, operation, retryable, func() (*Response, error) {
			return inv.Invoke(ctx, prompt)
		})
	})
}

// WithTimeout bounds each invocation of inv by d. A zero d disables it.
func WithTimeout(inv Invoker, d time.Duration) Invoker {
	if d <= 0 {
		return inv
	}
	return InvokerFunc(func(ctx context.Context, prompt string) (*Response, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		resp, err := inv.Invoke(ctx, prompt)
		if err == nil && ctx.Err() != nil {
			return nil, fmt.Errorf("judge timed out after %s: %w", d, ctx.Err())
		}
		return resp, err
	})
}
