package executor

import (
	"context"
	"errors"
	"time"

	"github.com/UltimateTournament/backoff/v4"
	"github.com/satishbabariya/r2dbc-go/internal/debug"
	"github.com/satishbabariya/r2dbc-go/runtime/database"
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxAttempts   int           // Total attempts, 1 disables retries
	InitialDelay  time.Duration // Initial delay before first retry
	MaxDelay      time.Duration // Maximum delay between retries
	BackoffFactor float64       // Exponential backoff multiplier
	Jitter        bool          // Add randomness to delay
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// NoRetry runs every operation exactly once.
func NoRetry() RetryConfig { return RetryConfig{MaxAttempts: 1} }

func (c RetryConfig) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if c.InitialDelay > 0 {
		b.InitialInterval = c.InitialDelay
	}
	if c.MaxDelay > 0 {
		b.MaxInterval = c.MaxDelay
	}
	if c.BackoffFactor >= 1 {
		b.Multiplier = c.BackoffFactor
	}
	if !c.Jitter {
		b.RandomizationFactor = 0
	}
	b.MaxElapsedTime = 0

	retries := 0
	if c.MaxAttempts > 1 {
		retries = c.MaxAttempts - 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// permanent marks err as not retryable.
func permanent(err error) error { return backoff.Permanent(err) }

// retry runs attempt until it succeeds, fails with a non-transient or
// permanent error, or the attempts are used up. The last error is returned
// unwrapped.
func (e *Executor) retry(ctx context.Context, event *QueryEvent, attempt func() error) error {
	err := backoff.Retry(func() error {
		event.Attempts++
		err := attempt()
		if err == nil {
			return nil
		}
		var perm backoff.PermanentError
		if errors.As(err, &perm) {
			return err
		}
		if !database.IsTransient(e.adapter, err) {
			return permanent(err)
		}
		debug.Warn("transient failure", "execution", event.ID, "attempt", event.Attempts, "error", err)
		return err
	}, e.retryConfig.backOff(ctx))

	var perm backoff.PermanentError
	if errors.As(err, &perm) {
		return errors.Unwrap(perm)
	}
	return err
}
