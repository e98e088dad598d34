package providers

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/medscan-ai/medgate/types"
)

// RetryPolicy bounds the retry loop around a vendor call. Only
// transient failures (rate limit, 5xx, timeout) are retried; the
// backoff sleeps in the calling goroutine.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	Jitter       bool
}

// DefaultRetryPolicy matches the historical behavior: 3 attempts,
// 1s initial delay, doubling, with jitter in [0.5, 1.5).
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:  3,
	InitialDelay: time.Second,
	Multiplier:   2.0,
	Jitter:       true,
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as retryable. Adapters wrap rate-limit, 5xx and
// timeout failures with it before returning from the retried call.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Retry runs call up to policy.MaxAttempts times, backing off
// exponentially between transient failures. Non-transient errors
// return immediately. When the budget is exhausted the last error is
// surfaced as ErrProviderUnavailable.
func Retry(ctx context.Context, policy RetryPolicy, logger zerolog.Logger, call func(ctx context.Context) error) error {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy
	}
	delay := policy.InitialDelay
	var err error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err = call(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if attempt == policy.MaxAttempts {
			break
		}
		logger.Warn().
			Int("attempt", attempt).
			Dur("delay", delay).
			Err(err).
			Msg("transient provider failure, retrying")
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
		delay = time.Duration(float64(delay) * policy.Multiplier)
		if policy.Jitter {
			delay = time.Duration(float64(delay) * (0.5 + rand.Float64()))
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", types.ErrProviderUnavailable, policy.MaxAttempts, errors.Unwrap(err))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
