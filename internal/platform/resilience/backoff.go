package resilience

import (
	"context"
	"math/rand"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// ErrRateLimitExceeded marks errors returned when the retry budget ran out
// while the provider was still rejecting requests for rate limiting.
var ErrRateLimitExceeded = crerr.New("rate limit budget exhausted")

type rateLimitedError struct {
	err        error
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string { return e.err.Error() }
func (e *rateLimitedError) Unwrap() error { return e.err }

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// MarkRateLimited flags err as a provider rate-limit rejection. retryAfter <= 0
// means the provider gave no hint and exponential backoff applies instead.
func MarkRateLimited(err error, retryAfter time.Duration) error {
	if err == nil {
		return nil
	}
	return &rateLimitedError{err: err, retryAfter: retryAfter}
}

// MarkTransient flags err as retryable (5xx, connection failures).
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

func IsRateLimited(err error) bool {
	var target *rateLimitedError
	return crerr.As(err, &target)
}

func IsTransient(err error) bool {
	var target *transientError
	return crerr.As(err, &target)
}

type RetrierConfig struct {
	MaxAttempts int
	BaseSleep   time.Duration
	MaxSleep    time.Duration
}

func DefaultRetrierConfig() RetrierConfig {
	return RetrierConfig{
		MaxAttempts: 8,
		BaseSleep:   time.Second,
		MaxSleep:    60 * time.Second,
	}
}

// Retrier runs an operation under a bounded retry budget. The operation
// classifies its own failures via MarkRateLimited and MarkTransient; anything
// unmarked propagates immediately.
type Retrier struct {
	maxAttempts int
	baseSleep   time.Duration
	maxSleep    time.Duration

	jitter func() float64
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewRetrier(cfg RetrierConfig) *Retrier {
	defaults := DefaultRetrierConfig()
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.BaseSleep <= 0 {
		cfg.BaseSleep = defaults.BaseSleep
	}
	if cfg.MaxSleep < cfg.BaseSleep {
		cfg.MaxSleep = defaults.MaxSleep
	}

	return &Retrier{
		maxAttempts: cfg.MaxAttempts,
		baseSleep:   cfg.BaseSleep,
		maxSleep:    cfg.MaxSleep,
		jitter:      rand.Float64,
		sleep:       sleepContext,
	}
}

func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		var rateLimited *rateLimitedError
		var transient *transientError
		switch {
		case crerr.As(err, &rateLimited):
			if attempt >= r.maxAttempts {
				return crerr.Mark(
					crerr.Wrapf(rateLimited.err, "giving up after %d attempts", attempt),
					ErrRateLimitExceeded,
				)
			}
			wait := rateLimited.retryAfter
			if wait <= 0 {
				wait = r.backoff(attempt)
			}
			if sleepErr := r.sleep(ctx, wait); sleepErr != nil {
				return sleepErr
			}
		case crerr.As(err, &transient):
			if attempt >= r.maxAttempts {
				return transient.err
			}
			if sleepErr := r.sleep(ctx, r.backoff(attempt)); sleepErr != nil {
				return sleepErr
			}
		default:
			return err
		}
	}
}

// backoff doubles per attempt capped at maxSleep, with +/-30% jitter so
// restarted batches do not re-align on the provider's rate limiter.
func (r *Retrier) backoff(attempt int) time.Duration {
	wait := r.baseSleep << uint(attempt-1)
	if wait > r.maxSleep || wait <= 0 {
		wait = r.maxSleep
	}
	scaled := float64(wait) * (0.7 + 0.6*r.jitter())
	return time.Duration(scaled)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
