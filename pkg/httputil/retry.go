package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/tokenfolio/pkg/observability"
)

// Default retry policy: one initial attempt plus three retries, waiting
// 1s, 2s and 4s between them.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (no response, 429) with this type so that
// [Retrier.Do] knows to attempt the operation again.
//
// RetryAfter carries the server's Retry-After hint when one was sent. It is
// informational only and does not change the backoff schedule.
type RetryableError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retrier executes an operation with bounded exponential backoff.
//
// The zero value is usable and applies the default policy. Sleep and OnRetry
// are optional; tests replace Sleep to observe delays without waiting.
type Retrier struct {
	MaxRetries int           // Retries after the first attempt (0 means DefaultMaxRetries, <0 disables)
	BaseDelay  time.Duration // Delay before the first retry, doubled each time (0 means DefaultBaseDelay)

	// Sleep waits for d or until ctx is done. Defaults to [SleepContext].
	Sleep func(ctx context.Context, d time.Duration) error

	// OnRetry is invoked before each backoff wait with the number of the
	// attempt about to run (2, 3, ...).
	OnRetry func(attempt int, delay time.Duration, err error)
}

// NewRetrier returns a Retrier with the default policy.
func NewRetrier() *Retrier {
	return &Retrier{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

// Do invokes fn until it succeeds, fails with a non-retryable error, or the
// retry budget is spent. The delay before retry k+1 is BaseDelay * 2^k.
// ctx is checked before every attempt and interrupts backoff waits; in both
// cases ctx.Err() is returned.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	maxRetries, base := r.policy()
	sleep := r.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if lastErr = err; !IsRetryable(err) {
			return err
		}
		if attempt == maxRetries {
			break
		}

		delay := base << attempt
		observability.Retry().OnRetry(ctx, attempt+2, delay, err)
		if r.OnRetry != nil {
			r.OnRetry(attempt+2, delay, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	observability.Retry().OnGiveUp(ctx, maxRetries+1, lastErr)
	return lastErr
}

func (r *Retrier) policy() (int, time.Duration) {
	if r == nil {
		return DefaultMaxRetries, DefaultBaseDelay
	}
	maxRetries, base := r.MaxRetries, r.BaseDelay
	switch {
	case maxRetries == 0:
		maxRetries = DefaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}
	if base <= 0 {
		base = DefaultBaseDelay
	}
	return maxRetries, base
}

// RetryValue is [Retrier.Do] for operations that produce a value.
func RetryValue[T any](ctx context.Context, r *Retrier, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := r.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// IsRetryable reports whether err is marked as transient.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// RetryAfterHint returns the Retry-After hint carried by err, or zero.
func RetryAfterHint(err error) time.Duration {
	var re *RetryableError
	if errors.As(err, &re) {
		return re.RetryAfter
	}
	return 0
}

// SleepContext waits for d, returning ctx.Err() early if ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ParseRetryAfter parses a Retry-After header value given either as
// delta-seconds or as an HTTP date. Unparseable or past values yield zero.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
