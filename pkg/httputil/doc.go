// Package httputil provides the retry executor used by the market data
// gateway.
//
// # Retry
//
// [Retrier] wraps a fallible operation with bounded exponential backoff:
//
//   - at most DefaultMaxRetries (3) retries, so 4 attempts in total
//   - delays of BaseDelay * 2^k before retry k+1: 1s, 2s, 4s by default
//   - only errors wrapped in [RetryableError] are retried
//   - anything else is returned immediately, without waiting
//
// Usage:
//
//	r := httputil.NewRetrier()
//	err := r.Do(ctx, func(ctx context.Context) error {
//	    resp, err := client.Do(req.WithContext(ctx))
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// The caller decides what is transient. The gateway marks transport failures
// (no response at all) and HTTP 429 as retryable; 404 and every other status
// are terminal.
//
// # Cancellation
//
// The context is checked before each attempt and interrupts backoff waits.
// A cancelled context ends the loop with ctx.Err(). Per-attempt timeouts are
// the HTTP client's business and are independent of the backoff.
package httputil
