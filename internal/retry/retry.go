// Package retry provides a generic retry helper with exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/ORDEP81/ticketsight/internal/apperror"
)

// Policy holds retry configuration.
type Policy struct {
	MaxAttempts    int           // total attempts including the first; 0 = 1
	InitialBackoff time.Duration // delay before the second attempt
	MaxBackoff     time.Duration // backoff cap
	Timeout        time.Duration // overall budget across all attempts; 0 = none
}

// DefaultPolicy returns the detection retry defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    4, // initial attempt + 3 retries
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		Timeout:        5 * time.Second,
	}
}

// Backoff returns the delay to wait after the given zero-based attempt,
// doubling from InitialBackoff up to MaxBackoff.
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.InitialBackoff
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// Do invokes fn until it succeeds, the policy is exhausted, or ctx is done.
// The last error is wrapped with DETECTION_TIMEOUT when attempts or the
// overall timeout run out.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	if policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, policy.Timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(policy.Backoff(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return apperror.Internal(apperror.CodeDetectionTimeout, "retry budget exhausted", lastErr)
			case <-timer.C:
			}
		}

		if err := ctx.Err(); err != nil {
			return apperror.Internal(apperror.CodeDetectionTimeout, "retry budget exhausted", lastErr)
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
	}

	return apperror.Internal(apperror.CodeDetectionTimeout, "attempts exhausted", lastErr)
}
