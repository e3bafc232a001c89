// Package retry runs short-lived operations with capped exponential backoff.
// It serves one-shot reads outside the rotation cadence; the rotation loop
// itself never retries in place, its tick schedule is the retry.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Retryable decides whether a failed attempt is worth repeating.
type Retryable func(err error) bool

// Policy bounds the attempts and the waits between them. The delay doubles
// after every failed attempt up to MaxDelay.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	OnRetry      func(attempt int, err error, next time.Duration)
}

// Do runs op until it succeeds, fails non-retryably, exhausts MaxAttempts, or
// the context ends. A non-retryable failure is returned unwrapped so callers
// can inspect it directly.
func Do[T any](ctx context.Context, p Policy, retryable Retryable, op func() (T, error)) (T, error) {
	var zero T
	delay := p.InitialDelay

	for attempt := 1; ; attempt++ {
		val, err := op()
		if err == nil {
			return val, nil
		}
		if !retryable(err) {
			return zero, err
		}
		if attempt >= p.MaxAttempts {
			return zero, fmt.Errorf("failed after %d attempts: %w", attempt, err)
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, fmt.Errorf("retry interrupted: %w", ctx.Err())
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
}
