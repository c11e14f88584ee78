// Package retry runs an operation under a bounded exponential backoff with
// jitter. The schedule is 2^attempt seconds plus up to one second of jitter;
// which errors deserve another attempt is decided by the caller's predicate.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultMaxAttempts is the total number of attempts, first call included.
const DefaultMaxAttempts = 5

// ErrExhausted is matched by every error returned after the attempt budget ran out.
var ErrExhausted = errors.New("max retries exceeded")

// ComputeDelay returns the wait before the retry that follows the given
// zero-based attempt: 2^attempt * 1s + jitter().
func ComputeDelay(attempt int, jitter func() time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := time.Duration(1<<uint(attempt)) * time.Second
	if jitter != nil {
		d += jitter()
	}
	return d
}

// UniformJitter draws uniformly from [0, 1s).
func UniformJitter() time.Duration {
	return time.Duration(rand.Int64N(int64(time.Second)))
}

// Schedule adapts ComputeDelay to backoff.BackOff. A Schedule is per call.
type Schedule struct {
	Jitter  func() time.Duration
	attempt int
}

func (s *Schedule) NextBackOff() time.Duration {
	d := ComputeDelay(s.attempt, s.Jitter)
	s.attempt++
	return d
}

func (s *Schedule) Reset() { s.attempt = 0 }

// Policy configures Do.
type Policy struct {
	// MaxAttempts defaults to DefaultMaxAttempts.
	MaxAttempts int
	// IsRetryable reports whether err warrants another attempt.
	// A nil predicate retries nothing.
	IsRetryable func(err error) bool
	// Jitter defaults to UniformJitter.
	Jitter func() time.Duration
	// Notify is called before each wait with the 1-based attempt that failed.
	Notify func(attempt int, err error, delay time.Duration)
	// Timer replaces the real timer; tests use it to skip the waits.
	Timer backoff.Timer
}

// ExhaustedError reports that every attempt failed with a retryable error.
// It matches ErrExhausted and unwraps to the last cause.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("max retries exceeded after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrExhausted, e.Err}
}

// Do runs op until it succeeds, returns a non-retryable error, the attempt
// budget is spent, or ctx is done. Non-retryable errors come back unchanged.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	jitter := p.Jitter
	if jitter == nil {
		jitter = UniformJitter
	}

	attempts := 0
	lastRetryable := false
	operation := func() error {
		attempts++
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastRetryable = false
		if ctx.Err() != nil || p.IsRetryable == nil || !p.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		lastRetryable = true
		return err
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(&Schedule{Jitter: jitter}, uint64(maxAttempts-1)),
		ctx,
	)
	notify := func(err error, d time.Duration) {
		if p.Notify != nil {
			p.Notify(attempts, err, d)
		}
	}

	err := backoff.RetryNotifyWithTimer(operation, b, notify, p.Timer)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(err, ctxErr) {
			return err
		}
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	if lastRetryable && attempts >= maxAttempts {
		return &ExhaustedError{Attempts: attempts, Err: err}
	}
	return err
}
