package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports a backend that cannot be reached.
var ErrUnavailable = errors.New("cache unavailable")

// RetryableError marks a failure worth retrying, such as a refused
// connection while a backend starts up.
type RetryableError struct{ Err error }

// Retryable wraps err as retryable. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is marked retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff controls [RetryWithBackoff].
type Backoff struct {
	Attempts int
	Initial  time.Duration
}

// DefaultBackoff tries three times, waiting 1s then 2s.
var DefaultBackoff = Backoff{Attempts: 3, Initial: time.Second}

// RetryWithBackoff calls fn until it succeeds, returns a non-retryable
// error, or the attempts run out. The delay doubles after every failure.
func RetryWithBackoff(ctx context.Context, b Backoff, fn func() error) error {
	if b.Attempts < 1 {
		b.Attempts = 1
	}
	delay := b.Initial
	var lastErr error
	for i := 0; i < b.Attempts; i++ {
		if lastErr = fn(); lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if i == b.Attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return lastErr
}
