package catmaid

import (
	"context"
	"errors"
	"time"
)

// retryableError wraps an error to indicate it should trigger a retry.
type retryableError struct{ err error }

// retryable wraps an error as retryable.
func retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// Error returns the error message of the wrapped error.
func (e *retryableError) Error() string { return e.err.Error() }

// Unwrap returns the wrapped error.
func (e *retryableError) Unwrap() error { return e.err }

// retryWithBackoff retries fn up to 3 times with exponential backoff.
// Only errors wrapped with retryable trigger retries.
func retryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := time.Second
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
