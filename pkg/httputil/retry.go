package httputil

import (
	"context"
	"errors"
	"time"
)

// MaxDelay caps the wait between two attempts, including server hints.
const MaxDelay = 30 * time.Second

// RetryableError marks a transient failure (network error, 5xx response)
// that [Retry] should attempt again. After, when positive, replaces the
// backoff delay for the next attempt; it carries a server's Retry-After hint.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn up to attempts times. Only errors wrapped in
// [RetryableError] are retried; anything else is returned at once. The delay
// doubles after every failure unless the error carries its own hint, and is
// never longer than [MaxDelay]. The last error is returned when attempts run
// out, ctx.Err() when ctx is cancelled while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var err error

	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		if re.After > 0 {
			wait = re.After
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(min(wait, MaxDelay)):
		}
		delay = min(delay*2, MaxDelay)
	}
	return err
}
