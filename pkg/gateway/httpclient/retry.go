package httpclient

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Defaults for calls against the remote patient API.
const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 300 * time.Millisecond
	DefaultMaxDelay    = 4 * time.Second
)

// DefaultRetriableStatuses are the HTTP statuses treated as transient.
var DefaultRetriableStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusServiceUnavailable,
}

// RetryPolicy bounds the attempts made for a single request.
type RetryPolicy struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	RetriableStatuses []int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       DefaultMaxAttempts,
		BaseDelay:         DefaultBaseDelay,
		MaxDelay:          DefaultMaxDelay,
		RetriableStatuses: append([]int(nil), DefaultRetriableStatuses...),
	}
}

// Backoff returns the delay to wait after the given failed attempt (1-based)
// before making the next one: BaseDelay doubled per attempt, capped at MaxDelay.
// A non-positive MaxDelay falls back to DefaultMaxDelay.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	delay := p.BaseDelay
	if delay <= 0 {
		return 0
	}
	for i := 1; i < attempt && delay < maxDelay; i++ {
		delay *= 2
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

// RetriableStatus reports whether an HTTP status code should be retried.
func (p RetryPolicy) RetriableStatus(code int) bool {
	for _, s := range p.RetriableStatuses {
		if s == code {
			return true
		}
	}
	return false
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the wall-clock Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type retriableError struct {
	err error
}

func (e *retriableError) Error() string { return e.err.Error() }
func (e *retriableError) Unwrap() error { return e.err }

// Retriable marks err as transient so Retry makes another attempt.
func Retriable(err error) error {
	if err == nil {
		return nil
	}
	return &retriableError{err: err}
}

// IsRetriable reports whether err was marked with Retriable.
func IsRetriable(err error) bool {
	var re *retriableError
	return errors.As(err, &re)
}

// Retry calls fn until it succeeds, returns an error not marked Retriable, or
// the policy's attempt budget is spent. It returns the number of attempts made
// and the last error with the Retriable marker removed. No sleep follows the
// final attempt.
func Retry(ctx context.Context, policy RetryPolicy, sleep Sleeper, fn func(attempt int) error) (int, error) {
	if sleep == nil {
		sleep = Sleep
	}

	maxAttempts := policy.attempts()
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempt - 1, ctxErr
		}

		err = fn(attempt)
		if err == nil {
			return attempt, nil
		}

		var re *retriableError
		if !errors.As(err, &re) {
			return attempt, err
		}
		err = re.err

		if attempt == maxAttempts {
			return attempt, err
		}

		if sleepErr := sleep(ctx, policy.Backoff(attempt)); sleepErr != nil {
			return attempt, sleepErr
		}
	}

	return maxAttempts, err
}
