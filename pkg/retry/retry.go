// Package retry runs operations under an exponential backoff policy.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retry loop. MaxAttempts counts the first call.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

// Notify is called after a failed attempt that will be retried.
type Notify func(attempt int, err error, nextDelay time.Duration)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }
func (e *permanentError) IsFatal() bool { return true }

// Permanent marks err so the loop stops after the current attempt.
// The circuit breaker also treats such errors as caller faults.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether any error in the chain asks not to be retried.
func IsPermanent(err error) bool {
	var fatal interface{ IsFatal() bool }
	return errors.As(err, &fatal) && fatal.IsFatal()
}

func Do(ctx context.Context, policy Policy, fn func() error) error {
	return DoNotify(ctx, policy, fn, nil)
}

// DoNotify runs fn until it succeeds, returns a permanent error, the context
// ends, or MaxAttempts is reached. The last error is returned unwrapped.
func DoNotify(ctx context.Context, policy Policy, fn func() error, notify Notify) error {
	policy = policy.normalized()

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn()
		switch {
		case err == nil:
			return nil
		case IsPermanent(err):
			return backoff.Permanent(err)
		}

		if notify != nil && attempt < policy.MaxAttempts {
			notify(attempt, err, policy.Delay(attempt-1))
		}
		return err
	}, policy.backOff(ctx))
}
