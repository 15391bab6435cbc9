// Package retry wraps adapter calls with exponential backoff: transient
// errors are retried, permanent ones surface on the first attempt.
package retry

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

// TransientError marks an error as retryable. Adapters wrap a transient
// network or rate-limit failure in TransientError; anything else is treated
// as permanent and surfaces on the first attempt.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err (or something it wraps) is a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return err != nil && asTransient(err, &te)
}

func asTransient(err error, target **TransientError) bool {
	for err != nil {
		if te, ok := err.(*TransientError); ok {
			*target = te
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Do runs fn, retrying with exponential backoff while fn returns a
// TransientError, up to maxElapsed. A permanent error (or nil) returns
// immediately. Budget exhaustion returns the last error seen.
func Do(ctx context.Context, maxElapsed backoff.BackOff, fn func() error) error {
	op := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	return backoff.Retry(op, backoff.WithContext(maxElapsed, ctx))
}

// Default builds the standard adapter retry policy: exponential backoff
// whose total retry time is capped at one sixth of the library default
// (2m30s), so a failing source degrades to an empty result sooner; the
// number of attempts is not capped separately.
func Default() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = backoff.DefaultInitialInterval
	b.MaxElapsedTime = backoff.DefaultMaxElapsedTime / 6
	return b
}
