package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/astrostats/astrowheel/pkg/errors"
)

// ErrBackend matches every failure reported by a remote backend.
var ErrBackend = stderrors.New("cache backend error")

// backendErr tags a driver error with ErrBackend and the NETWORK_ERROR code.
func backendErr(op string, err error) error {
	return errors.Wrap(errors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrBackend, err), "%s", op)
}

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as worth another attempt under [Backoff.Do].
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with [Transient].
func IsTransient(err error) bool {
	var t *transientError
	return stderrors.As(err, &t)
}

// Backoff retries an operation while it fails with [Transient] errors.
type Backoff struct {
	Attempts int
	Delay    time.Duration // first wait; doubled after each failure
}

// DefaultBackoff is used by the Redis and MongoDB backends.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 100 * time.Millisecond}

// Do runs op until it succeeds, fails permanently, or runs out of attempts.
// The error returned is never marked transient.
func (b Backoff) Do(ctx context.Context, op func() error) error {
	wait := b.Delay
	for attempt := 1; ; attempt++ {
		err := op()
		var t *transientError
		if err == nil || !stderrors.As(err, &t) {
			return err
		}
		if attempt >= b.Attempts {
			return t.err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}
