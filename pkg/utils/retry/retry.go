package retry

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
)

// Policy is a linear backoff policy: attempt n (1-based) that fails waits
// BaseDelay*n before attempt n+1. With Constant set every wait is BaseDelay.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	Constant  bool
}

// Delay returns the wait after the given failed attempt
func (p Policy) Delay(attempt int) time.Duration {
	if p.Constant {
		return p.BaseDelay
	}
	return p.BaseDelay * time.Duration(attempt)
}

// DefaultPolicy is 3 attempts with 1s, 2s delays between them
var DefaultPolicy = Policy{Attempts: 3, BaseDelay: time.Second}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not retryable. Do returns the wrapped error at once.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the attempts are
// exhausted, or ctx is done. The returned error is the last one fn returned
// (unwrapped from Permanent). When ctx ends during a backoff it carries both
// the context error and the last error.
func Do(ctx context.Context, p Policy, name string, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		logging.From(ctx).Warn("Attempt failed",
			"operation", name,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err.Error(),
		)

		if attempt == attempts {
			break
		}

		timer := time.NewTimer(p.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return goerr.Wrap(errors.Join(ctx.Err(), lastErr), "retry aborted", goerr.V("operation", name), goerr.V("attempt", attempt))
		case <-timer.C:
		}
	}

	return lastErr
}
