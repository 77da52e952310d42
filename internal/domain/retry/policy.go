// Package retry runs operations under a bounded fixed delay retry policy.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy is a fixed delay retry budget. MaxRetries counts retries after the
// first attempt, so a policy with MaxRetries 2 makes at most three calls.
type Policy struct {
	MaxRetries int           `json:"max_retries"`
	Delay      time.Duration `json:"delay"`
}

// FixedPolicy returns a policy making at most attempts calls with the same
// delay between each of them.
func FixedPolicy(attempts int, delay time.Duration) Policy {
	if attempts < 1 {
		attempts = 1
	}
	if delay < 0 {
		delay = 0
	}
	return Policy{MaxRetries: attempts - 1, Delay: delay}
}

// Attempts returns the total number of calls the policy allows.
func (p Policy) Attempts() int {
	return p.MaxRetries + 1
}

// CalculateDelay returns the wait before the given attempt.
func (p Policy) CalculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return p.Delay
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Execute returns the wrapped
// error immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryableFunc is a function that can be retried.
type RetryableFunc func(ctx context.Context, attempt int) error

// Executor provides retry execution functionality.
type Executor struct {
	policy  Policy
	onRetry func(attempt int, err error)
}

// NewExecutor creates a new retry executor with the given policy.
func NewExecutor(policy Policy) *Executor {
	return &Executor{policy: policy}
}

// OnRetry registers a hook invoked after each failed attempt that will be retried.
func (e *Executor) OnRetry(fn func(attempt int, err error)) *Executor {
	e.onRetry = fn
	return e
}

// Execute runs the function with retries according to the policy.
func (e *Executor) Execute(ctx context.Context, fn RetryableFunc) error {
	var lastErr error

	for attempt := 0; attempt <= e.policy.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return lastErr
			}
			return ctx.Err()
		default:
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}

		var permanent *permanentError
		if errors.As(err, &permanent) {
			return permanent.err
		}

		lastErr = err

		if attempt >= e.policy.MaxRetries {
			break
		}
		if e.onRetry != nil {
			e.onRetry(attempt+1, err)
		}

		delay := e.policy.CalculateDelay(attempt + 1)
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return lastErr
			case <-timer.C:
			}
		}
	}

	return lastErr
}

// ExecuteWithResult runs the function with retries and returns a result.
func ExecuteWithResult[T any](ctx context.Context, policy Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var result T
	err := NewExecutor(policy).Execute(ctx, func(ctx context.Context, attempt int) error {
		r, err := fn(ctx, attempt)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}
