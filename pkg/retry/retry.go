// Package retry re-runs calls to remote services after transient failures.
package retry

import (
	"context"
	"time"
)

// Action is a single attempt of a retriable call.
type Action func() error

// Retrier retries actions with a fixed set of strategies.
type Retrier interface {
	Retry(ctx context.Context, action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier applying strategies to every failed attempt.
// Without strategies, failed actions are retried immediately until they
// succeed or ctx is done.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(ctx context.Context, action Action) (uint, error) {
	return Retry(ctx, action, r.strategies...)
}

// Retry executes action until it succeeds, any strategy declines another
// attempt, or ctx is done. The delays requested by the strategies are
// added together and waited out before the next attempt. It returns the
// number of attempts made along with the last error.
func Retry(ctx context.Context, action Action, strategies ...Strategy) (uint, error) {
	for attempts := uint(1); ; attempts++ {
		if err := ctx.Err(); err != nil {
			return attempts - 1, err
		}

		err := action()
		if err == nil {
			return attempts, nil
		}

		var delay time.Duration
		for _, s := range strategies {
			d, ok := s(attempts, err)
			if !ok {
				return attempts, err
			}
			delay += d
		}

		if delay > 0 {
			if err := wait(ctx, delay); err != nil {
				return attempts, err
			}
		}
	}
}

var wait = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
