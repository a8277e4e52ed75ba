package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

// Strategy decides whether a failed attempt is retried, and how long to wait
// before doing so. attempts starts at 1.
type Strategy func(attempts uint, err error) (time.Duration, bool)

// Limit caps the total number of attempts, including the first one.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) (time.Duration, bool) {
		return 0, attempts < maxAttempts
	}
}

// RetriableErrors only retries failures matching one of errs.
func RetriableErrors(errs ...error) Strategy {
	return func(_ uint, err error) (time.Duration, bool) {
		for _, e := range errs {
			if errors.Is(err, e) {
				return 0, true
			}
		}
		return 0, false
	}
}

// NonRetriableErrors retries every failure except those matching errs.
func NonRetriableErrors(errs ...error) Strategy {
	return func(_ uint, err error) (time.Duration, bool) {
		for _, e := range errs {
			if errors.Is(err, e) {
				return 0, false
			}
		}
		return 0, true
	}
}

// Backoff waits delay(attempts), capped at maxDelay, before the next attempt.
func Backoff(delay Delay, maxDelay time.Duration) Strategy {
	return func(attempts uint, _ error) (time.Duration, bool) {
		return capDelay(delay(attempts), maxDelay), true
	}
}

// BackoffWithJitter is Backoff with the capped delay randomly moved by up to
// jitter (a fraction of the delay) in either direction.
func BackoffWithJitter(delay Delay, maxDelay time.Duration, jitter float64) Strategy {
	return func(attempts uint, _ error) (time.Duration, bool) {
		capped := capDelay(delay(attempts), maxDelay)
		return time.Duration(float64(capped) * (1 + (rand.Float64()*2-1)*jitter)), true
	}
}

func capDelay(d, maxDelay time.Duration) time.Duration {
	return time.Duration(math.Min(float64(d), float64(maxDelay)))
}
