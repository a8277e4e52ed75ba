package retry

import (
	"math"
	"time"
)

// Delay maps the number of attempts made so far to a wait duration.
type Delay func(attempts uint) time.Duration

// ConstantDelay always waits interval.
func ConstantDelay(interval time.Duration) Delay {
	return func(uint) time.Duration {
		return interval
	}
}

// ExponentialDelay waits base * factor^(attempts-1), saturating instead of
// overflowing.
//
// Ex. ExponentialDelay(time.Second, 2) = 1s, 2s, 4s, 8s, ...
func ExponentialDelay(base time.Duration, factor float64) Delay {
	return func(attempts uint) time.Duration {
		delay := float64(base) * math.Pow(factor, float64(attempts-1))
		if delay >= math.MaxInt64 {
			return math.MaxInt64
		}
		return time.Duration(delay)
	}
}
