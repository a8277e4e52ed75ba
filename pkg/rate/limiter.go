package rate

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter limits operations per key, such as an API endpoint. Allow never
// blocks; callers reject operations it does not admit.
type Limiter interface {
	Allow(key string) (bool, error)
}

type localRateLimiter struct {
	limit rate.Limit
	burst int

	sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLocalRateLimiter returns an in memory limiter allowing limit operations
// per second for each key, with a burst equal to the limit.
func NewLocalRateLimiter(limit rate.Limit) Limiter {
	return NewLocalRateLimiterWithBurst(limit, int(limit))
}

// NewLocalRateLimiterWithBurst is like NewLocalRateLimiter, with an explicit
// burst. A burst below one is raised to one so slow limits still admit work.
func NewLocalRateLimiterWithBurst(limit rate.Limit, burst int) Limiter {
	if burst < 1 {
		burst = 1
	}
	return &localRateLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow implements limiter.Allow.
func (l *localRateLimiter) Allow(key string) (bool, error) {
	l.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	l.Unlock()

	return limiter.Allow(), nil
}

// NoLimiter never limits operations
type NoLimiter struct {
}

// Allow implements limiter.Allow.
func (n *NoLimiter) Allow(key string) (bool, error) {
	return true, nil
}
