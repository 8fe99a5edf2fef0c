package httpapi

import (
	"sync"

	"golang.org/x/time/rate"
)

// admissionLimiter throttles POSTs per path before they ever reach
// Repository.Create. This is a request-rate limiter, not a byte-rate
// limiter, and lives entirely in this collaborator: the core's
// no-throttling non-goal is unaffected.
type admissionLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

func newAdmissionLimiter(r rate.Limit, burst int) *admissionLimiter {
	return &admissionLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		burst:    burst,
	}
}

func (a *admissionLimiter) Allow(path string) bool {
	a.mu.Lock()
	l, ok := a.limiters[path]
	if !ok {
		l = rate.NewLimiter(a.r, a.burst)
		a.limiters[path] = l
	}
	a.mu.Unlock()
	return l.Allow()
}
