package api

import (
	"sync"
	"time"
)

// FixedWindowLimiter counts requests per client key over a fixed window and
// rejects the excess. State is process-local and resets on restart.
type FixedWindowLimiter struct {
	window time.Duration
	limit  int

	mu     sync.Mutex
	counts map[string]*windowCount
	now    func() time.Time
}

type windowCount struct {
	count   int
	resetAt time.Time
}

// NewFixedWindowLimiter creates a limiter allowing limit requests per key
// each window.
func NewFixedWindowLimiter(window time.Duration, limit int) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		window: window,
		limit:  limit,
		counts: make(map[string]*windowCount),
		now:    time.Now,
	}
}

// Allow reports whether the client identified by key may issue another
// request in the current window.
func (l *FixedWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.counts[key]
	if !ok || now.After(rec.resetAt) {
		l.counts[key] = &windowCount{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if rec.count >= l.limit {
		return false
	}
	rec.count++
	return true
}
