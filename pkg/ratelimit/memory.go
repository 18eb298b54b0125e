package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a process-local fixed-window limiter. Entries are never
// evicted, so memory grows with the number of distinct keys seen.
type MemoryLimiter struct {
	limit   int
	window  time.Duration
	clock   Clock
	mu      sync.Mutex
	entries map[string]*entry
}

func NewMemoryLimiter(limit int, window time.Duration, opts ...Option) *MemoryLimiter {
	o := buildOptions(opts)
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		clock:   o.clock,
		entries: make(map[string]*entry),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(l.window)}
		l.entries[key] = e
		return l.decision(true, e), nil
	}

	if e.count >= l.limit {
		return l.decision(false, e), nil
	}

	e.count++
	return l.decision(true, e), nil
}

func (l *MemoryLimiter) decision(allowed bool, e *entry) Decision {
	return Decision{
		Allowed: allowed,
		Count:   e.count,
		Limit:   l.limit,
		ResetAt: e.resetAt,
	}
}

// Len reports how many keys are tracked.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
