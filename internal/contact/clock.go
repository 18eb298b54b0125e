package contact

import (
	"sync"
	"time"
)

// MonotonicClock hands out strictly increasing UTC timestamps at millisecond
// resolution, which both Postgres timestamptz and BSON dates hold exactly.
type MonotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewMonotonicClock(now func() time.Time) *MonotonicClock {
	if now == nil {
		now = time.Now
	}
	return &MonotonicClock{now: now}
}

func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Millisecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t
}

var defaultClock = NewMonotonicClock(nil)
