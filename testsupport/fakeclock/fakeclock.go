// Package fakeclock provides a deterministic Scheduler for tests: time only
// moves when Advance is called, and due callbacks run inline in firing
// order on the caller's goroutine.
package fakeclock

import (
	"sync"
	"time"

	"github.com/fleetward/fleetward/internal/ports"
)

type Clock struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers []*timer
}

type timer struct {
	clock    *Clock
	id       int
	when     time.Time
	interval time.Duration // zero means one-shot
	fn       func()
	stopped  bool
}

func (t *timer) Stop() {
	t.clock.mu.Lock()
	t.stopped = true
	t.clock.mu.Unlock()
}

func New(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) RunAfter(d time.Duration, fn func()) ports.TimerHandle {
	return c.add(d, 0, fn)
}

func (c *Clock) RunPeriodically(interval time.Duration, fn func()) ports.TimerHandle {
	return c.add(interval, interval, fn)
}

func (c *Clock) Close() {}

func (c *Clock) add(d, interval time.Duration, fn func()) *timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &timer{
		clock:    c,
		id:       c.nextID,
		when:     c.now.Add(d),
		interval: interval,
		fn:       fn,
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that falls due
// in the window, in chronological order. Periodic timers re-fire as many
// times as their interval fits.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)

	for {
		next := c.earliest(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}

		c.now = next.when
		if next.interval > 0 {
			next.when = next.when.Add(next.interval)
		} else {
			next.stopped = true
		}
		fn := next.fn
		c.mu.Unlock()

		fn()

		c.mu.Lock()
	}
}

// earliest returns the live timer with the smallest due time not after
// target, preferring registration order on ties. Caller holds the lock.
func (c *Clock) earliest(target time.Time) *timer {
	var best *timer
	for _, t := range c.timers {
		if t.stopped || t.when.After(target) {
			continue
		}
		if best == nil || t.when.Before(best.when) || (t.when.Equal(best.when) && t.id < best.id) {
			best = t
		}
	}
	return best
}

// PendingTimers reports how many timers are currently live.
func (c *Clock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
