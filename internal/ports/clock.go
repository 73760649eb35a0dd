package ports

import "time"

// TimerHandle cancels a pending timer. Stopping a handle that already fired
// or was already stopped is a no-op.
type TimerHandle interface {
	Stop()
}

// Scheduler owns the single logical scheduling thread: every callback it
// runs, one-shot or periodic, executes on one serialized context, so the
// lifecycle components never observe two of their callbacks in parallel.
type Scheduler interface {
	Now() time.Time
	RunAfter(d time.Duration, fn func()) TimerHandle
	RunPeriodically(interval time.Duration, fn func()) TimerHandle
	Close()
}
