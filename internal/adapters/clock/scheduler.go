// Package clock provides the system Scheduler: wall-clock timers whose
// callbacks are all dispatched on one goroutine, giving the lifecycle core
// its single serialized scheduling context.
package clock

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fleetward/fleetward/internal/ports"
)

type Scheduler struct {
	logger *slog.Logger

	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		logger: logger.With("component", "scheduler"),
		tasks:  make(chan func(), 64),
		done:   make(chan struct{}),
	}
	go s.dispatch()
	return s
}

func (s *Scheduler) dispatch() {
	for {
		select {
		case fn := <-s.tasks:
			fn()
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) submit(fn func()) {
	select {
	case s.tasks <- fn:
	case <-s.done:
	}
}

func (s *Scheduler) Now() time.Time {
	return time.Now()
}

type handle struct {
	stopped atomic.Bool
	cancel  func()
}

func (h *handle) Stop() {
	if h.stopped.CompareAndSwap(false, true) && h.cancel != nil {
		h.cancel()
	}
}

func (s *Scheduler) RunAfter(d time.Duration, fn func()) ports.TimerHandle {
	h := &handle{}
	t := time.AfterFunc(d, func() {
		s.submit(func() {
			// A Stop that raced the firing still wins: the callback is
			// skipped if it has not begun executing.
			if h.stopped.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	h.cancel = func() { t.Stop() }
	return h
}

func (s *Scheduler) RunPeriodically(interval time.Duration, fn func()) ports.TimerHandle {
	h := &handle{}
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.submit(func() {
					if !h.stopped.Load() {
						fn()
					}
				})
			case <-stop:
				return
			case <-s.done:
				return
			}
		}
	}()

	h.cancel = func() { close(stop) }
	return h
}

func (s *Scheduler) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}
