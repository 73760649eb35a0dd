package lifecycle

import (
	"log/slog"
	"sync"

	"github.com/fleetward/fleetward/internal/ports"
)

// Sequencer is the single funnel through which every shutdown trigger runs:
// the restart scheduler, the connection watchdog, the reorg coordinator and
// the fatal-error path all end up here. The first caller wins; it cancels
// every registered timer and then delegates to the process-level shutdown
// exactly once. Later callers are ignored.
type Sequencer struct {
	delegate ports.ShutdownDelegate
	metrics  ports.Metrics
	logger   *slog.Logger

	mu      sync.Mutex
	handles []ports.TimerHandle
	begun   bool
}

func NewSequencer(delegate ports.ShutdownDelegate, metrics ports.Metrics, logger *slog.Logger) *Sequencer {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Sequencer{
		delegate: delegate,
		metrics:  metrics,
		logger:   logger.With("component", "sequencer"),
	}
}

// Register adds a timer handle to be cancelled when shutdown begins. If
// shutdown has already begun the handle is stopped immediately.
func (s *Sequencer) Register(h ports.TimerHandle) {
	if h == nil {
		return
	}
	s.mu.Lock()
	if s.begun {
		s.mu.Unlock()
		h.Stop()
		return
	}
	s.handles = append(s.handles, h)
	s.mu.Unlock()
}

// Shutdown is safe to call from multiple triggers and goroutines. Timer
// cancellation always precedes the delegate call.
func (s *Sequencer) Shutdown(reason string) {
	s.mu.Lock()
	if s.begun {
		s.mu.Unlock()
		s.logger.Debug("shutdown already in progress, ignoring trigger", "reason", reason)
		return
	}
	s.begun = true
	handles := s.handles
	s.handles = nil
	s.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}

	s.metrics.IncShutdownTrigger(reason)
	s.logger.Info("initiating graceful shutdown", "reason", reason, "cancelled_timers", len(handles))
	s.delegate.GracefulShutdown()
}

func (s *Sequencer) ShutdownBegun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begun
}
