package lifecycle

import (
	"log/slog"

	"github.com/fleetward/fleetward/internal/domain"
	"github.com/fleetward/fleetward/internal/ports"
)

// ConnectionWatchdog polls the connectivity-loss counter and escalates to
// shutdown once repeated loss episodes suggest a structural failure rather
// than transient noise. Before shutting down it marks the persisted
// clean-on-restart flag so the next start wipes cached transport state,
// which cannot be done while the transport is still in use.
type ConnectionWatchdog struct {
	cfg       domain.WatchdogConfig
	localOnly bool
	monitor   ports.NetworkMonitor
	flags     ports.FlagStore
	sched     ports.Scheduler
	seq       *Sequencer
	metrics   ports.Metrics
	logger    *slog.Logger

	armed     bool
	triggered bool
}

func NewConnectionWatchdog(cfg domain.WatchdogConfig, localOnly bool, monitor ports.NetworkMonitor, flags ports.FlagStore, sched ports.Scheduler, seq *Sequencer, metrics ports.Metrics, logger *slog.Logger) *ConnectionWatchdog {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &ConnectionWatchdog{
		cfg:       cfg,
		localOnly: localOnly,
		monitor:   monitor,
		flags:     flags,
		sched:     sched,
		seq:       seq,
		metrics:   metrics,
		logger:    logger.With("component", "connection-watchdog"),
	}
}

// Arm starts the recurring connectivity check. Idempotent; a deliberate
// no-op in local-only mode, where this node being the only live one is
// expected.
func (w *ConnectionWatchdog) Arm() {
	if w.armed {
		return
	}
	if w.cfg.Disabled || w.localOnly {
		w.logger.Info("connection watchdog disabled")
		return
	}
	w.armed = true

	h := w.sched.RunPeriodically(w.cfg.PollInterval, w.check)
	w.seq.Register(h)
	w.logger.Info("connection watchdog armed",
		"poll_interval", w.cfg.PollInterval,
		"loss_threshold", w.cfg.LossThreshold)
}

func (w *ConnectionWatchdog) check() {
	if w.triggered {
		return
	}

	losses := w.monitor.ConnectionLossCount()
	w.metrics.SetConnectionLossEpisodes(losses)
	if losses <= w.cfg.LossThreshold {
		return
	}

	w.triggered = true

	// Flag write must precede the shutdown call so the next start sees it
	// even if teardown is abrupt.
	if err := w.flags.SetBool(domain.KeyCleanCacheAtRestart, true); err != nil {
		w.logger.Error("failed to persist clean-on-restart flag", "error", err)
	}

	w.logger.Warn("repeated connection loss detected, shutting down",
		"loss_events", losses,
		"threshold", w.cfg.LossThreshold)
	w.seq.Shutdown("repeated connection loss")
}

func (w *ConnectionWatchdog) Armed() bool {
	return w.armed
}

func (w *ConnectionWatchdog) Triggered() bool {
	return w.triggered
}
