package lifecycle

import (
	"log/slog"

	"github.com/fleetward/fleetward/internal/domain"
	"github.com/fleetward/fleetward/internal/ports"
)

// ReorgCoordinator reacts to the two ledger-state signals. A failed
// checkpoint validation shuts the node down immediately. A soft resync
// request staggers the shutdown by rank, on the assumption that every fleet
// member saw the same external event and restarting them together would
// leave the service briefly unavailable.
type ReorgCoordinator struct {
	rank   domain.Rank
	sched  ports.Scheduler
	seq    *Sequencer
	logger *slog.Logger
}

func NewReorgCoordinator(rank domain.Rank, sched ports.Scheduler, seq *Sequencer, logger *slog.Logger) *ReorgCoordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReorgCoordinator{
		rank:   rank,
		sched:  sched,
		seq:    seq,
		logger: logger.With("component", "reorg-coordinator"),
	}
}

func (r *ReorgCoordinator) HandleCheckpointFailure(ev domain.CheckpointFailedEvent) {
	r.logger.Error("consensus checkpoint validation failed, shutting down", "reason", ev.Reason)
	r.seq.Shutdown("checkpoint validation failed")
}

func (r *ReorgCoordinator) HandleResyncRequired(ev domain.ResyncRequiredEvent) {
	delay := r.rank.StaggerDelay()
	r.logger.Warn("state resync required, scheduling staggered shutdown",
		"reason", ev.Reason,
		"rank", r.rank.String(),
		"delay", delay)

	h := r.sched.RunAfter(delay, func() {
		r.seq.Shutdown("state resync required")
	})
	r.seq.Register(h)
}
