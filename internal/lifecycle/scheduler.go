package lifecycle

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/fleetward/fleetward/internal/domain"
	"github.com/fleetward/fleetward/internal/ports"
)

type restartState int

const (
	restartIdle restartState = iota
	restartInitialDelay
	restartPolling
	restartTriggered
)

// RestartScheduler decides when this node voluntarily restarts. Ranked nodes
// restart at a deterministic hour of day spread evenly across the fleet;
// unranked nodes fall back to a generic jittered cadence. All state
// transitions happen on the scheduler's serialized context, so no locking
// is needed here.
type RestartScheduler struct {
	cfg       domain.RestartConfig
	localOnly bool
	rank      domain.Rank
	roster    ports.RosterProvider
	sched     ports.Scheduler
	seq       *Sequencer
	metrics   ports.Metrics
	logger    *slog.Logger

	state restartState
}

func NewRestartScheduler(cfg domain.RestartConfig, localOnly bool, rank domain.Rank, roster ports.RosterProvider, sched ports.Scheduler, seq *Sequencer, metrics ports.Metrics, logger *slog.Logger) *RestartScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &RestartScheduler{
		cfg:       cfg,
		localOnly: localOnly,
		rank:      rank,
		roster:    roster,
		sched:     sched,
		seq:       seq,
		metrics:   metrics,
		logger:    logger.With("component", "restart-scheduler"),
	}
}

// Arm starts the two-phase schedule. Arming an already armed scheduler is a
// no-op, as is arming under an administrative override.
func (rs *RestartScheduler) Arm() {
	if rs.state != restartIdle {
		return
	}
	if rs.cfg.Disabled {
		rs.logger.Info("periodic restart administratively disabled")
		return
	}
	if rs.localOnly {
		rs.logger.Info("local-only configuration, periodic restart suppressed")
		return
	}

	if !rs.rank.IsRanked() {
		rs.armFallback()
		return
	}

	rs.state = restartInitialDelay
	rs.logger.Info("restart schedule armed",
		"rank", rs.rank.String(),
		"initial_delay", rs.cfg.InitialDelay,
		"poll_interval", rs.cfg.PollInterval)

	h := rs.sched.RunAfter(rs.cfg.InitialDelay, rs.beginPolling)
	rs.seq.Register(h)
}

// armFallback schedules a single non-deterministic restart for nodes whose
// address is missing from the roster.
func (rs *RestartScheduler) armFallback() {
	rs.state = restartInitialDelay

	delay := rs.cfg.FallbackInterval
	if rs.cfg.FallbackJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(rs.cfg.FallbackJitter)))
	}
	rs.logger.Warn("node is unranked, using generic restart cadence", "delay", delay)

	h := rs.sched.RunAfter(delay, func() {
		if rs.state == restartTriggered {
			return
		}
		rs.state = restartTriggered
		rs.seq.Shutdown("generic restart interval elapsed")
	})
	rs.seq.Register(h)
}

func (rs *RestartScheduler) beginPolling() {
	if rs.state != restartInitialDelay {
		return
	}
	rs.state = restartPolling

	h := rs.sched.RunPeriodically(rs.cfg.PollInterval, rs.poll)
	rs.seq.Register(h)
}

func (rs *RestartScheduler) poll() {
	if rs.state != restartPolling {
		return
	}

	// Fleet size is read fresh every tick rather than cached at arm time,
	// so roster growth or shrinkage shifts the target hour immediately.
	size := len(rs.roster.Roster())
	rs.metrics.SetFleetSize(size)

	target, ok := rs.rank.TargetHour(size)
	if !ok {
		rs.logger.Warn("empty fleet roster, skipping restart check")
		return
	}
	rs.metrics.SetTargetHour(target)

	now := rs.sched.Now().UTC()
	if now.Hour() != target {
		return
	}

	rs.state = restartTriggered
	rs.logger.Warn("scheduled restart hour reached, shutting down",
		"target_hour", target,
		"utc", now.Format(time.RFC3339),
		"fleet_size", size)
	rs.seq.Shutdown("scheduled restart hour reached")
}

// Triggered reports whether the scheduler has fired.
func (rs *RestartScheduler) Triggered() bool {
	return rs.state == restartTriggered
}
