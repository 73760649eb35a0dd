package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fleetward/fleetward/internal/domain"
	"github.com/fleetward/fleetward/internal/ports"
)

// Deps carries the external collaborators the lifecycle core consumes. The
// core owns none of them; it only reads the roster, the loss counter and
// the flag store, and emits shutdown signals.
type Deps struct {
	Scheduler ports.Scheduler
	Bus       ports.EventBus
	Roster    ports.RosterProvider
	Monitor   ports.NetworkMonitor
	Flags     ports.FlagStore
	Delegate  ports.ShutdownDelegate

	// Cleaner is optional; without it a set clean-on-restart flag is
	// logged and left in place.
	Cleaner ports.CacheCleaner

	// Metrics is optional and defaults to a no-op sink.
	Metrics ports.Metrics
}

// Manager wires the lifecycle components together: it resolves the fleet
// rank once at start, runs the startup cache cleanup, subscribes to the
// three external events and routes fatal conditions to the sequencer.
type Manager struct {
	cfg    *domain.Config
	deps   Deps
	logger *slog.Logger

	seq      *Sequencer
	restart  *RestartScheduler
	watchdog *ConnectionWatchdog
	reorg    *ReorgCoordinator

	mu        sync.Mutex
	rank      domain.Rank
	subs      []string
	started   bool
	startedAt time.Time
}

func NewManager(cfg *domain.Config, deps Deps) (*Manager, error) {
	if cfg == nil {
		return nil, domain.NewConfigError("config", domain.ErrInvalidConfig)
	}
	if deps.Scheduler == nil {
		return nil, domain.NewLifecycleError("manager", "new", domain.ErrInvalidConfig)
	}
	if deps.Bus == nil || deps.Roster == nil || deps.Monitor == nil || deps.Flags == nil || deps.Delegate == nil {
		return nil, domain.NewLifecycleError("manager", "new", domain.ErrInvalidConfig)
	}
	if deps.Metrics == nil {
		deps.Metrics = ports.NopMetrics{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With("component", "lifecycle-manager", "node_id", cfg.NodeID),
		rank:   domain.Unranked,
	}, nil
}

// Start resolves the rank, performs the startup cleanup and subscribes to
// the collaborator events. The restart scheduler and watchdog stay dormant
// until the reachable event arrives.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return domain.NewLifecycleError("manager", "start", domain.ErrAlreadyStarted)
	}
	m.started = true
	m.startedAt = m.deps.Scheduler.Now()

	roster := m.deps.Roster.Roster()
	m.rank = domain.ResolveRank(roster, m.cfg.SelfAddress)
	m.deps.Metrics.SetRank(int(m.rank))
	m.deps.Metrics.SetFleetSize(len(roster))

	if m.rank.IsRanked() {
		m.logger.Info("resolved fleet rank",
			"rank", m.rank.String(),
			"fleet_size", len(roster))
	} else {
		m.logger.Warn("self address not found in fleet roster",
			"self_address", m.cfg.SelfAddress,
			"fleet_size", len(roster))
	}

	m.runStartupCleanup(ctx)

	m.seq = NewSequencer(m.deps.Delegate, m.deps.Metrics, m.logger)
	m.restart = NewRestartScheduler(m.cfg.Restart, m.cfg.LocalOnly, m.rank, m.deps.Roster, m.deps.Scheduler, m.seq, m.deps.Metrics, m.logger)
	m.watchdog = NewConnectionWatchdog(m.cfg.Watchdog, m.cfg.LocalOnly, m.deps.Monitor, m.deps.Flags, m.deps.Scheduler, m.seq, m.deps.Metrics, m.logger)
	m.reorg = NewReorgCoordinator(m.rank, m.deps.Scheduler, m.seq, m.logger)

	// Bus callbacks arrive on collaborator goroutines; hop onto the
	// scheduling context so component state stays single-threaded.
	m.subs = append(m.subs,
		m.deps.Bus.OnReachable(func(ev domain.ReachableEvent) {
			m.submit(func() { m.handleReachable(ev) })
		}),
		m.deps.Bus.OnCheckpointFailed(func(ev domain.CheckpointFailedEvent) {
			m.submit(func() { m.reorg.HandleCheckpointFailure(ev) })
		}),
		m.deps.Bus.OnResyncRequired(func(ev domain.ResyncRequiredEvent) {
			m.submit(func() { m.reorg.HandleResyncRequired(ev) })
		}),
	)

	m.logger.Info("lifecycle manager started")
	return nil
}

func (m *Manager) submit(fn func()) {
	m.deps.Scheduler.RunAfter(0, fn)
}

func (m *Manager) handleReachable(ev domain.ReachableEvent) {
	m.logger.Info("node reachable, arming lifecycle timers", "address", ev.Address)
	m.restart.Arm()

	h := m.deps.Scheduler.RunAfter(m.cfg.Watchdog.ArmingDelay, m.watchdog.Arm)
	m.seq.Register(h)
}

// runStartupCleanup handles the flag a previous run's watchdog left behind.
func (m *Manager) runStartupCleanup(ctx context.Context) {
	set, ok, err := m.deps.Flags.GetBool(domain.KeyCleanCacheAtRestart)
	if err != nil {
		m.logger.Error("failed to read clean-on-restart flag", "error", err)
		return
	}
	if !ok || !set {
		return
	}
	if m.deps.Cleaner == nil {
		m.logger.Warn("clean-on-restart flag set but no cache cleaner configured")
		return
	}
	if err := m.deps.Cleaner.CleanTransportCache(ctx); err != nil {
		m.logger.Error("transport cache cleanup failed, keeping flag for next start", "error", err)
		return
	}
	if err := m.deps.Flags.Delete(domain.KeyCleanCacheAtRestart); err != nil {
		m.logger.Error("failed to clear clean-on-restart flag", "error", err)
		return
	}
	m.logger.Info("cleaned cached transport state from previous run")
}

// HandleFatal routes a fatal process condition straight to the sequencer,
// bypassing the component state machines.
func (m *Manager) HandleFatal(err error) {
	m.logger.Error("fatal process condition", "error", err)
	m.mu.Lock()
	seq := m.seq
	m.mu.Unlock()
	if seq == nil {
		m.deps.Delegate.GracefulShutdown()
		return
	}
	seq.Shutdown("fatal process condition")
}

// Shutdown triggers the sequencer with the given reason. Safe to call more
// than once.
func (m *Manager) Shutdown(reason string) {
	m.mu.Lock()
	seq := m.seq
	m.mu.Unlock()
	if seq != nil {
		seq.Shutdown(reason)
	}
}

// Stop unsubscribes from collaborator events and closes the scheduling
// context. It does not trigger a shutdown by itself.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return
	}
	for _, id := range m.subs {
		m.deps.Bus.Unsubscribe(id)
	}
	m.subs = nil
	m.deps.Scheduler.Close()
	m.started = false
	m.logger.Info("lifecycle manager stopped")
}

func (m *Manager) Rank() domain.Rank {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rank
}

// Status implements ports.StatusReporter.
func (m *Manager) Status() domain.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := domain.Status{
		NodeID:      m.cfg.NodeID,
		SelfAddress: m.cfg.SelfAddress,
		Rank:        m.rank.String(),
		StartedAt:   m.startedAt,
	}
	st.FleetSize = len(m.deps.Roster.Roster())
	if hour, ok := m.rank.TargetHour(st.FleetSize); ok {
		st.TargetHour = &hour
	}
	if m.watchdog != nil {
		st.WatchdogArmed = m.watchdog.Armed()
	}
	if m.seq != nil {
		st.ShutdownStarted = m.seq.ShutdownBegun()
	}
	return st
}
