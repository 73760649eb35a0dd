package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/fleetward/internal/adapters/events"
	"github.com/fleetward/fleetward/internal/domain"
	"github.com/fleetward/fleetward/internal/ports"
	"github.com/fleetward/fleetward/testsupport/fakeclock"
)

type managerFixture struct {
	manager  *Manager
	clk      *fakeclock.Clock
	bus      *events.Bus
	monitor  *fakeMonitor
	flags    *memFlagStore
	delegate *countingDelegate
	cleaned  int
}

func newManagerFixture(t *testing.T, mutate func(*domain.Config)) *managerFixture {
	t.Helper()

	cfg := &domain.Config{
		SelfAddress: "b.fleet:8000",
		Roster: domain.RosterConfig{
			Type:   domain.RosterStatic,
			Static: []string{"a.fleet:8000", "b.fleet:8000", "c.fleet:8000", "d.fleet:8000"},
		},
	}
	require.NoError(t, cfg.ApplyDefaults())
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	f := &managerFixture{
		clk:      fakeclock.New(time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC)),
		bus:      events.NewBus(nil),
		monitor:  &fakeMonitor{},
		flags:    newMemFlagStore(),
		delegate: &countingDelegate{},
	}

	roster := &fakeRoster{addresses: cfg.Roster.Static}
	manager, err := NewManager(cfg, Deps{
		Scheduler: f.clk,
		Bus:       f.bus,
		Roster:    roster,
		Monitor:   f.monitor,
		Flags:     f.flags,
		Delegate:  f.delegate,
		Cleaner: ports.CacheCleanerFunc(func(context.Context) error {
			f.cleaned++
			return nil
		}),
	})
	require.NoError(t, err)
	f.manager = manager
	return f
}

func TestManagerResolvesRankOnStart(t *testing.T) {
	f := newManagerFixture(t, nil)

	require.NoError(t, f.manager.Start(context.Background()))
	defer f.manager.Stop()

	assert.Equal(t, domain.Rank(1), f.manager.Rank())
}

func TestManagerStartTwiceFails(t *testing.T) {
	f := newManagerFixture(t, nil)

	require.NoError(t, f.manager.Start(context.Background()))
	defer f.manager.Stop()

	err := f.manager.Start(context.Background())
	assert.True(t, domain.IsAlreadyStarted(err))
}

func TestManagerReachableArmsSchedulerAndWatchdog(t *testing.T) {
	f := newManagerFixture(t, nil)
	require.NoError(t, f.manager.Start(context.Background()))
	defer f.manager.Stop()

	f.bus.PublishReachable(domain.ReachableEvent{Address: "b.fleet:8000"})
	f.clk.Advance(0)

	// The watchdog waits out its arming grace first.
	assert.False(t, f.manager.Status().WatchdogArmed)
	f.clk.Advance(60 * time.Second)
	assert.True(t, f.manager.Status().WatchdogArmed)

	// Rank 1 of 4 targets hour 6; starting at 03:00 the restart fires
	// within the next 48 hours.
	f.clk.Advance(48 * time.Hour)
	assert.Equal(t, int32(1), f.delegate.calls.Load())
}

func TestManagerWatchdogEndToEnd(t *testing.T) {
	f := newManagerFixture(t, func(cfg *domain.Config) {
		// Keep the restart schedule out of the way.
		cfg.Restart.Disabled = true
	})
	require.NoError(t, f.manager.Start(context.Background()))
	defer f.manager.Stop()

	f.bus.PublishReachable(domain.ReachableEvent{})
	f.clk.Advance(60 * time.Second)

	f.monitor.setLosses(2)
	f.clk.Advance(30 * time.Second)

	assert.Equal(t, int32(1), f.delegate.calls.Load())
	set, ok, _ := f.flags.GetBool(domain.KeyCleanCacheAtRestart)
	assert.True(t, ok && set)
	assert.True(t, f.manager.Status().ShutdownStarted)
}

func TestManagerCheckpointFailureShutsDown(t *testing.T) {
	f := newManagerFixture(t, nil)
	require.NoError(t, f.manager.Start(context.Background()))
	defer f.manager.Stop()

	f.bus.PublishCheckpointFailed(domain.CheckpointFailedEvent{Reason: "hash mismatch"})
	f.clk.Advance(0)

	assert.Equal(t, int32(1), f.delegate.calls.Load())
}

func TestManagerResyncStaggersByRank(t *testing.T) {
	f := newManagerFixture(t, nil)
	require.NoError(t, f.manager.Start(context.Background()))
	defer f.manager.Stop()

	f.bus.PublishResyncRequired(domain.ResyncRequiredEvent{Reason: "chain reorg"})
	f.clk.Advance(0)

	// Rank 1 waits 1 + 1*30 = 31 seconds.
	f.clk.Advance(30 * time.Second)
	assert.Equal(t, int32(0), f.delegate.calls.Load())
	f.clk.Advance(time.Second)
	assert.Equal(t, int32(1), f.delegate.calls.Load())
}

func TestManagerStartupCleanupRunsWhenFlagSet(t *testing.T) {
	f := newManagerFixture(t, nil)
	require.NoError(t, f.flags.SetBool(domain.KeyCleanCacheAtRestart, true))

	require.NoError(t, f.manager.Start(context.Background()))
	defer f.manager.Stop()

	assert.Equal(t, 1, f.cleaned)
	_, ok, _ := f.flags.GetBool(domain.KeyCleanCacheAtRestart)
	assert.False(t, ok, "flag must be cleared after successful cleanup")
}

func TestManagerStartupCleanupSkippedWhenFlagUnset(t *testing.T) {
	f := newManagerFixture(t, nil)

	require.NoError(t, f.manager.Start(context.Background()))
	defer f.manager.Stop()

	assert.Equal(t, 0, f.cleaned)
}

func TestManagerHandleFatal(t *testing.T) {
	f := newManagerFixture(t, nil)
	require.NoError(t, f.manager.Start(context.Background()))
	defer f.manager.Stop()

	f.manager.HandleFatal(errors.New("out of memory"))
	f.manager.HandleFatal(errors.New("out of memory"))

	assert.Equal(t, int32(1), f.delegate.calls.Load())
}

func TestManagerStatusSnapshot(t *testing.T) {
	f := newManagerFixture(t, nil)
	require.NoError(t, f.manager.Start(context.Background()))
	defer f.manager.Stop()

	st := f.manager.Status()
	assert.Equal(t, "1", st.Rank)
	assert.Equal(t, 4, st.FleetSize)
	require.NotNil(t, st.TargetHour)
	assert.Equal(t, 6, *st.TargetHour)
	assert.False(t, st.ShutdownStarted)
}

func TestManagerRequiresCollaborators(t *testing.T) {
	cfg := &domain.Config{SelfAddress: "a:1"}
	require.NoError(t, cfg.ApplyDefaults())

	_, err := NewManager(cfg, Deps{})
	assert.Error(t, err)
}
