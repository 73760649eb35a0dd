package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetward/fleetward"
	"github.com/fleetward/fleetward/internal/adapters/clock"
	"github.com/fleetward/fleetward/internal/adapters/events"
	"github.com/fleetward/fleetward/internal/adapters/flagstore"
	"github.com/fleetward/fleetward/internal/adapters/netprobe"
	"github.com/fleetward/fleetward/internal/adapters/observability"
	"github.com/fleetward/fleetward/internal/adapters/roster"
)

func runNode(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg := fleetward.DefaultConfig()
	cacheDir := ""
	probeInterval := 15 * time.Second
	probeDialTimeout := 3 * time.Second

	if configPath != "" {
		fc, err := loadFileConfig(configPath)
		if err != nil {
			return err
		}
		cfg = fc.toLibraryConfig()
		cacheDir = fc.TransportCacheDir
		if fc.Probe.Interval.Duration > 0 {
			probeInterval = fc.Probe.Interval.Duration
		}
		if fc.Probe.DialTimeout.Duration > 0 {
			probeDialTimeout = fc.Probe.DialTimeout.Duration
		}
	}

	// CLI flags override the file.
	if selfAddress != "" {
		cfg.SelfAddress = selfAddress
	}
	if len(staticPeers) > 0 {
		cfg.Roster.Type = fleetward.RosterStatic
		cfg.Roster.Static = staticPeers
	}
	if cfg.DataDir == "" || dataDir != "./data" {
		cfg.DataDir = dataDir
	}
	if localOnly {
		cfg.LocalOnly = true
	}
	cfg.Logger = logger
	if cacheDir == "" {
		cacheDir = filepath.Join(cfg.DataDir, "transport-cache")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flags, err := flagstore.Open(filepath.Join(cfg.DataDir, "flags"), logger)
	if err != nil {
		return err
	}
	defer flags.Close()

	bus := events.NewBus(logger)
	sched := clock.NewScheduler(logger)

	var (
		rosterProvider fleetward.RosterProvider
		etcdProvider   *roster.EtcdProvider
	)
	switch cfg.Roster.Type {
	case fleetward.RosterEtcd:
		etcdProvider, err = roster.NewEtcdProvider(*cfg.Roster.Etcd, logger)
		if err != nil {
			return err
		}
		nodeID := cfg.NodeID
		if nodeID == "" {
			nodeID = cfg.SelfAddress
		}
		if err := etcdProvider.Start(ctx, nodeID, cfg.SelfAddress); err != nil {
			return err
		}
		rosterProvider = etcdProvider
	default:
		rosterProvider = roster.NewStaticProvider(cfg.Roster.Static, logger)
	}

	prober := netprobe.NewProber(rosterProvider, bus, cfg.SelfAddress, probeInterval, probeDialTimeout, logger)

	// First shutdown trigger releases the main goroutine; everything is
	// torn down below in order.
	stop := make(chan struct{})
	delegate := fleetward.ShutdownDelegateFunc(func() {
		close(stop)
	})

	cleaner := fleetward.CacheCleanerFunc(func(context.Context) error {
		return os.RemoveAll(cacheDir)
	})

	metrics := observability.NewMetrics()

	manager, err := fleetward.New(cfg, fleetward.Deps{
		Scheduler: sched,
		Bus:       bus,
		Roster:    rosterProvider,
		Monitor:   prober,
		Flags:     flags,
		Delegate:  delegate,
		Cleaner:   cleaner,
		Metrics:   metrics,
	})
	if err != nil {
		return err
	}

	if err := manager.Start(ctx); err != nil {
		return err
	}

	var obs *observability.Server
	if cfg.Observability.Enabled {
		obs = observability.NewServer(cfg.Observability, manager, metrics, logger)
		if err := obs.Start(); err != nil {
			return err
		}
	}

	if err := prober.Start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
		manager.Shutdown("signal: " + sig.String())
		<-stop
	case <-stop:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if obs != nil {
		if err := obs.Stop(shutdownCtx); err != nil {
			logger.Warn("observability server shutdown failed", "error", err)
		}
	}
	prober.Stop()
	if etcdProvider != nil {
		if err := etcdProvider.Stop(shutdownCtx); err != nil {
			logger.Warn("etcd roster shutdown failed", "error", err)
		}
	}
	manager.Stop()

	logger.Info("shutdown complete")
	return nil
}
