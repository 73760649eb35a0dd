// Package fleetward implements the fleet-aware lifecycle scheduler for a
// long-running node that is one member of a known list of peers. Without
// any coordination traffic, every member deterministically picks its own
// restart slot from its position in the sorted roster, watches its own
// connectivity, and staggers reorg-driven shutdowns so the fleet never
// restarts all at once.
//
// Basic usage:
//
//	cfg := &fleetward.Config{
//	    SelfAddress: "node3.fleet.example:8000",
//	    DataDir:     "./data",
//	    Roster:      fleetward.RosterConfig{Type: fleetward.RosterStatic, Static: addresses},
//	}
//	manager, err := fleetward.New(cfg, deps)
//	manager.Start(ctx)
package fleetward

import (
	"github.com/fleetward/fleetward/internal/domain"
	"github.com/fleetward/fleetward/internal/lifecycle"
	"github.com/fleetward/fleetward/internal/ports"
)

// Manager wires rank resolution, the restart scheduler, the connection
// watchdog and the reorg coordinator, and funnels every shutdown trigger
// through one idempotent sequencer.
type Manager = lifecycle.Manager

// Deps carries the external collaborators the scheduler consumes.
type Deps = lifecycle.Deps

// Config is the full configuration tree. Zero-valued fields are filled from
// defaults by New.
type Config = domain.Config

type (
	RosterConfig        = domain.RosterConfig
	EtcdRosterConfig    = domain.EtcdRosterConfig
	RestartConfig       = domain.RestartConfig
	WatchdogConfig      = domain.WatchdogConfig
	ObservabilityConfig = domain.ObservabilityConfig
	Status              = domain.Status
)

const (
	RosterStatic = domain.RosterStatic
	RosterEtcd   = domain.RosterEtcd
)

// Rank is a node's zero-based position within the sorted fleet roster.
type Rank = domain.Rank

// Unranked means the node's own address was not found in the roster.
const Unranked = domain.Unranked

// ResolveRank returns the deterministic rank of self within roster.
func ResolveRank(roster []string, self string) Rank {
	return domain.ResolveRank(roster, self)
}

// Collaborator contracts, re-exported for embedders that supply their own
// networking, storage or event implementations.
type (
	Scheduler        = ports.Scheduler
	TimerHandle      = ports.TimerHandle
	RosterProvider   = ports.RosterProvider
	NetworkMonitor   = ports.NetworkMonitor
	FlagStore        = ports.FlagStore
	EventBus         = ports.EventBus
	EventPublisher   = ports.EventPublisher
	ShutdownDelegate = ports.ShutdownDelegate
	CacheCleaner     = ports.CacheCleaner
)

// ShutdownDelegateFunc adapts a plain function to ShutdownDelegate.
type ShutdownDelegateFunc = ports.ShutdownDelegateFunc

// CacheCleanerFunc adapts a plain function to CacheCleaner.
type CacheCleanerFunc = ports.CacheCleanerFunc

// Event payloads.
type (
	ReachableEvent        = domain.ReachableEvent
	CheckpointFailedEvent = domain.CheckpointFailedEvent
	ResyncRequiredEvent   = domain.ResyncRequiredEvent
)

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return domain.DefaultConfig()
}

// New validates the configuration, fills defaults and builds a Manager.
// Call Start on the result to begin scheduling.
func New(cfg *Config, deps Deps) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return lifecycle.NewManager(cfg, deps)
}
