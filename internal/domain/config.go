package domain

import (
	"log/slog"
	"time"
)

type Config struct {
	// NodeID identifies the node in logs and metrics. Defaults to the
	// self address when empty.
	NodeID string `json:"node_id" toml:"node_id"`

	// SelfAddress is this node's entry in the fleet roster. Rank
	// resolution fails (falls back to the generic cadence) when the
	// roster does not contain it.
	SelfAddress string `json:"self_address" toml:"self_address"`

	// DataDir holds the persisted flag store.
	DataDir string `json:"data_dir" toml:"data_dir"`

	// LocalOnly marks a local/offline test configuration. It suppresses
	// both the periodic restart schedule and the connection watchdog.
	LocalOnly bool `json:"local_only" toml:"local_only"`

	Logger *slog.Logger `json:"-" toml:"-"`

	Roster        RosterConfig        `json:"roster" toml:"roster"`
	Restart       RestartConfig       `json:"restart" toml:"restart"`
	Watchdog      WatchdogConfig      `json:"watchdog" toml:"watchdog"`
	Observability ObservabilityConfig `json:"observability" toml:"observability"`
}

type RosterType string

const (
	RosterStatic RosterType = "static"
	RosterEtcd   RosterType = "etcd"
)

type RosterConfig struct {
	Type   RosterType        `json:"type" toml:"type"`
	Static []string          `json:"static,omitempty" toml:"static"`
	Etcd   *EtcdRosterConfig `json:"etcd,omitempty" toml:"etcd"`
}

type EtcdRosterConfig struct {
	Endpoints   []string      `json:"endpoints" toml:"endpoints"`
	Prefix      string        `json:"prefix" toml:"prefix"`
	DialTimeout time.Duration `json:"dial_timeout" toml:"dial_timeout"`
	LeaseTTL    int64         `json:"lease_ttl_seconds" toml:"lease_ttl_seconds"`
}

type RestartConfig struct {
	// Disabled is the administrative override that suppresses the
	// periodic restart schedule entirely.
	Disabled bool `json:"disabled" toml:"disabled"`

	// InitialDelay absorbs the window right after a restart where the
	// node could still match its own target hour.
	InitialDelay time.Duration `json:"initial_delay" toml:"initial_delay"`

	// PollInterval bounds the miss window around the target hour.
	PollInterval time.Duration `json:"poll_interval" toml:"poll_interval"`

	// FallbackInterval is the generic restart cadence used when the node
	// is unranked. FallbackJitter is added on top so unranked nodes do
	// not restart in lockstep either.
	FallbackInterval time.Duration `json:"fallback_interval" toml:"fallback_interval"`
	FallbackJitter   time.Duration `json:"fallback_jitter" toml:"fallback_jitter"`
}

type WatchdogConfig struct {
	Disabled bool `json:"disabled" toml:"disabled"`

	PollInterval time.Duration `json:"poll_interval" toml:"poll_interval"`

	// ArmingDelay is the grace period between the node becoming
	// reachable and the first connectivity check.
	ArmingDelay time.Duration `json:"arming_delay" toml:"arming_delay"`

	// LossThreshold is the number of "all connections lost" episodes
	// tolerated as noise. The watchdog fires when the counter exceeds
	// it, so the default of 1 means the second episode triggers.
	LossThreshold int `json:"loss_threshold" toml:"loss_threshold"`
}

type ObservabilityConfig struct {
	Enabled bool   `json:"enabled" toml:"enabled"`
	Host    string `json:"host" toml:"host"`
	Port    int    `json:"port" toml:"port"`
}

// Status is the snapshot served on the status endpoint.
type Status struct {
	NodeID          string    `json:"node_id"`
	SelfAddress     string    `json:"self_address"`
	Rank            string    `json:"rank"`
	FleetSize       int       `json:"fleet_size"`
	TargetHour      *int      `json:"target_hour,omitempty"`
	WatchdogArmed   bool      `json:"watchdog_armed"`
	ShutdownStarted bool      `json:"shutdown_started"`
	StartedAt       time.Time `json:"started_at"`
}
