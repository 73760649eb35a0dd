package domain

import (
	"time"

	"dario.cat/mergo"
)

func DefaultConfig() *Config {
	return &Config{
		Roster: RosterConfig{
			Type: RosterStatic,
		},
		Restart:       DefaultRestartConfig(),
		Watchdog:      DefaultWatchdogConfig(),
		Observability: DefaultObservabilityConfig(),
	}
}

func DefaultRestartConfig() RestartConfig {
	return RestartConfig{
		InitialDelay:     2 * time.Hour,
		PollInterval:     10 * time.Minute,
		FallbackInterval: 24 * time.Hour,
		FallbackJitter:   4 * time.Hour,
	}
}

func DefaultWatchdogConfig() WatchdogConfig {
	return WatchdogConfig{
		PollInterval:  30 * time.Second,
		ArmingDelay:   60 * time.Second,
		LossThreshold: 1,
	}
}

func DefaultEtcdRosterConfig() *EtcdRosterConfig {
	return &EtcdRosterConfig{
		Prefix:      "/fleetward/nodes/",
		DialTimeout: 5 * time.Second,
		LeaseTTL:    10,
	}
}

func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Host: "127.0.0.1",
		Port: 9090,
	}
}

// ApplyDefaults fills every zero-valued field from the defaults, leaving
// explicit settings untouched.
func (c *Config) ApplyDefaults() error {
	if err := mergo.Merge(c, DefaultConfig()); err != nil {
		return NewConfigError("defaults", err)
	}
	if c.Roster.Type == RosterEtcd && c.Roster.Etcd == nil {
		c.Roster.Etcd = DefaultEtcdRosterConfig()
	} else if c.Roster.Etcd != nil {
		if err := mergo.Merge(c.Roster.Etcd, DefaultEtcdRosterConfig()); err != nil {
			return NewConfigError("roster.etcd", err)
		}
	}
	if c.NodeID == "" {
		c.NodeID = c.SelfAddress
	}
	return nil
}

func (c *Config) Validate() error {
	if c.SelfAddress == "" {
		return NewConfigError("self_address", ErrInvalidConfig)
	}
	switch c.Roster.Type {
	case RosterStatic:
	case RosterEtcd:
		if c.Roster.Etcd == nil || len(c.Roster.Etcd.Endpoints) == 0 {
			return NewConfigError("roster.etcd.endpoints", ErrInvalidConfig)
		}
		if c.Roster.Etcd.LeaseTTL <= 0 {
			return NewConfigError("roster.etcd.lease_ttl_seconds", ErrInvalidConfig)
		}
	default:
		return NewConfigError("roster.type", ErrInvalidConfig)
	}
	if c.Restart.InitialDelay < 0 || c.Restart.PollInterval <= 0 {
		return NewConfigError("restart.poll_interval", ErrInvalidConfig)
	}
	if c.Restart.FallbackInterval <= 0 || c.Restart.FallbackJitter < 0 {
		return NewConfigError("restart.fallback_interval", ErrInvalidConfig)
	}
	if c.Watchdog.PollInterval <= 0 || c.Watchdog.ArmingDelay < 0 {
		return NewConfigError("watchdog.poll_interval", ErrInvalidConfig)
	}
	if c.Watchdog.LossThreshold < 0 {
		return NewConfigError("watchdog.loss_threshold", ErrInvalidConfig)
	}
	if c.Observability.Enabled && (c.Observability.Port <= 0 || c.Observability.Port > 65535) {
		return NewConfigError("observability.port", ErrInvalidConfig)
	}
	return nil
}
