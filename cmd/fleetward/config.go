package main

import (
	"time"

	"github.com/BurntSushi/toml"

	"github.com/fleetward/fleetward"
)

// duration lets TOML files use "2h" / "10m" / "30s" notation.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// fileConfig is the TOML representation of the daemon configuration. It is
// kept separate from the library config so the file format can use human
// readable durations.
type fileConfig struct {
	NodeID      string `toml:"node_id"`
	SelfAddress string `toml:"self_address"`
	DataDir     string `toml:"data_dir"`
	LocalOnly   bool   `toml:"local_only"`

	TransportCacheDir string `toml:"transport_cache_dir"`

	Roster struct {
		Type   string   `toml:"type"`
		Static []string `toml:"static"`
		Etcd   struct {
			Endpoints   []string `toml:"endpoints"`
			Prefix      string   `toml:"prefix"`
			DialTimeout duration `toml:"dial_timeout"`
			LeaseTTL    int64    `toml:"lease_ttl_seconds"`
		} `toml:"etcd"`
	} `toml:"roster"`

	Restart struct {
		Disabled         bool     `toml:"disabled"`
		InitialDelay     duration `toml:"initial_delay"`
		PollInterval     duration `toml:"poll_interval"`
		FallbackInterval duration `toml:"fallback_interval"`
		FallbackJitter   duration `toml:"fallback_jitter"`
	} `toml:"restart"`

	Watchdog struct {
		Disabled      bool     `toml:"disabled"`
		PollInterval  duration `toml:"poll_interval"`
		ArmingDelay   duration `toml:"arming_delay"`
		LossThreshold int      `toml:"loss_threshold"`
	} `toml:"watchdog"`

	Probe struct {
		Interval    duration `toml:"interval"`
		DialTimeout duration `toml:"dial_timeout"`
	} `toml:"probe"`

	Observability struct {
		Enabled bool   `toml:"enabled"`
		Host    string `toml:"host"`
		Port    int    `toml:"port"`
	} `toml:"observability"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

func (fc *fileConfig) toLibraryConfig() *fleetward.Config {
	cfg := &fleetward.Config{
		NodeID:      fc.NodeID,
		SelfAddress: fc.SelfAddress,
		DataDir:     fc.DataDir,
		LocalOnly:   fc.LocalOnly,
		Roster: fleetward.RosterConfig{
			Type:   fleetward.RosterStatic,
			Static: fc.Roster.Static,
		},
		Restart: fleetward.RestartConfig{
			Disabled:         fc.Restart.Disabled,
			InitialDelay:     fc.Restart.InitialDelay.Duration,
			PollInterval:     fc.Restart.PollInterval.Duration,
			FallbackInterval: fc.Restart.FallbackInterval.Duration,
			FallbackJitter:   fc.Restart.FallbackJitter.Duration,
		},
		Watchdog: fleetward.WatchdogConfig{
			Disabled:      fc.Watchdog.Disabled,
			PollInterval:  fc.Watchdog.PollInterval.Duration,
			ArmingDelay:   fc.Watchdog.ArmingDelay.Duration,
			LossThreshold: fc.Watchdog.LossThreshold,
		},
		Observability: fleetward.ObservabilityConfig{
			Enabled: fc.Observability.Enabled,
			Host:    fc.Observability.Host,
			Port:    fc.Observability.Port,
		},
	}

	if fc.Roster.Type == string(fleetward.RosterEtcd) {
		cfg.Roster.Type = fleetward.RosterEtcd
		cfg.Roster.Etcd = &fleetward.EtcdRosterConfig{
			Endpoints:   fc.Roster.Etcd.Endpoints,
			Prefix:      fc.Roster.Etcd.Prefix,
			DialTimeout: fc.Roster.Etcd.DialTimeout.Duration,
			LeaseTTL:    fc.Roster.Etcd.LeaseTTL,
		}
	}
	return cfg
}
