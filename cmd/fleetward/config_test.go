package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/fleetward"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFileConfigStatic(t *testing.T) {
	path := writeConfig(t, `
self_address = "seed2.example.com:8000"
data_dir = "/var/lib/fleetward"
transport_cache_dir = "/var/lib/fleetward/tor"

[roster]
type = "static"
static = ["seed1.example.com:8000", "seed2.example.com:8000"]

[restart]
initial_delay = "2h"
poll_interval = "10m"

[watchdog]
poll_interval = "30s"
loss_threshold = 1

[probe]
interval = "15s"
dial_timeout = "3s"

[observability]
enabled = true
port = 9090
`)

	fc, err := loadFileConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "seed2.example.com:8000", fc.SelfAddress)
	assert.Equal(t, "/var/lib/fleetward/tor", fc.TransportCacheDir)
	assert.Equal(t, 2*time.Hour, fc.Restart.InitialDelay.Duration)
	assert.Equal(t, 10*time.Minute, fc.Restart.PollInterval.Duration)
	assert.Equal(t, 15*time.Second, fc.Probe.Interval.Duration)

	cfg := fc.toLibraryConfig()
	assert.Equal(t, fleetward.RosterStatic, cfg.Roster.Type)
	assert.Len(t, cfg.Roster.Static, 2)
	assert.True(t, cfg.Observability.Enabled)
	assert.Equal(t, 9090, cfg.Observability.Port)
}

func TestLoadFileConfigEtcd(t *testing.T) {
	path := writeConfig(t, `
self_address = "seed1.example.com:8000"

[roster]
type = "etcd"

[roster.etcd]
endpoints = ["etcd1:2379", "etcd2:2379"]
prefix = "/fleet/nodes/"
dial_timeout = "5s"
lease_ttl_seconds = 10
`)

	fc, err := loadFileConfig(path)
	require.NoError(t, err)

	cfg := fc.toLibraryConfig()
	assert.Equal(t, fleetward.RosterEtcd, cfg.Roster.Type)
	require.NotNil(t, cfg.Roster.Etcd)
	assert.Equal(t, []string{"etcd1:2379", "etcd2:2379"}, cfg.Roster.Etcd.Endpoints)
	assert.Equal(t, "/fleet/nodes/", cfg.Roster.Etcd.Prefix)
	assert.Equal(t, 5*time.Second, cfg.Roster.Etcd.DialTimeout)
	assert.Equal(t, int64(10), cfg.Roster.Etcd.LeaseTTL)
}

func TestLoadFileConfigBadDuration(t *testing.T) {
	path := writeConfig(t, `
[restart]
initial_delay = "two hours"
`)

	_, err := loadFileConfig(path)
	assert.Error(t, err)
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	_, err := loadFileConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
