package domain

// Persisted flag keys. These survive process restarts; everything else the
// scheduler tracks lives in memory.
const (
	// KeyCleanCacheAtRestart is set by the connection watchdog before it
	// shuts the node down. The startup path reads it, wipes the cached
	// transport state, and clears it again.
	KeyCleanCacheAtRestart = "clean_transport_cache_at_restart"
)
