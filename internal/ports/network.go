package ports

// NetworkMonitor is the read-only view of connectivity state maintained by
// the networking collaborator.
type NetworkMonitor interface {
	// ConnectionLossCount returns the number of "all connections lost"
	// episodes observed since process start. Monotonically non-decreasing.
	ConnectionLossCount() int
}
