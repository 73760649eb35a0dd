package domain

import "time"

// ReachableEvent is published by the networking collaborator once the node
// is reachable from the outside. It arms the restart scheduler and, after a
// grace delay, the connection watchdog.
type ReachableEvent struct {
	Address string    `json:"address,omitempty"`
	At      time.Time `json:"at"`
}

// CheckpointFailedEvent signals that a consensus checkpoint validation
// failed. The node shuts down immediately; correctness risk outweighs the
// synchronized-restart risk.
type CheckpointFailedEvent struct {
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

// ResyncRequiredEvent signals that ledger state must be rebuilt from bundled
// snapshot resources. Shutdown is staggered by rank so the fleet does not
// restart all at once.
type ResyncRequiredEvent struct {
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}
