package ports

// RosterProvider supplies the current fleet roster snapshot. The scheduler
// reads it fresh on every poll tick, so a provider backed by a discovery
// service may return a roster that grew or shrank since arming.
type RosterProvider interface {
	Roster() []string
}
