package domain

import (
	"math"
	"sort"
	"strconv"
	"time"
)

// Rank is this node's zero-based position within the sorted fleet roster.
// It is resolved once at startup and drives both the restart target hour
// and the reorg stagger delay.
type Rank int

// Unranked means the node's own address was not found in the roster.
const Unranked Rank = -1

const (
	staggerBase = 1 * time.Second
	staggerStep = 30 * time.Second
)

// ResolveRank sorts a copy of the roster lexicographically and returns the
// position of self within it. The sort makes the result independent of the
// order the roster was supplied in, so every fleet member computes the same
// ranking without any coordination.
func ResolveRank(roster []string, self string) Rank {
	sorted := make([]string, len(roster))
	copy(sorted, roster)
	sort.Strings(sorted)

	for i, addr := range sorted {
		if addr == self {
			return Rank(i)
		}
	}
	return Unranked
}

func (r Rank) IsRanked() bool {
	return r >= 0
}

// TargetHour maps the rank onto an hour of day (0-23), spreading the fleet
// evenly across a 24 hour cycle. Returns false when the rank or fleet size
// cannot produce a meaningful hour.
func (r Rank) TargetHour(fleetSize int) (int, bool) {
	if !r.IsRanked() || fleetSize <= 0 {
		return 0, false
	}
	return int(math.Round(24/float64(fleetSize)*float64(r))) % 24, true
}

// StaggerDelay is the per-rank shutdown offset used when the whole fleet
// reacts to the same resync event. Unranked nodes cannot stagger and get
// zero delay.
func (r Rank) StaggerDelay() time.Duration {
	if !r.IsRanked() {
		return 0
	}
	return staggerBase + time.Duration(r)*staggerStep
}

func (r Rank) String() string {
	if !r.IsRanked() {
		return "unranked"
	}
	return strconv.Itoa(int(r))
}
