// Package roster provides fleet roster adapters: a static list for fixed
// deployments and an etcd-backed provider that tracks registrations under a
// key prefix.
package roster

import (
	"log/slog"
	"sync"
)

// StaticProvider serves a fixed roster. SetRoster allows an operator-driven
// swap at runtime; the scheduler reads the roster fresh on every poll, so a
// change takes effect on the next tick.
type StaticProvider struct {
	logger *slog.Logger

	mu        sync.RWMutex
	addresses []string
}

func NewStaticProvider(addresses []string, logger *slog.Logger) *StaticProvider {
	if logger == nil {
		logger = slog.Default()
	}
	p := &StaticProvider{
		logger: logger.With("component", "roster", "adapter", "static"),
	}
	p.SetRoster(addresses)
	return p
}

func (p *StaticProvider) Roster() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.addresses))
	copy(out, p.addresses)
	return out
}

func (p *StaticProvider) SetRoster(addresses []string) {
	// Addresses must be unique within a roster snapshot.
	seen := make(map[string]struct{}, len(addresses))
	deduped := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if _, dup := seen[addr]; dup {
			p.logger.Warn("duplicate address in roster, ignoring", "address", addr)
			continue
		}
		seen[addr] = struct{}{}
		deduped = append(deduped, addr)
	}

	p.mu.Lock()
	p.addresses = deduped
	p.mu.Unlock()
}
