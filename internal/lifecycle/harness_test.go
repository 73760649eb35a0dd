package lifecycle

import (
	"sync"
	"sync/atomic"

	"github.com/fleetward/fleetward/internal/ports"
)

type countingDelegate struct {
	calls atomic.Int32
}

func (d *countingDelegate) GracefulShutdown() {
	d.calls.Add(1)
}

type fakeRoster struct {
	mu        sync.Mutex
	addresses []string
}

func (r *fakeRoster) Roster() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.addresses))
	copy(out, r.addresses)
	return out
}

func (r *fakeRoster) set(addresses []string) {
	r.mu.Lock()
	r.addresses = addresses
	r.mu.Unlock()
}

type fakeMonitor struct {
	mu     sync.Mutex
	losses int
}

func (m *fakeMonitor) ConnectionLossCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.losses
}

func (m *fakeMonitor) setLosses(n int) {
	m.mu.Lock()
	m.losses = n
	m.mu.Unlock()
}

type memFlagStore struct {
	mu    sync.Mutex
	flags map[string]bool

	setErr error
}

func newMemFlagStore() *memFlagStore {
	return &memFlagStore{flags: make(map[string]bool)}
}

func (s *memFlagStore) GetBool(key string) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.flags[key]
	return v, ok, nil
}

func (s *memFlagStore) SetBool(key string, value bool) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.mu.Lock()
	s.flags[key] = value
	s.mu.Unlock()
	return nil
}

func (s *memFlagStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.flags, key)
	s.mu.Unlock()
	return nil
}

func (s *memFlagStore) Close() error { return nil }

type stubHandle struct {
	stops atomic.Int32
}

func (h *stubHandle) Stop() {
	h.stops.Add(1)
}

var _ ports.TimerHandle = (*stubHandle)(nil)
var _ ports.NetworkMonitor = (*fakeMonitor)(nil)
var _ ports.RosterProvider = (*fakeRoster)(nil)
var _ ports.FlagStore = (*memFlagStore)(nil)
var _ ports.ShutdownDelegate = (*countingDelegate)(nil)
