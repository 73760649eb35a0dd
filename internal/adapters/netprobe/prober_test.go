package netprobe

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/fleetward/internal/domain"
)

type recordingPublisher struct {
	mu        sync.Mutex
	reachable []domain.ReachableEvent
}

func (p *recordingPublisher) PublishReachable(ev domain.ReachableEvent) {
	p.mu.Lock()
	p.reachable = append(p.reachable, ev)
	p.mu.Unlock()
}

func (p *recordingPublisher) PublishCheckpointFailed(domain.CheckpointFailedEvent) {}
func (p *recordingPublisher) PublishResyncRequired(domain.ResyncRequiredEvent)     {}

func (p *recordingPublisher) reachableCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.reachable)
}

type listRoster struct {
	addresses []string
}

func (r *listRoster) Roster() []string { return r.addresses }

func listenLocal(t *testing.T) (net.Listener, string) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l, l.Addr().String()
}

func TestProberAnnouncesReachableOnce(t *testing.T) {
	_, peer := listenLocal(t)
	pub := &recordingPublisher{}
	p := NewProber(&listRoster{addresses: []string{"self:1", peer}}, pub, "self:1", time.Second, time.Second, nil)

	p.probe()
	p.probe()

	require.Equal(t, 1, pub.reachableCount())
	assert.Equal(t, "self:1", pub.reachable[0].Address)
	assert.Equal(t, 0, p.ConnectionLossCount())
}

func TestProberCountsLossTransitions(t *testing.T) {
	listener, peer := listenLocal(t)
	pub := &recordingPublisher{}
	p := NewProber(&listRoster{addresses: []string{peer}}, pub, "self:1", time.Second, 200*time.Millisecond, nil)

	p.probe()
	assert.Equal(t, 0, p.ConnectionLossCount())

	require.NoError(t, listener.Close())
	p.probe()
	assert.Equal(t, 1, p.ConnectionLossCount())

	// Staying offline is one episode, not one per poll.
	p.probe()
	assert.Equal(t, 1, p.ConnectionLossCount())
}

func TestProberNoLossBeforeFirstContact(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewProber(&listRoster{addresses: []string{"127.0.0.1:1"}}, pub, "self:1", time.Second, 200*time.Millisecond, nil)

	p.probe()
	p.probe()

	assert.Equal(t, 0, p.ConnectionLossCount())
	assert.Equal(t, 0, pub.reachableCount())
}

func TestProberSkipsEmptyRoster(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewProber(&listRoster{addresses: []string{"self:1"}}, pub, "self:1", time.Second, time.Second, nil)

	p.probe()

	assert.Equal(t, 0, pub.reachableCount())
	assert.Equal(t, 0, p.ConnectionLossCount())
}

func TestProberReconnectAndSecondLoss(t *testing.T) {
	first, firstAddr := listenLocal(t)
	pub := &recordingPublisher{}
	roster := &listRoster{addresses: []string{firstAddr}}
	p := NewProber(roster, pub, "self:1", time.Second, 200*time.Millisecond, nil)

	p.probe()
	require.NoError(t, first.Close())
	p.probe()
	require.Equal(t, 1, p.ConnectionLossCount())

	second, secondAddr := listenLocal(t)
	roster.addresses = []string{secondAddr}
	p.probe()

	require.NoError(t, second.Close())
	p.probe()

	assert.Equal(t, 2, p.ConnectionLossCount())
	// The reachable event stays a once-per-process announcement.
	assert.Equal(t, 1, pub.reachableCount())
}
