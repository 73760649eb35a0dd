// Package netprobe implements the NetworkMonitor port for the standalone
// daemon by TCP-dialing fleet peers. In embedded deployments the real p2p
// layer supplies the monitor instead.
package netprobe

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/fleetward/fleetward/internal/domain"
	"github.com/fleetward/fleetward/internal/ports"
)

type Prober struct {
	roster      ports.RosterProvider
	publisher   ports.EventPublisher
	self        string
	interval    time.Duration
	dialTimeout time.Duration
	logger      *slog.Logger

	mu         sync.Mutex
	losses     int
	connected  bool
	everOnline bool
	started    bool

	cancel context.CancelFunc
	done   chan struct{}
}

func NewProber(roster ports.RosterProvider, publisher ports.EventPublisher, self string, interval, dialTimeout time.Duration, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	return &Prober{
		roster:      roster,
		publisher:   publisher,
		self:        self,
		interval:    interval,
		dialTimeout: dialTimeout,
		logger:      logger.With("component", "net-prober"),
	}
}

func (p *Prober) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return domain.NewLifecycleError("net-prober", "start", domain.ErrAlreadyStarted)
	}
	p.started = true
	p.mu.Unlock()

	probeCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.loop(probeCtx)
	return nil
}

func (p *Prober) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.probe()
	for {
		select {
		case <-ticker.C:
			p.probe()
		case <-ctx.Done():
			return
		}
	}
}

func (p *Prober) probe() {
	peers := p.peers()
	if len(peers) == 0 {
		return
	}

	reachedAny := false
	for _, addr := range peers {
		conn, err := net.DialTimeout("tcp", addr, p.dialTimeout)
		if err != nil {
			continue
		}
		conn.Close()
		reachedAny = true
		break
	}

	var (
		announce bool
		lost     bool
		episodes int
	)
	p.mu.Lock()
	if reachedAny {
		p.connected = true
		if !p.everOnline {
			p.everOnline = true
			announce = true
		}
	} else if p.connected {
		// Only a transition from connected to fully disconnected counts
		// as a loss episode; staying offline does not inflate the counter.
		p.connected = false
		p.losses++
		lost = true
		episodes = p.losses
	}
	p.mu.Unlock()

	if announce {
		p.logger.Info("fleet reachable", "peers", len(peers))
		p.publisher.PublishReachable(domain.ReachableEvent{
			Address: p.self,
			At:      time.Now(),
		})
	}
	if lost {
		p.logger.Warn("all peer connections lost", "episodes", episodes)
	}
}

func (p *Prober) peers() []string {
	all := p.roster.Roster()
	peers := make([]string, 0, len(all))
	for _, addr := range all {
		if addr != p.self {
			peers = append(peers, addr)
		}
	}
	return peers
}

// ConnectionLossCount implements ports.NetworkMonitor.
func (p *Prober) ConnectionLossCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.losses
}

func (p *Prober) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.started = false
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
