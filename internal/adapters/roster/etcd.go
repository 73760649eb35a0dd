package roster

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/fleetward/fleetward/internal/domain"
)

// EtcdProvider registers this node under a TTL lease and mirrors every
// registration below the configured prefix into an in-memory roster.
type EtcdProvider struct {
	cfg    domain.EtcdRosterConfig
	cli    *clientv3.Client
	logger *slog.Logger

	mu      sync.RWMutex
	peers   map[string]string
	leaseID clientv3.LeaseID

	cancel  context.CancelFunc
	started bool
}

func NewEtcdProvider(cfg domain.EtcdRosterConfig, logger *slog.Logger) (*EtcdProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, domain.NewLifecycleError("roster-etcd", "connect", err)
	}
	return &EtcdProvider{
		cfg:    cfg,
		cli:    cli,
		logger: logger.With("component", "roster", "adapter", "etcd"),
		peers:  make(map[string]string),
	}, nil
}

// Start registers selfID -> selfAddr under the prefix, loads the current
// registrations and begins watching for changes.
func (p *EtcdProvider) Start(ctx context.Context, selfID, selfAddr string) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return domain.NewLifecycleError("roster-etcd", "start", domain.ErrAlreadyStarted)
	}
	p.started = true
	p.mu.Unlock()

	lease, err := p.cli.Grant(ctx, p.cfg.LeaseTTL)
	if err != nil {
		return domain.NewLifecycleError("roster-etcd", "grant_lease", err)
	}
	p.leaseID = lease.ID

	key := p.cfg.Prefix + selfID
	if _, err := p.cli.Put(ctx, key, selfAddr, clientv3.WithLease(lease.ID)); err != nil {
		return domain.NewLifecycleError("roster-etcd", "register", err)
	}

	keepAlive, err := p.cli.KeepAlive(ctx, lease.ID)
	if err != nil {
		return domain.NewLifecycleError("roster-etcd", "keepalive", err)
	}
	go func() {
		for range keepAlive {
		}
		p.logger.Warn("lease keepalive channel closed")
	}()

	resp, err := p.cli.Get(ctx, p.cfg.Prefix, clientv3.WithPrefix())
	if err != nil {
		return domain.NewLifecycleError("roster-etcd", "load", err)
	}
	p.mu.Lock()
	for _, kv := range resp.Kvs {
		id := strings.TrimPrefix(string(kv.Key), p.cfg.Prefix)
		p.peers[id] = string(kv.Value)
	}
	size := len(p.peers)
	p.mu.Unlock()

	watchCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.watch(watchCtx)

	p.logger.Info("etcd roster started",
		"prefix", p.cfg.Prefix,
		"self_id", selfID,
		"fleet_size", size)
	return nil
}

func (p *EtcdProvider) watch(ctx context.Context) {
	wch := p.cli.Watch(ctx, p.cfg.Prefix, clientv3.WithPrefix())
	for wresp := range wch {
		if wresp.Err() != nil {
			p.logger.Error("roster watch error", "error", wresp.Err())
			continue
		}
		p.mu.Lock()
		for _, ev := range wresp.Events {
			id := strings.TrimPrefix(string(ev.Kv.Key), p.cfg.Prefix)
			switch ev.Type {
			case mvccpb.PUT:
				p.peers[id] = string(ev.Kv.Value)
				p.logger.Info("fleet member registered", "id", id, "address", string(ev.Kv.Value))
			case mvccpb.DELETE:
				delete(p.peers, id)
				p.logger.Info("fleet member gone", "id", id)
			}
		}
		p.mu.Unlock()
	}
}

func (p *EtcdProvider) Roster() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.peers))
	for _, addr := range p.peers {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

func (p *EtcdProvider) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return nil
	}
	p.started = false

	if p.cancel != nil {
		p.cancel()
	}
	if p.leaseID != 0 {
		if _, err := p.cli.Revoke(ctx, p.leaseID); err != nil {
			p.logger.Warn("failed to revoke roster lease", "error", err)
		}
	}
	return p.cli.Close()
}
