// Package events carries the three collaborator signals the lifecycle core
// consumes: reachability, checkpoint failure and resync requests.
package events

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fleetward/fleetward/internal/domain"
)

// Bus is a small in-process pub/sub: handler maps keyed by subscription ID.
// Publishers run handlers synchronously on their own goroutine; subscribers
// that need the scheduling context hop onto it themselves.
type Bus struct {
	logger *slog.Logger

	mu               sync.RWMutex
	reachable        map[string]func(domain.ReachableEvent)
	checkpointFailed map[string]func(domain.CheckpointFailedEvent)
	resyncRequired   map[string]func(domain.ResyncRequiredEvent)
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger:           logger.With("component", "event-bus"),
		reachable:        make(map[string]func(domain.ReachableEvent)),
		checkpointFailed: make(map[string]func(domain.CheckpointFailedEvent)),
		resyncRequired:   make(map[string]func(domain.ResyncRequiredEvent)),
	}
}

func (b *Bus) OnReachable(fn func(domain.ReachableEvent)) string {
	id := uuid.New().String()
	b.mu.Lock()
	b.reachable[id] = fn
	b.mu.Unlock()
	return id
}

func (b *Bus) OnCheckpointFailed(fn func(domain.CheckpointFailedEvent)) string {
	id := uuid.New().String()
	b.mu.Lock()
	b.checkpointFailed[id] = fn
	b.mu.Unlock()
	return id
}

func (b *Bus) OnResyncRequired(fn func(domain.ResyncRequiredEvent)) string {
	id := uuid.New().String()
	b.mu.Lock()
	b.resyncRequired[id] = fn
	b.mu.Unlock()
	return id
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	delete(b.reachable, id)
	delete(b.checkpointFailed, id)
	delete(b.resyncRequired, id)
	b.mu.Unlock()
}

func (b *Bus) PublishReachable(ev domain.ReachableEvent) {
	b.mu.RLock()
	handlers := make([]func(domain.ReachableEvent), 0, len(b.reachable))
	for _, fn := range b.reachable {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	b.logger.Debug("publishing reachable event", "handlers", len(handlers))
	for _, fn := range handlers {
		fn(ev)
	}
}

func (b *Bus) PublishCheckpointFailed(ev domain.CheckpointFailedEvent) {
	b.mu.RLock()
	handlers := make([]func(domain.CheckpointFailedEvent), 0, len(b.checkpointFailed))
	for _, fn := range b.checkpointFailed {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	b.logger.Debug("publishing checkpoint-failed event", "handlers", len(handlers))
	for _, fn := range handlers {
		fn(ev)
	}
}

func (b *Bus) PublishResyncRequired(ev domain.ResyncRequiredEvent) {
	b.mu.RLock()
	handlers := make([]func(domain.ResyncRequiredEvent), 0, len(b.resyncRequired))
	for _, fn := range b.resyncRequired {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	b.logger.Debug("publishing resync-required event", "handlers", len(handlers))
	for _, fn := range handlers {
		fn(ev)
	}
}
