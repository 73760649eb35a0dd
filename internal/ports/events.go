package ports

import "github.com/fleetward/fleetward/internal/domain"

// EventBus is the subscription surface the lifecycle manager consumes. The
// original listener interfaces carried many more callbacks; only the three
// the scheduling core actually reacts to are modeled here.
type EventBus interface {
	OnReachable(fn func(domain.ReachableEvent)) string
	OnCheckpointFailed(fn func(domain.CheckpointFailedEvent)) string
	OnResyncRequired(fn func(domain.ResyncRequiredEvent)) string
	Unsubscribe(id string)
}

// EventPublisher is the producer side, implemented by the same bus and used
// by networking/ledger collaborators.
type EventPublisher interface {
	PublishReachable(ev domain.ReachableEvent)
	PublishCheckpointFailed(ev domain.CheckpointFailedEvent)
	PublishResyncRequired(ev domain.ResyncRequiredEvent)
}
