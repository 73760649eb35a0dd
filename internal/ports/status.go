package ports

import "github.com/fleetward/fleetward/internal/domain"

// StatusReporter exposes a point-in-time snapshot for the status endpoint.
type StatusReporter interface {
	Status() domain.Status
}
