package repositories

import (
	"context"

	"github.com/tutorlab/tutoring-service/internal/models"
)

// Repository aggregates all entity repositories behind one handle.
type Repository interface {
	User() UserRepository
	Schedule() ScheduleRepository
	Homework() MaterialRepository[models.Homework]
	Note() MaterialRepository[models.Note]

	// WithTransaction runs fn inside a single database transaction; every
	// repository obtained from the passed handle shares it.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns repository lifecycle: connection checks on startup
// and graceful shutdown.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
