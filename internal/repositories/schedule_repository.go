package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tutorlab/tutoring-service/internal/models"
)

// ScheduleRepository provides access to lesson bookings.
type ScheduleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, schedule *models.Schedule) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Schedule, error)

	// List orders by scheduled time descending; owner is preloaded when the
	// listing spans all owners.
	List(ctx context.Context, tx *gorm.DB, filters ScheduleFilters) ([]*models.Schedule, int64, error)

	// UpdateTime changes the scheduled timestamp; nothing else is mutable
	// through the request surface.
	UpdateTime(ctx context.Context, tx *gorm.DB, id uint, scheduledAt time.Time) (*models.Schedule, error)

	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// ListPendingReminders returns future lessons whose reminder was not sent
	// yet and whose owner has a linked Telegram chat, owner preloaded.
	ListPendingReminders(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Schedule, error)

	// MarkNotified flips the reminder flag for the whole batch in one write.
	MarkNotified(ctx context.Context, tx *gorm.DB, ids []uint) error
}
