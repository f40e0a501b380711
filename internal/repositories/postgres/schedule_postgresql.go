package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tutorlab/tutoring-service/internal/models"
	"github.com/tutorlab/tutoring-service/internal/repositories"
)

type SchedulePostgreSQL struct {
	db *gorm.DB
}

func NewSchedulePostgreSQL(db *gorm.DB) repositories.ScheduleRepository {
	return &SchedulePostgreSQL{db: db}
}

func (r *SchedulePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *SchedulePostgreSQL) Create(ctx context.Context, tx *gorm.DB, schedule *models.Schedule) error {
	if err := r.getDB(tx).WithContext(ctx).Create(schedule).Error; err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	// Resolve the owner so creation events carry the recipient snapshot.
	return r.getDB(tx).WithContext(ctx).Preload("User").First(schedule, schedule.ID).Error
}

func (r *SchedulePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Schedule, error) {
	var schedule models.Schedule
	err := r.getDB(tx).WithContext(ctx).Preload("User").First(&schedule, id).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *SchedulePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ScheduleFilters) ([]*models.Schedule, int64, error) {
	limit, offset := repositories.Normalize(filters.Limit, filters.Offset)

	applyFilters := func(q *gorm.DB) *gorm.DB {
		if filters.ActiveOnly {
			q = q.Where("scheduled_at > ?", time.Now())
		}
		if filters.UserID != nil {
			q = q.Where("user_id = ?", *filters.UserID)
		}
		return q
	}

	var total int64
	if err := applyFilters(r.getDB(tx).WithContext(ctx).Model(&models.Schedule{})).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count schedules: %w", err)
	}

	query := applyFilters(r.getDB(tx).WithContext(ctx).Model(&models.Schedule{}))
	if filters.UserID == nil {
		query = query.Preload("User")
	}

	var schedules []*models.Schedule
	err := query.
		Order("scheduled_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&schedules).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, total, nil
}

func (r *SchedulePostgreSQL) UpdateTime(ctx context.Context, tx *gorm.DB, id uint, scheduledAt time.Time) (*models.Schedule, error) {
	var schedule models.Schedule
	if err := r.getDB(tx).WithContext(ctx).First(&schedule, id).Error; err != nil {
		return nil, err
	}

	schedule.ScheduledAt = scheduledAt
	if err := r.getDB(tx).WithContext(ctx).Save(&schedule).Error; err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}
	return &schedule, nil
}

func (r *SchedulePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := r.getDB(tx).WithContext(ctx).Delete(&models.Schedule{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete schedule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListPendingReminders selects future lessons still awaiting their reminder
// whose owner has a linked Telegram chat.
func (r *SchedulePostgreSQL) ListPendingReminders(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Schedule, error) {
	var schedules []*models.Schedule
	err := r.getDB(tx).WithContext(ctx).
		Joins("JOIN users ON users.id = schedule.user_id").
		Where("schedule.tg_notified = ?", false).
		Where("schedule.scheduled_at > ?", now).
		Where("users.telegram_id IS NOT NULL").
		Preload("User").
		Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reminders: %w", err)
	}
	return schedules, nil
}

func (r *SchedulePostgreSQL) MarkNotified(ctx context.Context, tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.Schedule{}).
		Where("id IN ?", ids).
		Update("tg_notified", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark reminders sent: %w", err)
	}
	return nil
}
