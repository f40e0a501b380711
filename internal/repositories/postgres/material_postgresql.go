package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tutorlab/tutoring-service/internal/models"
	"github.com/tutorlab/tutoring-service/internal/repositories"
)

// MaterialPostgreSQL backs one material table. The same implementation is
// instantiated for homework and for notes.
type MaterialPostgreSQL[T any, PT models.MaterialPtr[T]] struct {
	db *gorm.DB
}

func NewMaterialPostgreSQL[T any, PT models.MaterialPtr[T]](db *gorm.DB) repositories.MaterialRepository[T] {
	return &MaterialPostgreSQL[T, PT]{db: db}
}

func (r *MaterialPostgreSQL[T, PT]) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *MaterialPostgreSQL[T, PT]) tableName() string {
	return PT(new(T)).TableName()
}

func (r *MaterialPostgreSQL[T, PT]) Create(ctx context.Context, tx *gorm.DB, row *T) error {
	if err := r.getDB(tx).WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", r.tableName(), err)
	}
	// Resolve the owner so creation events carry the recipient snapshot.
	return r.getDB(tx).WithContext(ctx).Preload("User").First(row, PT(row).Record().ID).Error
}

func (r *MaterialPostgreSQL[T, PT]) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*T, error) {
	row := new(T)
	err := r.getDB(tx).WithContext(ctx).Preload("User").First(row, id).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *MaterialPostgreSQL[T, PT]) List(ctx context.Context, tx *gorm.DB, filters repositories.MaterialFilters) ([]*T, int64, error) {
	limit, offset := repositories.Normalize(filters.Limit, filters.Offset)

	applyFilters := func(q *gorm.DB) *gorm.DB {
		if filters.UserID != nil {
			q = q.Where("user_id = ?", *filters.UserID)
		}
		return q
	}

	var total int64
	if err := applyFilters(r.getDB(tx).WithContext(ctx).Model(new(T))).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", r.tableName(), err)
	}

	query := applyFilters(r.getDB(tx).WithContext(ctx).Model(new(T)))
	if filters.UserID == nil {
		query = query.Preload("User")
	}

	var rows []*T
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", r.tableName(), err)
	}
	return rows, total, nil
}

func (r *MaterialPostgreSQL[T, PT]) Search(ctx context.Context, tx *gorm.DB, userID uint, query string, offset int) ([]*T, error) {
	if offset < 0 {
		offset = 0
	}

	var rows []*T
	err := r.getDB(tx).WithContext(ctx).
		Model(new(T)).
		Where("user_id = ?", userID).
		Where("name ILIKE ?", "%"+query+"%").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(repositories.SearchPageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", r.tableName(), err)
	}
	return rows, nil
}

func (r *MaterialPostgreSQL[T, PT]) Update(ctx context.Context, tx *gorm.DB, row *T) error {
	if err := r.getDB(tx).WithContext(ctx).Omit("User").Save(row).Error; err != nil {
		return fmt.Errorf("failed to update %s: %w", r.tableName(), err)
	}
	return nil
}

func (r *MaterialPostgreSQL[T, PT]) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := r.getDB(tx).WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete from %s: %w", r.tableName(), res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
