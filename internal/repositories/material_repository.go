package repositories

import (
	"context"

	"gorm.io/gorm"
)

// MaterialRepository provides access to one material table (homework or
// notes); the same generic implementation backs both.
type MaterialRepository[T any] interface {
	Create(ctx context.Context, tx *gorm.DB, row *T) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*T, error)

	// List orders by creation time descending; owner is preloaded when the
	// listing spans all owners.
	List(ctx context.Context, tx *gorm.DB, filters MaterialFilters) ([]*T, int64, error)

	// Search performs a case-insensitive substring match on name, scoped to
	// one owner, with a fixed page size.
	Search(ctx context.Context, tx *gorm.DB, userID uint, query string, offset int) ([]*T, error)

	Update(ctx context.Context, tx *gorm.DB, row *T) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}
