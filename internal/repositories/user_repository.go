package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/tutorlab/tutoring-service/internal/models"
)

// UserRepository provides access to user records. The tx parameter carries an
// open transaction; nil falls back to the repository's own connection.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	GetByTelegramHash(ctx context.Context, tx *gorm.DB, hash string) (*models.User, error)

	// List returns non-superuser accounts ordered by creation time descending.
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	UpdatePassword(ctx context.Context, tx *gorm.DB, id uint, passwordHash string) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// RedeemLink binds the Telegram chat id to the user owning hash and
	// rotates the hash to a fresh code. Returns the updated user.
	RedeemLink(ctx context.Context, tx *gorm.DB, hash string, telegramID int64) (*models.User, error)

	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)
}
