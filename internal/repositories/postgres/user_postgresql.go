package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tutorlab/tutoring-service/internal/cache"
	"github.com/tutorlab/tutoring-service/internal/models"
	"github.com/tutorlab/tutoring-service/internal/repositories"
)

type UserPostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewUserPostgreSQL(db *gorm.DB, cacheHelper *cache.CacheHelper) repositories.UserRepository {
	return &UserPostgreSQL{
		db:    db,
		cache: cacheHelper,
	}
}

// getDB returns the transaction DB if provided, otherwise the default DB.
func (r *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if user.TelegramHash == "" {
		user.TelegramHash = models.GenerateTelegramHash()
	}
	if err := r.getDB(tx).WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := r.getDB(tx).WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgreSQL) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := r.getDB(tx).WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByTelegramHash resolves a pending link code. Lookups go through the cache
// because the bot poller hits this path on every /start deep link.
func (r *UserPostgreSQL) GetByTelegramHash(ctx context.Context, tx *gorm.DB, hash string) (*models.User, error) {
	var user models.User
	cacheKey := fmt.Sprintf("link:%s", hash)

	err := r.cache.CacheOrExecute(ctx, cacheKey, &user, cache.LinkCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := r.getDB(tx).WithContext(ctx).Where("telegram_hash = ?", hash).First(&dbUser).Error; err != nil {
			return nil, err
		}
		return &dbUser, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	limit, offset := repositories.Normalize(filters.Limit, filters.Offset)

	var total int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("is_super = ?", false).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []*models.User
	err = r.getDB(tx).WithContext(ctx).
		Where("is_super = ?", false).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (r *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := r.getDB(tx).WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	r.invalidateLink(ctx, user.TelegramHash)
	return nil
}

func (r *UserPostgreSQL) UpdatePassword(ctx context.Context, tx *gorm.DB, id uint, passwordHash string) error {
	res := r.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("failed to update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := r.getDB(tx).WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RedeemLink binds a Telegram chat to the user owning hash and rotates the
// hash so the code cannot be reused.
func (r *UserPostgreSQL) RedeemLink(ctx context.Context, tx *gorm.DB, hash string, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.getDB(tx).WithContext(ctx).Where("telegram_hash = ?", hash).First(&user).Error
	if err != nil {
		return nil, err
	}

	user.TelegramID = &telegramID
	user.TelegramHash = models.GenerateTelegramHash()
	if err := r.getDB(tx).WithContext(ctx).Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to redeem link: %w", err)
	}
	r.invalidateLink(ctx, hash)
	return &user, nil
}

func (r *UserPostgreSQL) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

func (r *UserPostgreSQL) invalidateLink(ctx context.Context, hash string) {
	if hash == "" {
		return
	}
	_ = r.cache.Delete(ctx, fmt.Sprintf("link:%s", hash))
}
