package repository

import (
	"context"

	"gorm.io/gorm"

	"carrental/internal/domain"
)

// FavoriteRepository keeps users' bookmarked cars.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, carID int64) (*domain.Favorite, error)
	Remove(ctx context.Context, userID, carID int64) error
	GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Favorite, int64, error)
	Exists(ctx context.Context, userID, carID int64) (bool, error)
	Count(ctx context.Context, userID int64) (int64, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Add bookmarks a car. A second add of the same pair returns domain.ErrConflict.
func (r *favoriteRepository) Add(ctx context.Context, userID, carID int64) (*domain.Favorite, error) {
	exists, err := r.Exists(ctx, userID, carID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrConflict
	}

	favorite := &domain.Favorite{
		UserID: userID,
		CarID:  carID,
	}
	if err := r.db.WithContext(ctx).Create(favorite).Error; err != nil {
		return nil, conflictOn(err)
	}

	if err := r.db.WithContext(ctx).Preload("Car").First(favorite, favorite.ID).Error; err != nil {
		return nil, err
	}
	return favorite, nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, carID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND car_id = ?", userID, carID).
		Delete(&domain.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByUserID pages through a user's favorites, newest first, and also
// returns the total for pagination.
func (r *favoriteRepository) GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Favorite, int64, error) {
	var favorites []domain.Favorite
	var total int64

	if err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Preload("Car").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&favorites).Error; err != nil {
		return nil, 0, err
	}
	return favorites, total, nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, carID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("user_id = ? AND car_id = ?", userID, carID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *favoriteRepository) Count(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
