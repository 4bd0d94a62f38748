package repository

import (
	"context"

	"gorm.io/gorm"

	"carrental/internal/domain"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create returns domain.ErrConflict when the reviewer already rated this rental.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	if err := r.db.WithContext(ctx).Create(rv).Error; err != nil {
		return conflictOn(err)
	}
	return nil
}

func (r *ReviewRepository) Exists(ctx context.Context, rentalID, reviewerID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("rental_id = ? AND reviewer_id = ?", rentalID, reviewerID).
		Count(&n).Error
	return n > 0, err
}

func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID int64, limit, offset int) ([]domain.Review, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("reviewee_id = ?", revieweeID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset = Page(limit, offset, 20, 100)
	var out []domain.Review
	err := r.db.WithContext(ctx).
		Where("reviewee_id = ?", revieweeID).
		Preload("Reviewer").
		Order("review_date DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// AverageRating is 0 when the user has no reviews.
func (r *ReviewRepository) AverageRating(ctx context.Context, revieweeID int64) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("AVG(rating)").
		Where("reviewee_id = ?", revieweeID).
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}
