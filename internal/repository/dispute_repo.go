package repository

import (
	"context"

	"gorm.io/gorm"

	"carrental/internal/domain"
)

type DisputeRepository struct {
	db *gorm.DB
}

func NewDisputeRepository(db *gorm.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

func (r *DisputeRepository) Create(ctx context.Context, d *domain.Dispute) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DisputeRepository) GetByID(ctx context.Context, id int64) (*domain.Dispute, error) {
	var d domain.Dispute
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *DisputeRepository) Update(ctx context.Context, d *domain.Dispute) error {
	return r.db.WithContext(ctx).Model(d).
		Select("status", "resolution", "resolved_at", "updated_at").
		Updates(d).Error
}

// List filters by reporter when reporterID > 0 and by status when set.
func (r *DisputeRepository) List(ctx context.Context, reporterID int64, status domain.DisputeStatus, limit, offset int) ([]domain.Dispute, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Dispute{})
	if reporterID > 0 {
		q = q.Where("reporter_id = ?", reporterID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset = Page(limit, offset, 20, 100)
	var out []domain.Dispute
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
