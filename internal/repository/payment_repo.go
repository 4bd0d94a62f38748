package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carrental/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

// Create maps a violation of the one-payment-per-rental index to ErrDuplicatePayment.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if IsUniqueViolation(err) {
			return domain.ErrDuplicatePayment
		}
		return err
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PaymentRepository) GetByRentalID(ctx context.Context, rentalID int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("rental_id = ?", rentalID).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Model(p).
		Select("status", "payment_date", "updated_at").
		Updates(p).Error
}
