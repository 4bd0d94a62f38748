package payment

import (
	"context"

	"gorm.io/gorm"

	"carrental/internal/domain"
)

// RentalLinker is the rental lifecycle as seen from payments.
type RentalLinker interface {
	Get(ctx context.Context, id int64) (*domain.Rental, error)
	ApplyPaymentStatus(ctx context.Context, tx *gorm.DB, r *domain.Rental, ownerID int64, status domain.PaymentStatus) ([]*domain.Notification, error)
}

type Publisher interface {
	Publish(ns ...*domain.Notification)
}

// RentalReader resolves the rental a new payment is for.
type RentalReader interface {
	Get(ctx context.Context, id int64) (*domain.Rental, error)
}
