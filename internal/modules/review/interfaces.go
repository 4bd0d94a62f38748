package review

import (
	"context"

	"carrental/internal/domain"
)

// RentalReader returns a rental with its time-driven status already applied.
type RentalReader interface {
	Get(ctx context.Context, id int64) (*domain.Rental, error)
}

type CarOwners interface {
	OwnerID(ctx context.Context, carID int64) (int64, error)
}

type ReviewStore interface {
	Create(ctx context.Context, rv *domain.Review) error
	ListByReviewee(ctx context.Context, revieweeID int64, limit, offset int) ([]domain.Review, int64, error)
	AverageRating(ctx context.Context, revieweeID int64) (float64, error)
}

type Notifier interface {
	Notify(ctx context.Context, n *domain.Notification) error
}
