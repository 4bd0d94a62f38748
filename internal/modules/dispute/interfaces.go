package dispute

import (
	"context"

	"carrental/internal/domain"
)

type RentalReader interface {
	Get(ctx context.Context, id int64) (*domain.Rental, error)
}

type CarOwners interface {
	OwnerID(ctx context.Context, carID int64) (int64, error)
}

type DisputeStore interface {
	Create(ctx context.Context, d *domain.Dispute) error
	GetByID(ctx context.Context, id int64) (*domain.Dispute, error)
	Update(ctx context.Context, d *domain.Dispute) error
	List(ctx context.Context, reporterID int64, status domain.DisputeStatus, limit, offset int) ([]domain.Dispute, int64, error)
}

type Notifier interface {
	Notify(ctx context.Context, n *domain.Notification) error
}
