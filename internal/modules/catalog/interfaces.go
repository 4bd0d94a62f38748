package catalog

import (
	"context"

	"carrental/internal/domain"
)

// Store is satisfied by both the plain and the cached catalog repository.
type Store interface {
	CreateMake(ctx context.Context, m *domain.CarMake) error
	ListMakes(ctx context.Context) ([]domain.CarMake, error)
	GetMake(ctx context.Context, id int64) (*domain.CarMake, error)
	CreateModel(ctx context.Context, m *domain.CarModel) error
	ListModels(ctx context.Context, makeID int64) ([]domain.CarModel, error)
	CreateBodyType(ctx context.Context, b *domain.BodyType) error
	ListBodyTypes(ctx context.Context) ([]domain.BodyType, error)
	CreateTransmissionType(ctx context.Context, t *domain.TransmissionType) error
	ListTransmissionTypes(ctx context.Context) ([]domain.TransmissionType, error)
	CreateMotorType(ctx context.Context, m *domain.MotorType) error
	ListMotorTypes(ctx context.Context) ([]domain.MotorType, error)
}
