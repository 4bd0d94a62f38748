package catalog

import (
	"context"
	"fmt"
	"strings"

	"carrental/internal/domain"
	"carrental/internal/pkg/logger"
)

type Service struct {
	store Store
	log   logger.Logger
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{store: store, log: log}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return name, nil
}

func (s *Service) CreateMake(ctx context.Context, name string) (*domain.CarMake, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	m := &domain.CarMake{Name: name}
	if err := s.store.CreateMake(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info("car make created", map[string]interface{}{"make_id": m.ID, "name": name})
	return m, nil
}

func (s *Service) ListMakes(ctx context.Context) ([]domain.CarMake, error) {
	return s.store.ListMakes(ctx)
}

func (s *Service) CreateModel(ctx context.Context, makeID int64, name string) (*domain.CarModel, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	mk, err := s.store.GetMake(ctx, makeID)
	if err != nil {
		return nil, err
	}
	m := &domain.CarModel{MakeID: mk.ID, Name: name}
	if err := s.store.CreateModel(ctx, m); err != nil {
		return nil, err
	}
	m.Make = mk
	return m, nil
}

// ListModels lists every model when makeID is 0.
func (s *Service) ListModels(ctx context.Context, makeID int64) ([]domain.CarModel, error) {
	if makeID > 0 {
		if _, err := s.store.GetMake(ctx, makeID); err != nil {
			return nil, err
		}
	}
	return s.store.ListModels(ctx, makeID)
}

func (s *Service) CreateBodyType(ctx context.Context, name string) (*domain.BodyType, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	b := &domain.BodyType{Name: name}
	return b, s.store.CreateBodyType(ctx, b)
}

func (s *Service) ListBodyTypes(ctx context.Context) ([]domain.BodyType, error) {
	return s.store.ListBodyTypes(ctx)
}

func (s *Service) CreateTransmissionType(ctx context.Context, name string) (*domain.TransmissionType, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	t := &domain.TransmissionType{Name: name}
	return t, s.store.CreateTransmissionType(ctx, t)
}

func (s *Service) ListTransmissionTypes(ctx context.Context) ([]domain.TransmissionType, error) {
	return s.store.ListTransmissionTypes(ctx)
}

func (s *Service) CreateMotorType(ctx context.Context, name string) (*domain.MotorType, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	m := &domain.MotorType{Name: name}
	return m, s.store.CreateMotorType(ctx, m)
}

func (s *Service) ListMotorTypes(ctx context.Context) ([]domain.MotorType, error) {
	return s.store.ListMotorTypes(ctx)
}
