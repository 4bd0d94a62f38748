package favorite

import (
	"context"

	"carrental/internal/domain"
	"carrental/internal/repository"
)

type CarReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Car, error)
}

type Service struct {
	repo repository.FavoriteRepository
	cars CarReader
}

func NewService(repo repository.FavoriteRepository, cars CarReader) *Service {
	return &Service{repo: repo, cars: cars}
}

// Add bookmarks an existing car; adding the same car twice is a conflict.
func (s *Service) Add(ctx context.Context, userID, carID int64) (*domain.Favorite, error) {
	if _, err := s.cars.GetByID(ctx, carID); err != nil {
		return nil, err
	}
	return s.repo.Add(ctx, userID, carID)
}

func (s *Service) Remove(ctx context.Context, userID, carID int64) error {
	return s.repo.Remove(ctx, userID, carID)
}

func (s *Service) List(ctx context.Context, userID int64, page, perPage int) (FavoriteListResponse, error) {
	items, total, err := s.repo.GetByUserID(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return FavoriteListResponse{}, err
	}
	return ToFavoriteListResponse(items, total, page, perPage), nil
}

func (s *Service) IsFavorite(ctx context.Context, userID, carID int64) (bool, error) {
	return s.repo.Exists(ctx, userID, carID)
}
