package favorite

import (
	"time"

	"carrental/internal/domain"
)

type FavoriteResponse struct {
	ID        int64     `json:"id"`
	CarID     int64     `json:"car_id"`
	Car       *CarBrief `json:"car,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CarBrief is the short car card shown in the favorites list.
type CarBrief struct {
	ID          int64   `json:"id"`
	Year        int     `json:"year"`
	PricePerDay float64 `json:"price_per_day"`
	City        string  `json:"city,omitempty"`
	IsListed    bool    `json:"is_listed"`
}

type FavoriteListResponse struct {
	Favorites  []FavoriteResponse `json:"favorites"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PerPage    int                `json:"per_page"`
	TotalPages int                `json:"total_pages"`
}

type CheckFavoriteResponse struct {
	IsFavorite bool `json:"is_favorite"`
}

func ToFavoriteResponse(f *domain.Favorite) FavoriteResponse {
	resp := FavoriteResponse{
		ID:        f.ID,
		CarID:     f.CarID,
		CreatedAt: f.CreatedAt,
	}
	if f.Car != nil {
		resp.Car = &CarBrief{
			ID:          f.Car.ID,
			Year:        f.Car.Year,
			PricePerDay: f.Car.PricePerDay,
			City:        f.Car.City,
			IsListed:    f.Car.IsListed,
		}
	}
	return resp
}

func ToFavoriteListResponse(favorites []domain.Favorite, total int64, page, perPage int) FavoriteListResponse {
	items := make([]FavoriteResponse, len(favorites))
	for i := range favorites {
		items[i] = ToFavoriteResponse(&favorites[i])
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	return FavoriteListResponse{
		Favorites:  items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}
