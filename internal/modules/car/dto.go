package car

import (
	"fmt"
	"time"

	"carrental/internal/domain"
	"carrental/internal/repository"
)

type CreateCarRequest struct {
	ModelID            int64    `json:"model_id" binding:"required,gt=0"`
	BodyTypeID         int64    `json:"body_type_id" binding:"required,gt=0"`
	TransmissionTypeID int64    `json:"transmission_type_id" binding:"required,gt=0"`
	MotorTypeID        int64    `json:"motor_type_id" binding:"required,gt=0"`
	Year               int      `json:"year" binding:"required"`
	PricePerDay        float64  `json:"price_per_day" binding:"required,gt=0"`
	City               string   `json:"city" binding:"max=100"`
	Latitude           *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude          *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Description        string   `json:"description" binding:"max=5000"`
	IsListed           *bool    `json:"is_listed"`
}

// UpdateCarRequest is a partial update: nil fields are left as they are.
type UpdateCarRequest struct {
	ModelID            *int64   `json:"model_id" binding:"omitempty,gt=0"`
	BodyTypeID         *int64   `json:"body_type_id" binding:"omitempty,gt=0"`
	TransmissionTypeID *int64   `json:"transmission_type_id" binding:"omitempty,gt=0"`
	MotorTypeID        *int64   `json:"motor_type_id" binding:"omitempty,gt=0"`
	Year               *int     `json:"year"`
	PricePerDay        *float64 `json:"price_per_day"`
	City               *string  `json:"city" binding:"omitempty,max=100"`
	Latitude           *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude          *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Description        *string  `json:"description" binding:"omitempty,max=5000"`
	IsListed           *bool    `json:"is_listed"`
}

type ListingRequest struct {
	IsListed *bool `json:"is_listed" binding:"required"`
}

// SearchQuery is bound from the query string of GET /cars.
type SearchQuery struct {
	City               string   `form:"city"`
	DistanceKm         float64  `form:"distance_km"`
	RenterLat          *float64 `form:"renter_lat"`
	RenterLon          *float64 `form:"renter_lon"`
	MakeID             int64    `form:"make_id"`
	ModelID            int64    `form:"model_id"`
	BodyTypeID         int64    `form:"body_type_id"`
	TransmissionTypeID int64    `form:"transmission_type_id"`
	MotorTypeID        int64    `form:"motor_type_id"`
	MinPrice           float64  `form:"min_price"`
	MaxPrice           float64  `form:"max_price"`
	MinYear            int      `form:"min_year"`
	MaxYear            int      `form:"max_year"`
	AvailableFrom      string   `form:"available_from"`
	AvailableTo        string   `form:"available_to"`
	SortBy             string   `form:"sort_by" binding:"omitempty,oneof=price year created_at"`
	Order              string   `form:"order" binding:"omitempty,oneof=asc desc"`
}

// Filter converts the query into a repository filter. Both ends of the
// availability window are required together. A radius search is ignored
// when a city is given.
func (q SearchQuery) Filter(limit, offset int) (repository.CarFilter, error) {
	f := repository.CarFilter{
		City:               q.City,
		MakeID:             q.MakeID,
		ModelID:            q.ModelID,
		BodyTypeID:         q.BodyTypeID,
		TransmissionTypeID: q.TransmissionTypeID,
		MotorTypeID:        q.MotorTypeID,
		MinPrice:           q.MinPrice,
		MaxPrice:           q.MaxPrice,
		MinYear:            q.MinYear,
		MaxYear:            q.MaxYear,
		SortBy:             q.SortBy,
		SortDesc:           q.Order == "desc",
		Limit:              limit,
		Offset:             offset,
	}
	if q.MinPrice > 0 && q.MaxPrice > 0 && q.MinPrice > q.MaxPrice {
		return f, fmt.Errorf("%w: min_price is greater than max_price", domain.ErrValidation)
	}

	if q.DistanceKm < 0 {
		return f, fmt.Errorf("%w: distance_km must not be negative", domain.ErrValidation)
	}
	if q.DistanceKm > 0 && q.City == "" {
		if q.RenterLat == nil || q.RenterLon == nil {
			return f, fmt.Errorf("%w: distance_km needs renter_lat and renter_lon", domain.ErrValidation)
		}
		if err := domain.ValidateCoordinates(*q.RenterLat, *q.RenterLon); err != nil {
			return f, err
		}
		f.Near = &repository.GeoRadius{Lat: *q.RenterLat, Lon: *q.RenterLon, RadiusKm: q.DistanceKm}
	}

	if (q.AvailableFrom == "") != (q.AvailableTo == "") {
		return f, fmt.Errorf("%w: available_from and available_to go together", domain.ErrValidation)
	}
	if q.AvailableFrom != "" {
		from, err := parseDay("available_from", q.AvailableFrom)
		if err != nil {
			return f, err
		}
		to, err := parseDay("available_to", q.AvailableTo)
		if err != nil {
			return f, err
		}
		if to.Before(from) {
			return f, fmt.Errorf("%w: available_to is before available_from", domain.ErrValidation)
		}
		f.AvailableFrom, f.AvailableTo = &from, &to
	}
	return f, nil
}

func parseDay(field, v string) (time.Time, error) {
	t, err := domain.ParseDay(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", domain.ErrValidation, field)
	}
	return t, nil
}

type ListResponse struct {
	Cars  []domain.Car `json:"cars"`
	Total int64        `json:"total"`
}
