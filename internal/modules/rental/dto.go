package rental

import (
	"fmt"
	"time"

	"carrental/internal/domain"
)

type BookRequest struct {
	CarID     int64  `json:"car_id" binding:"required,gt=0"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// Window parses the request dates (YYYY-MM-DD).
func (r BookRequest) Window() (time.Time, time.Time, error) {
	start, err := domain.ParseDay(r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", domain.ErrValidation)
	}
	end, err := domain.ParseDay(r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", domain.ErrValidation)
	}
	return start, end, nil
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type RentalResponse struct {
	ID                 int64               `json:"id"`
	CarID              int64               `json:"car_id"`
	RenterID           int64               `json:"renter_id"`
	StartDate          string              `json:"start_date"`
	EndDate            string              `json:"end_date"`
	Days               int                 `json:"days"`
	TotalPrice         float64             `json:"total_price"`
	Status             domain.RentalStatus `json:"status"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
	Payment            *domain.Payment     `json:"payment,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func ToResponse(r *domain.Rental) RentalResponse {
	return RentalResponse{
		ID:                 r.ID,
		CarID:              r.CarID,
		RenterID:           r.RenterID,
		StartDate:          r.StartDate.Format(domain.DateLayout),
		EndDate:            r.EndDate.Format(domain.DateLayout),
		Days:               r.Days(),
		TotalPrice:         r.TotalPrice,
		Status:             r.Status,
		CancellationReason: r.CancellationReason,
		CancelledAt:        r.CancelledAt,
		Payment:            r.Payment,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func ToResponses(rs []domain.Rental) []RentalResponse {
	out := make([]RentalResponse, 0, len(rs))
	for i := range rs {
		out = append(out, ToResponse(&rs[i]))
	}
	return out
}

type BusyWindow struct {
	RentalID  int64               `json:"rental_id"`
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
	Status    domain.RentalStatus `json:"status"`
}
