package review

import "carrental/internal/domain"

type SubmitReviewRequest struct {
	RentalID   int64  `json:"rental_id" binding:"required,gt=0"`
	RevieweeID int64  `json:"reviewee_id" binding:"required,gt=0"`
	Rating     int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment    string `json:"comment" binding:"max=500"`
}

type UserReviewsResponse struct {
	Reviews       []domain.Review `json:"reviews"`
	Total         int64           `json:"total"`
	AverageRating float64         `json:"average_rating"`
}
