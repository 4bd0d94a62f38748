package domain

import "time"

const (
	MinRating        = 1
	MaxRating        = 5
	MaxReviewComment = 500
)

// Review is a rating left by one side of a completed rental about the other side.
type Review struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	RentalID   int64     `json:"rental_id" gorm:"not null;uniqueIndex:idx_review_rental_reviewer"`
	ReviewerID int64     `json:"reviewer_id" gorm:"not null;uniqueIndex:idx_review_rental_reviewer"`
	RevieweeID int64     `json:"reviewee_id" gorm:"not null;index"`
	Rating     int       `json:"rating" gorm:"not null"`
	Comment    string    `json:"comment,omitempty" gorm:"size:500"`
	ReviewDate time.Time `json:"review_date" gorm:"autoCreateTime"`

	Reviewer *User `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
	Reviewee *User `json:"reviewee,omitempty" gorm:"foreignKey:RevieweeID"`
}

func (Review) TableName() string { return "reviews" }
