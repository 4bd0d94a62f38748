package domain

import "time"

type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "open"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeResolved    DisputeStatus = "resolved"
	DisputeRejected    DisputeStatus = "rejected"
)

type Dispute struct {
	ID          int64         `json:"id" gorm:"primaryKey"`
	RentalID    int64         `json:"rental_id" gorm:"not null;index"`
	ReporterID  int64         `json:"reporter_id" gorm:"not null;index"`
	Description string        `json:"description" gorm:"type:text;not null"`
	Status      DisputeStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	Resolution  string        `json:"resolution,omitempty" gorm:"type:text"`
	ResolvedAt  *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (Dispute) TableName() string { return "disputes" }
