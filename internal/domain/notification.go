package domain

import "time"

type NotificationType string

const (
	NotifRentalRequested NotificationType = "rental_requested"
	NotifRentalConfirmed NotificationType = "rental_confirmed"
	NotifRentalCancelled NotificationType = "rental_cancelled"
	NotifRentalStarted   NotificationType = "rental_started"
	NotifRentalCompleted NotificationType = "rental_completed"
	NotifPaymentFailed   NotificationType = "payment_failed"
	NotifPaymentRefunded NotificationType = "payment_refunded"
	NotifNewReview       NotificationType = "new_review"
	NotifDisputeFiled    NotificationType = "dispute_filed"
	NotifDisputeUpdated  NotificationType = "dispute_updated"
)

type Notification struct {
	ID        int64            `json:"id" gorm:"primaryKey"`
	UserID    int64            `json:"user_id" gorm:"not null;index"`
	Type      NotificationType `json:"type" gorm:"type:varchar(32);not null"`
	Title     string           `json:"title" gorm:"size:255;not null"`
	Message   string           `json:"message,omitempty" gorm:"type:text"`
	IsRead    bool             `json:"is_read" gorm:"not null;index"`
	Data      map[string]any   `json:"data,omitempty" gorm:"serializer:json"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
}

func (Notification) TableName() string { return "notifications" }
