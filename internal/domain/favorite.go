package domain

import (
	"time"
)

// Favorite is a user's bookmark of a car. Each (user, car) pair exists at most once.
type Favorite struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_user_car"`
	CarID     int64     `json:"car_id" gorm:"not null;index;uniqueIndex:idx_user_car"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Car *Car `json:"car,omitempty" gorm:"foreignKey:CarID"`
}

func (Favorite) TableName() string {
	return "favorites"
}
