package domain

import (
	"fmt"
	"time"
)

const MinCarYear = 1900

// MaxCarYear is the latest model year accepted for a listing: next calendar year.
func MaxCarYear(now time.Time) int {
	return now.Year() + 1
}

type Car struct {
	ID                 int64     `json:"id" gorm:"primaryKey"`
	OwnerID            int64     `json:"owner_id" gorm:"not null;index"`
	ModelID            int64     `json:"model_id" gorm:"not null;index"`
	BodyTypeID         int64     `json:"body_type_id" gorm:"not null"`
	TransmissionTypeID int64     `json:"transmission_type_id" gorm:"not null"`
	MotorTypeID        int64     `json:"motor_type_id" gorm:"not null"`
	Year               int       `json:"year" gorm:"not null"`
	PricePerDay        float64   `json:"price_per_day" gorm:"type:decimal(10,2);not null"`
	City               string    `json:"city,omitempty" gorm:"size:100;index"`
	Latitude           *float64  `json:"latitude,omitempty" gorm:"index:idx_cars_location"`
	Longitude          *float64  `json:"longitude,omitempty" gorm:"index:idx_cars_location"`
	Description        string    `json:"description,omitempty" gorm:"type:text"`
	IsListed           bool      `json:"is_listed" gorm:"not null;index"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Owner            *User             `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Model            *CarModel         `json:"model,omitempty" gorm:"foreignKey:ModelID"`
	BodyType         *BodyType         `json:"body_type,omitempty" gorm:"foreignKey:BodyTypeID"`
	TransmissionType *TransmissionType `json:"transmission_type,omitempty" gorm:"foreignKey:TransmissionTypeID"`
	MotorType        *MotorType        `json:"motor_type,omitempty" gorm:"foreignKey:MotorTypeID"`
}

func (Car) TableName() string { return "cars" }

// ValidateCoordinates checks a WGS84 latitude/longitude pair.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be within [-90, 90]", ErrValidation)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude must be within [-180, 180]", ErrValidation)
	}
	return nil
}
