package domain

import "time"

// CarMake is a manufacturer, e.g. "Toyota".
type CarMake struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

func (CarMake) TableName() string { return "car_makes" }

// CarModel belongs to exactly one make; names are unique per make.
type CarModel struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	MakeID    int64     `json:"make_id" gorm:"not null;uniqueIndex:idx_make_model"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex:idx_make_model"`
	CreatedAt time.Time `json:"created_at"`

	Make *CarMake `json:"make,omitempty" gorm:"foreignKey:MakeID"`
}

func (CarModel) TableName() string { return "car_models" }

type BodyType struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:64;not null;uniqueIndex"`
}

func (BodyType) TableName() string { return "body_types" }

type TransmissionType struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:64;not null;uniqueIndex"`
}

func (TransmissionType) TableName() string { return "transmission_types" }

type MotorType struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:64;not null;uniqueIndex"`
}

func (MotorType) TableName() string { return "motor_types" }
