package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"carrental/internal/domain"
)

type Catalog struct {
	Make         domain.CarMake
	Model        domain.CarModel
	BodyType     domain.BodyType
	Transmission domain.TransmissionType
	Motor        domain.MotorType
}

func CreateUser(t *testing.T, db *gorm.DB, name string, role domain.UserRole) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
		Name:         name,
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateCatalog(t *testing.T, db *gorm.DB) *Catalog {
	t.Helper()
	c := &Catalog{
		Make:         domain.CarMake{Name: "Toyota"},
		BodyType:     domain.BodyType{Name: "sedan"},
		Transmission: domain.TransmissionType{Name: "automatic"},
		Motor:        domain.MotorType{Name: "petrol"},
	}
	require.NoError(t, db.Create(&c.Make).Error)
	c.Model = domain.CarModel{MakeID: c.Make.ID, Name: "Corolla"}
	require.NoError(t, db.Create(&c.Model).Error)
	require.NoError(t, db.Create(&c.BodyType).Error)
	require.NoError(t, db.Create(&c.Transmission).Error)
	require.NoError(t, db.Create(&c.Motor).Error)
	return c
}

func CreateCar(t *testing.T, db *gorm.DB, cat *Catalog, ownerID int64, pricePerDay float64) *domain.Car {
	t.Helper()
	car := &domain.Car{
		OwnerID:            ownerID,
		ModelID:            cat.Model.ID,
		BodyTypeID:         cat.BodyType.ID,
		TransmissionTypeID: cat.Transmission.ID,
		MotorTypeID:        cat.Motor.ID,
		Year:               2020,
		PricePerDay:        pricePerDay,
		City:               "Almaty",
		IsListed:           true,
	}
	require.NoError(t, db.Create(car).Error)
	return car
}

// CreateRental inserts a rental row directly, bypassing the booking rules.
func CreateRental(t *testing.T, db *gorm.DB, car *domain.Car, renterID int64, start, end string, status domain.RentalStatus) *domain.Rental {
	t.Helper()
	r := &domain.Rental{
		CarID:     car.ID,
		RenterID:  renterID,
		StartDate: Day(t, start),
		EndDate:   Day(t, end),
		Status:    status,
	}
	r.TotalPrice = car.PricePerDay * float64(r.Days())
	require.NoError(t, db.Omit("Car", "Renter", "Payment").Create(r).Error)
	return r
}
