package car

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"carrental/internal/domain"
	"carrental/internal/pkg/logger"
	"carrental/internal/repository"
)

type Service struct {
	db      *gorm.DB
	cars    *repository.CarRepository
	rentals *repository.RentalRepository
	catalog CatalogRefs
	log     logger.Logger
	now     func() time.Time
}

func NewService(db *gorm.DB, cars *repository.CarRepository, rentals *repository.RentalRepository, catalog CatalogRefs, log logger.Logger) *Service {
	return &Service{db: db, cars: cars, rentals: rentals, catalog: catalog, log: log, now: time.Now}
}

func (s *Service) validate(ctx context.Context, c *domain.Car) error {
	if maxYear := domain.MaxCarYear(s.now()); c.Year < domain.MinCarYear || c.Year > maxYear {
		return fmt.Errorf("%w: year must be between %d and %d", domain.ErrValidation, domain.MinCarYear, maxYear)
	}
	if c.PricePerDay <= 0 {
		return fmt.Errorf("%w: price_per_day must be positive", domain.ErrValidation)
	}
	if (c.Latitude == nil) != (c.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude go together", domain.ErrValidation)
	}
	if c.Latitude != nil {
		if err := domain.ValidateCoordinates(*c.Latitude, *c.Longitude); err != nil {
			return err
		}
	}
	ok, err := s.catalog.ReferencesExist(ctx, c.ModelID, c.BodyTypeID, c.TransmissionTypeID, c.MotorTypeID)
	if err != nil {
		return fmt.Errorf("check catalog references: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: unknown model, body, transmission or motor type", domain.ErrValidation)
	}
	return nil
}

// Create lists a car for ownerID. New cars are listed unless the request says otherwise.
func (s *Service) Create(ctx context.Context, ownerID int64, req CreateCarRequest) (*domain.Car, error) {
	c := &domain.Car{
		OwnerID:            ownerID,
		ModelID:            req.ModelID,
		BodyTypeID:         req.BodyTypeID,
		TransmissionTypeID: req.TransmissionTypeID,
		MotorTypeID:        req.MotorTypeID,
		Year:               req.Year,
		PricePerDay:        req.PricePerDay,
		City:               strings.TrimSpace(req.City),
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		Description:        strings.TrimSpace(req.Description),
		IsListed:           true,
	}
	if req.IsListed != nil {
		c.IsListed = *req.IsListed
	}
	if err := s.validate(ctx, c); err != nil {
		return nil, err
	}
	if err := s.cars.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create car: %w", err)
	}

	s.log.Info("car created", map[string]interface{}{"car_id": c.ID, "owner_id": ownerID})
	return s.cars.GetByID(ctx, c.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Car, error) {
	return s.cars.GetByID(ctx, id)
}

// Search returns listed cars only.
func (s *Service) Search(ctx context.Context, f repository.CarFilter) (*ListResponse, error) {
	f.IncludeUnlisted = false
	return s.search(ctx, f)
}

// ListByOwner includes unlisted cars.
func (s *Service) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) (*ListResponse, error) {
	return s.search(ctx, repository.CarFilter{
		OwnerID:         ownerID,
		IncludeUnlisted: true,
		Limit:           limit,
		Offset:          offset,
	})
}

func (s *Service) search(ctx context.Context, f repository.CarFilter) (*ListResponse, error) {
	cars, total, err := s.cars.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	if cars == nil {
		cars = []domain.Car{}
	}
	return &ListResponse{Cars: cars, Total: total}, nil
}

// Update applies a partial update. Only the owner may edit a car.
func (s *Service) Update(ctx context.Context, id, actorID int64, req UpdateCarRequest) (*domain.Car, error) {
	c, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Проверка прав
	if c.OwnerID != actorID {
		return nil, domain.ErrUnauthorized
	}

	// Пишем только изменённые колонки
	var columns []string
	set := func(column string) { columns = append(columns, column) }

	if req.ModelID != nil {
		c.ModelID = *req.ModelID
		set("model_id")
	}
	if req.BodyTypeID != nil {
		c.BodyTypeID = *req.BodyTypeID
		set("body_type_id")
	}
	if req.TransmissionTypeID != nil {
		c.TransmissionTypeID = *req.TransmissionTypeID
		set("transmission_type_id")
	}
	if req.MotorTypeID != nil {
		c.MotorTypeID = *req.MotorTypeID
		set("motor_type_id")
	}
	if req.Year != nil {
		c.Year = *req.Year
		set("year")
	}
	if req.PricePerDay != nil {
		c.PricePerDay = *req.PricePerDay
		set("price_per_day")
	}
	if req.City != nil {
		c.City = strings.TrimSpace(*req.City)
		set("city")
	}
	if req.Latitude != nil {
		c.Latitude = req.Latitude
		set("latitude")
	}
	if req.Longitude != nil {
		c.Longitude = req.Longitude
		set("longitude")
	}
	if req.Description != nil {
		c.Description = strings.TrimSpace(*req.Description)
		set("description")
	}
	if req.IsListed != nil {
		c.IsListed = *req.IsListed
		set("is_listed")
	}
	if err := s.validate(ctx, c); err != nil {
		return nil, err
	}

	if err := s.cars.Update(ctx, c, columns...); err != nil {
		return nil, fmt.Errorf("update car: %w", err)
	}
	return s.cars.GetByID(ctx, id)
}

// SetListing toggles whether the car accepts new bookings. Existing rentals
// are not touched.
func (s *Service) SetListing(ctx context.Context, id, actorID int64, isAdmin, listed bool) (*domain.Car, error) {
	ownerID, err := s.cars.OwnerID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerID != actorID && !isAdmin {
		return nil, domain.ErrUnauthorized
	}
	if err := s.cars.SetListed(ctx, id, listed); err != nil {
		return nil, err
	}
	return s.cars.GetByID(ctx, id)
}

// Remove deletes a car that was never rented. A car with rental history is
// unlisted instead so the history stays intact; deleted reports which happened.
func (s *Service) Remove(ctx context.Context, id, actorID int64, isAdmin bool) (deleted bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cars := s.cars.WithTx(tx)
		c, err := cars.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c.OwnerID != actorID && !isAdmin {
			return domain.ErrUnauthorized
		}

		n, err := s.rentals.WithTx(tx).CountByCar(ctx, id)
		if err != nil {
			return fmt.Errorf("count rentals: %w", err)
		}
		if n > 0 {
			return cars.SetListed(ctx, id, false)
		}
		deleted = true
		return cars.Delete(ctx, id)
	})
	if err != nil {
		return false, err
	}

	s.log.Info("car removed", map[string]interface{}{"car_id": id, "actor_id": actorID, "deleted": deleted})
	return deleted, nil
}
