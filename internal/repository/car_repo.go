package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carrental/internal/domain"
)

type CarRepository struct {
	db *gorm.DB
}

func NewCarRepository(db *gorm.DB) *CarRepository {
	return &CarRepository{db: db}
}

// WithTx returns a copy bound to an open transaction.
func (r *CarRepository) WithTx(tx *gorm.DB) *CarRepository {
	return &CarRepository{db: tx}
}

// CarFilter narrows a car search. Zero values mean "no constraint".
type CarFilter struct {
	OwnerID            int64
	City               string
	// Near limits results to a radius around the renter. City wins when both are set.
	Near               *GeoRadius
	MakeID             int64
	ModelID            int64
	BodyTypeID         int64
	TransmissionTypeID int64
	MotorTypeID        int64
	MinPrice           float64
	MaxPrice           float64
	MinYear            int
	MaxYear            int
	// AvailableFrom/AvailableTo drop cars holding a confirmed or active
	// rental that overlaps the inclusive window.
	AvailableFrom *time.Time
	AvailableTo   *time.Time

	IncludeUnlisted bool
	SortBy          string
	SortDesc        bool
	Limit           int
	Offset          int
}

var carSortColumns = map[string]string{
	"price":      "cars.price_per_day",
	"year":       "cars.year",
	"created_at": "cars.created_at",
}

func (r *CarRepository) withRelations(q *gorm.DB) *gorm.DB {
	return q.Preload("Model.Make").
		Preload("BodyType").
		Preload("TransmissionType").
		Preload("MotorType")
}

func (r *CarRepository) Create(ctx context.Context, c *domain.Car) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CarRepository) GetByID(ctx context.Context, id int64) (*domain.Car, error) {
	var c domain.Car
	if err := r.withRelations(r.db.WithContext(ctx)).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// GetByIDForUpdate row-locks the car; every booking and confirmation
// for one car is serialized behind this lock.
func (r *CarRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Car, error) {
	var c domain.Car
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// Update writes only the named columns of c, so concurrent changes to other
// columns (the listing flag in particular) are not overwritten.
func (r *CarRepository) Update(ctx context.Context, c *domain.Car, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(c).
		Omit(clause.Associations).
		Select(append(columns, "updated_at")).
		Updates(c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CarRepository) SetListed(ctx context.Context, id int64, listed bool) error {
	res := r.db.WithContext(ctx).Model(&domain.Car{}).
		Where("id = ?", id).
		Update("is_listed", listed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the car and the favorites pointing at it.
func (r *CarRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("car_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
		return err
	}
	res := db.Delete(&domain.Car{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CarRepository) Search(ctx context.Context, f CarFilter) ([]domain.Car, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Car{})

	if !f.IncludeUnlisted {
		q = q.Where("cars.is_listed = ?", true)
	}
	if f.OwnerID > 0 {
		q = q.Where("cars.owner_id = ?", f.OwnerID)
	}
	if f.City != "" {
		q = q.Where("LOWER(cars.city) = LOWER(?)", f.City)
	}
	if f.MakeID > 0 {
		q = q.Joins("JOIN car_models ON car_models.id = cars.model_id").
			Where("car_models.make_id = ?", f.MakeID)
	}
	if f.ModelID > 0 {
		q = q.Where("cars.model_id = ?", f.ModelID)
	}
	if f.BodyTypeID > 0 {
		q = q.Where("cars.body_type_id = ?", f.BodyTypeID)
	}
	if f.TransmissionTypeID > 0 {
		q = q.Where("cars.transmission_type_id = ?", f.TransmissionTypeID)
	}
	if f.MotorTypeID > 0 {
		q = q.Where("cars.motor_type_id = ?", f.MotorTypeID)
	}
	if f.MinPrice > 0 {
		q = q.Where("cars.price_per_day >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("cars.price_per_day <= ?", f.MaxPrice)
	}
	if f.MinYear > 0 {
		q = q.Where("cars.year >= ?", f.MinYear)
	}
	if f.MaxYear > 0 {
		q = q.Where("cars.year <= ?", f.MaxYear)
	}
	if f.AvailableFrom != nil && f.AvailableTo != nil {
		q = q.Where(`NOT EXISTS (
			SELECT 1 FROM rentals
			WHERE rentals.car_id = cars.id
			  AND rentals.status IN ?
			  AND rentals.start_date <= ?
			  AND rentals.end_date >= ?)`,
			domain.BlockingRentalStatuses, domain.Day(*f.AvailableTo), domain.Day(*f.AvailableFrom))
	}

	q = q.Session(&gorm.Session{})

	if f.City == "" && f.Near != nil {
		ids, err := r.idsWithin(q, *f.Near)
		if err != nil {
			return nil, 0, err
		}
		if len(ids) == 0 {
			return []domain.Car{}, 0, nil
		}
		q = q.Where("cars.id IN ?", ids).Session(&gorm.Session{})
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := carSortColumns[f.SortBy]
	if !ok {
		col = carSortColumns["created_at"]
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col, Raw: true}, Desc: f.SortDesc}).
		Order("cars.id ASC")

	limit, offset := Page(f.Limit, f.Offset, 20, 100)
	var cars []domain.Car
	if err := r.withRelations(q.Select("cars.*")).Limit(limit).Offset(offset).Find(&cars).Error; err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}

// idsWithin narrows q to a bounding box in SQL, then keeps the cars whose
// great-circle distance fits the radius. Cars without coordinates never match.
func (r *CarRepository) idsWithin(q *gorm.DB, g GeoRadius) ([]int64, error) {
	minLat, maxLat, minLon, maxLon, lonOK := g.boundingBox()
	q = q.Where("cars.latitude IS NOT NULL AND cars.longitude IS NOT NULL").
		Where("cars.latitude BETWEEN ? AND ?", minLat, maxLat)
	if lonOK {
		q = q.Where("cars.longitude BETWEEN ? AND ?", minLon, maxLon)
	}

	// Точная дистанция считается в Go, sqlite не везде умеет тригонометрию
	var rows []struct {
		ID        int64
		Latitude  float64
		Longitude float64
	}
	if err := q.Select("cars.id, cars.latitude, cars.longitude").Scan(&rows).Error; err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if g.contains(row.Latitude, row.Longitude) {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}

func (r *CarRepository) OwnerID(ctx context.Context, carID int64) (int64, error) {
	var ownerID int64
	res := r.db.WithContext(ctx).Model(&domain.Car{}).
		Select("owner_id").
		Where("id = ?", carID).
		Scan(&ownerID)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrNotFound
	}
	return ownerID, nil
}
