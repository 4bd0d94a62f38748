package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carrental/internal/domain"
)

type RentalRepository struct {
	db *gorm.DB
}

func NewRentalRepository(db *gorm.DB) *RentalRepository {
	return &RentalRepository{db: db}
}

func (r *RentalRepository) WithTx(tx *gorm.DB) *RentalRepository {
	return &RentalRepository{db: tx}
}

type RentalListFilter struct {
	RenterID int64
	OwnerID  int64
	Status   domain.RentalStatus
	Limit    int
	Offset   int
}

func (r *RentalRepository) Create(ctx context.Context, rental *domain.Rental) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rental).Error
}

func (r *RentalRepository) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	var rental domain.Rental
	err := r.db.WithContext(ctx).
		Preload("Car").
		Preload("Payment").
		First(&rental, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &rental, nil
}

func (r *RentalRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Rental, error) {
	var rental domain.Rental
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rental, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &rental, nil
}

// UpdateStatus writes the status columns only, guarded by the expected
// previous status so a concurrent writer cannot be overwritten silently.
func (r *RentalRepository) UpdateStatus(ctx context.Context, rental *domain.Rental, from domain.RentalStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Rental{}).
		Where("id = ? AND status = ?", rental.ID, from).
		Updates(map[string]interface{}{
			"status":              rental.Status,
			"cancelled_at":        rental.CancelledAt,
			"cancellation_reason": rental.CancellationReason,
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// HasBlockingOverlap reports whether another confirmed or active rental of
// the car shares at least one day with [start, end].
func (r *RentalRepository) HasBlockingOverlap(ctx context.Context, carID int64, start, end time.Time, excludeID int64) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&domain.Rental{}).
		Where("car_id = ?", carID).
		Where("status IN ?", domain.BlockingRentalStatuses).
		Where("start_date <= ? AND end_date >= ?", domain.Day(end), domain.Day(start))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// BusyWindows lists the confirmed and active rentals of a car overlapping [from, to].
func (r *RentalRepository) BusyWindows(ctx context.Context, carID int64, from, to time.Time) ([]domain.Rental, error) {
	var out []domain.Rental
	err := r.db.WithContext(ctx).
		Where("car_id = ?", carID).
		Where("status IN ?", domain.BlockingRentalStatuses).
		Where("start_date <= ? AND end_date >= ?", domain.Day(to), domain.Day(from)).
		Order("start_date ASC").
		Find(&out).Error
	return out, err
}

func (r *RentalRepository) List(ctx context.Context, f RentalListFilter) ([]domain.Rental, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Rental{})
	if f.RenterID > 0 {
		q = q.Where("rentals.renter_id = ?", f.RenterID)
	}
	if f.OwnerID > 0 {
		q = q.Joins("JOIN cars ON cars.id = rentals.car_id").
			Where("cars.owner_id = ?", f.OwnerID)
	}
	if f.Status != "" {
		q = q.Where("rentals.status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := Page(f.Limit, f.Offset, 20, 100)
	var out []domain.Rental
	err := q.Select("rentals.*").
		Preload("Car").
		Preload("Payment").
		Order("rentals.start_date DESC").
		Order("rentals.id DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListDue returns rentals whose status lags behind the calendar on day today:
// confirmed ones that should have started, active ones past their end date and
// pending ones whose start date went by unpaid. carID 0 means all cars.
func (r *RentalRepository) ListDue(ctx context.Context, carID int64, today time.Time, limit int) ([]domain.Rental, error) {
	today = domain.Day(today)
	q := r.db.WithContext(ctx).
		Where(
			r.db.Where("status = ? AND start_date <= ?", domain.RentalConfirmed, today).
				Or("status = ? AND end_date < ?", domain.RentalActive, today).
				Or("status = ? AND start_date < ?", domain.RentalPending, today),
		)
	if carID > 0 {
		q = q.Where("car_id = ?", carID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Rental
	err := q.Order("id ASC").Find(&out).Error
	return out, err
}

func (r *RentalRepository) CountByCar(ctx context.Context, carID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Rental{}).
		Where("car_id = ?", carID).
		Count(&n).Error
	return n, err
}

func (r *RentalRepository) AppendHistory(ctx context.Context, h *domain.RentalStatusHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *RentalRepository) History(ctx context.Context, rentalID int64) ([]domain.RentalStatusHistory, error) {
	var out []domain.RentalStatusHistory
	err := r.db.WithContext(ctx).
		Where("rental_id = ?", rentalID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
