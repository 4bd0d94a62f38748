package rental

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"carrental/internal/domain"
	"carrental/internal/pkg/logger"
	"carrental/internal/repository"
)

const sweepBatch = 500

type Service struct {
	db       *gorm.DB
	rentals  *repository.RentalRepository
	cars     *repository.CarRepository
	payments *repository.PaymentRepository
	notifier Notifier
	log      logger.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now; "today" is always the UTC day of this clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	db *gorm.DB,
	rentals *repository.RentalRepository,
	cars *repository.CarRepository,
	payments *repository.PaymentRepository,
	notifier Notifier,
	log logger.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		db:       db,
		rentals:  rentals,
		cars:     cars,
		payments: payments,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Today() time.Time {
	return domain.Day(s.now())
}

// txScope carries the repositories bound to one transaction and the
// notifications to publish after it commits.
type txScope struct {
	ctx      context.Context
	tx       *gorm.DB
	rentals  *repository.RentalRepository
	cars     *repository.CarRepository
	payments *repository.PaymentRepository
	outbox   []*domain.Notification
}

func (s *Service) scope(ctx context.Context, tx *gorm.DB) *txScope {
	return &txScope{
		ctx:      ctx,
		tx:       tx,
		rentals:  s.rentals.WithTx(tx),
		cars:     s.cars.WithTx(tx),
		payments: s.payments.WithTx(tx),
	}
}

func (s *Service) inTx(ctx context.Context, fn func(sc *txScope) error) ([]*domain.Notification, error) {
	var outbox []*domain.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sc := s.scope(ctx, tx)
		if err := fn(sc); err != nil {
			return err
		}
		outbox = sc.outbox
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outbox, nil
}

func (s *Service) publish(outbox []*domain.Notification) {
	if s.notifier != nil && len(outbox) > 0 {
		s.notifier.Publish(outbox...)
	}
}

// BookCar creates a pending rental for the inclusive day window [start, end].
// The car row is locked for the duration of the check-and-insert.
func (s *Service) BookCar(ctx context.Context, carID, renterID int64, start, end time.Time) (*domain.Rental, error) {
	start, end = domain.Day(start), domain.Day(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end_date is before start_date", domain.ErrValidation)
	}
	today := s.Today()
	if start.Before(today) {
		return nil, fmt.Errorf("%w: start_date is in the past", domain.ErrValidation)
	}

	var rental *domain.Rental
	outbox, err := s.inTx(ctx, func(sc *txScope) error {
		car, err := sc.cars.GetByIDForUpdate(ctx, carID)
		if err != nil {
			return err
		}
		if !car.IsListed {
			return domain.ErrCarUnlisted
		}
		if car.OwnerID == renterID {
			return fmt.Errorf("%w: owners cannot rent their own car", domain.ErrValidation)
		}

		if err := s.advanceCar(sc, car.ID, car.OwnerID, today); err != nil {
			return err
		}

		busy, err := sc.rentals.HasBlockingOverlap(ctx, car.ID, start, end, 0)
		if err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if busy {
			return domain.ErrCarUnavailable
		}

		rental = &domain.Rental{
			CarID:     car.ID,
			RenterID:  renterID,
			StartDate: start,
			EndDate:   end,
			Status:    domain.RentalPending,
		}
		rental.TotalPrice = TotalPrice(car.PricePerDay, rental.Days())
		if err := sc.rentals.Create(ctx, rental); err != nil {
			return fmt.Errorf("create rental: %w", err)
		}
		if err := s.record(sc, rental, "", &renterID, "booking requested"); err != nil {
			return err
		}
		return s.emit(sc, car.OwnerID, domain.NotifRentalRequested, "New rental request",
			fmt.Sprintf("Your car was requested from %s to %s.", start.Format(domain.DateLayout), end.Format(domain.DateLayout)),
			rental)
	})
	if err != nil {
		return nil, err
	}
	s.publish(outbox)

	s.log.Info("rental booked", map[string]interface{}{
		"rental_id": rental.ID,
		"car_id":    carID,
		"renter_id": renterID,
	})
	return rental, nil
}

// TotalPrice is price_per_day times the inclusive day count, rounded to cents.
func TotalPrice(pricePerDay float64, days int) float64 {
	return math.Round(pricePerDay*float64(days)*100) / 100
}

// Get returns a rental after applying any transition the calendar made due.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Rental, error) {
	r, err := s.rentals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dueStatus(r, s.Today()) == "" {
		return r, nil
	}
	if err := s.refresh(ctx, r.ID, r.CarID); err != nil {
		return nil, err
	}
	return s.rentals.GetByID(ctx, id)
}

func (s *Service) refresh(ctx context.Context, rentalID, carID int64) error {
	outbox, err := s.inTx(ctx, func(sc *txScope) error {
		car, err := sc.cars.GetByIDForUpdate(ctx, carID)
		if err != nil {
			return err
		}
		r, err := sc.rentals.GetByIDForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		return s.advance(sc, r, car.OwnerID, s.Today())
	})
	if err != nil {
		return err
	}
	s.publish(outbox)
	return nil
}

// CancelRental cancels a pending or not yet started confirmed rental on behalf
// of its renter or the car owner. Cancelling a confirmed rental refunds its payment.
func (s *Service) CancelRental(ctx context.Context, rentalID, actorID int64, reason string) (*domain.Rental, error) {
	current, err := s.rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	var rental *domain.Rental
	outbox, err := s.inTx(ctx, func(sc *txScope) error {
		car, err := sc.cars.GetByIDForUpdate(ctx, current.CarID)
		if err != nil {
			return err
		}
		r, err := sc.rentals.GetByIDForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if !r.IsParty(actorID, car.OwnerID) {
			return domain.ErrUnauthorized
		}
		if err := s.advance(sc, r, car.OwnerID, s.Today()); err != nil {
			return err
		}

		if reason == "" {
			reason = "cancelled by user"
		}
		switch r.Status {
		case domain.RentalPending:
			if err := s.transition(sc, r, domain.RentalCancelled, &actorID, reason); err != nil {
				return err
			}
			notify := r.RenterID
			if actorID == r.RenterID {
				notify = car.OwnerID
			}
			if err := s.emit(sc, notify, domain.NotifRentalCancelled, "Rental cancelled",
				"A pending rental request was cancelled.", r); err != nil {
				return err
			}
		case domain.RentalConfirmed:
			if err := s.transition(sc, r, domain.RentalCancelled, &actorID, reason); err != nil {
				return err
			}
			if err := s.refundPayment(sc, r); err != nil {
				return err
			}
			if err := s.notifyParties(sc, r, car.OwnerID, domain.NotifRentalCancelled, "Rental cancelled",
				"A confirmed rental was cancelled and its payment refunded."); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: cannot cancel a %s rental", domain.ErrInvalidTransition, r.Status)
		}
		rental = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(outbox)
	return rental, nil
}

func (s *Service) refundPayment(sc *txScope, r *domain.Rental) error {
	p, err := sc.payments.GetByRentalID(sc.ctx, r.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if p.Status != domain.PaymentPaid {
		return nil
	}
	p.Status = domain.PaymentRefunded
	if err := sc.payments.UpdateStatus(sc.ctx, p); err != nil {
		return fmt.Errorf("refund payment: %w", err)
	}
	return nil
}

// CompleteRental ends an active rental early. Only the car owner may do this.
func (s *Service) CompleteRental(ctx context.Context, rentalID, actorID int64) (*domain.Rental, error) {
	current, err := s.rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	var rental *domain.Rental
	outbox, err := s.inTx(ctx, func(sc *txScope) error {
		car, err := sc.cars.GetByIDForUpdate(ctx, current.CarID)
		if err != nil {
			return err
		}
		if car.OwnerID != actorID {
			return domain.ErrUnauthorized
		}
		r, err := sc.rentals.GetByIDForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if err := s.advance(sc, r, car.OwnerID, s.Today()); err != nil {
			return err
		}
		if r.Status != domain.RentalActive {
			return fmt.Errorf("%w: only active rentals can be completed", domain.ErrInvalidTransition)
		}
		if err := s.complete(sc, r, car.OwnerID, &actorID, "completed by owner"); err != nil {
			return err
		}
		rental = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(outbox)
	return rental, nil
}

// ApplyPaymentStatus mirrors a payment status change onto its rental inside the
// caller's transaction. The caller must already hold the car and rental row locks.
// The returned notifications are persisted and must be published after commit.
func (s *Service) ApplyPaymentStatus(ctx context.Context, tx *gorm.DB, r *domain.Rental, ownerID int64, status domain.PaymentStatus) ([]*domain.Notification, error) {
	sc := s.scope(ctx, tx)
	if err := s.advance(sc, r, ownerID, s.Today()); err != nil {
		return nil, err
	}

	switch status {
	case domain.PaymentPaid:
		if r.Status != domain.RentalPending {
			return nil, fmt.Errorf("%w: rental is %s, not pending", domain.ErrInvalidTransition, r.Status)
		}
		busy, err := sc.rentals.HasBlockingOverlap(ctx, r.CarID, r.StartDate, r.EndDate, r.ID)
		if err != nil {
			return nil, fmt.Errorf("check overlap: %w", err)
		}
		if busy {
			return nil, domain.ErrCarUnavailable
		}
		if err := s.transition(sc, r, domain.RentalConfirmed, nil, "payment received"); err != nil {
			return nil, err
		}
		if err := s.notifyParties(sc, r, ownerID, domain.NotifRentalConfirmed, "Rental confirmed",
			"Payment received, the rental is confirmed."); err != nil {
			return nil, err
		}
		// a rental paid on its first day starts right away
		if err := s.advance(sc, r, ownerID, s.Today()); err != nil {
			return nil, err
		}

	case domain.PaymentRefunded:
		if r.Status != domain.RentalConfirmed {
			return sc.outbox, nil
		}
		if err := s.transition(sc, r, domain.RentalCancelled, nil, "payment refunded"); err != nil {
			return nil, err
		}
		if err := s.notifyParties(sc, r, ownerID, domain.NotifRentalCancelled, "Rental cancelled",
			"The payment was refunded and the rental cancelled."); err != nil {
			return nil, err
		}

	case domain.PaymentFailed:
		if err := s.emit(sc, r.RenterID, domain.NotifPaymentFailed, "Payment failed",
			"Your payment did not go through. You can retry before the start date.", r); err != nil {
			return nil, err
		}
	}
	return sc.outbox, nil
}

// AdvanceDue applies every time-driven transition that is due today and
// returns how many rentals changed. Each car is processed in its own transaction.
func (s *Service) AdvanceDue(ctx context.Context) (int, error) {
	today := s.Today()
	due, err := s.rentals.ListDue(ctx, 0, today, sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list due rentals: %w", err)
	}

	seen := make(map[int64]struct{})
	changed := 0
	for _, r := range due {
		if _, ok := seen[r.CarID]; ok {
			continue
		}
		seen[r.CarID] = struct{}{}

		var n int
		outbox, err := s.inTx(ctx, func(sc *txScope) error {
			car, err := sc.cars.GetByIDForUpdate(ctx, r.CarID)
			if err != nil {
				return err
			}
			rows, err := sc.rentals.ListDue(ctx, car.ID, today, 0)
			if err != nil {
				return err
			}
			for i := range rows {
				if err := s.advance(sc, &rows[i], car.OwnerID, today); err != nil {
					return err
				}
			}
			n = len(rows)
			return nil
		})
		if err != nil {
			s.log.Error("rental sweep failed for car", map[string]interface{}{
				"car_id": r.CarID,
				"error":  err.Error(),
			})
			continue
		}
		s.publish(outbox)
		changed += n
	}
	return changed, nil
}

func (s *Service) History(ctx context.Context, rentalID int64) ([]domain.RentalStatusHistory, error) {
	if _, err := s.rentals.GetByID(ctx, rentalID); err != nil {
		return nil, err
	}
	return s.rentals.History(ctx, rentalID)
}

func (s *Service) BusyWindows(ctx context.Context, carID int64, from, to time.Time) ([]domain.Rental, error) {
	from, to = domain.Day(from), domain.Day(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to is before from", domain.ErrValidation)
	}
	if _, err := s.cars.OwnerID(ctx, carID); err != nil {
		return nil, err
	}
	return s.rentals.BusyWindows(ctx, carID, from, to)
}

func (s *Service) ListForRenter(ctx context.Context, renterID int64, status domain.RentalStatus, limit, offset int) ([]domain.Rental, int64, error) {
	return s.rentals.List(ctx, repository.RentalListFilter{RenterID: renterID, Status: status, Limit: limit, Offset: offset})
}

func (s *Service) ListForOwner(ctx context.Context, ownerID int64, status domain.RentalStatus, limit, offset int) ([]domain.Rental, int64, error) {
	return s.rentals.List(ctx, repository.RentalListFilter{OwnerID: ownerID, Status: status, Limit: limit, Offset: offset})
}

// OwnerOf returns the owner of the rented car.
func (s *Service) OwnerOf(ctx context.Context, r *domain.Rental) (int64, error) {
	if r.Car != nil {
		return r.Car.OwnerID, nil
	}
	return s.cars.OwnerID(ctx, r.CarID)
}
