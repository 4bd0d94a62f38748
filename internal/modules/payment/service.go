package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"carrental/internal/domain"
	"carrental/internal/pkg/logger"
	"carrental/internal/repository"
)

// amounts are compared to the cent
const amountTolerance = 0.005

type Service struct {
	db        *gorm.DB
	payments  *repository.PaymentRepository
	rentals   *repository.RentalRepository
	cars      *repository.CarRepository
	linker    RentalLinker
	publisher Publisher
	log       logger.Logger
	now       func() time.Time
}

func NewService(
	db *gorm.DB,
	payments *repository.PaymentRepository,
	rentals *repository.RentalRepository,
	cars *repository.CarRepository,
	linker RentalLinker,
	publisher Publisher,
	log logger.Logger,
) *Service {
	return &Service{
		db:        db,
		payments:  payments,
		rentals:   rentals,
		cars:      cars,
		linker:    linker,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// RecordPayment opens the single pending payment of a pending rental.
func (s *Service) RecordPayment(ctx context.Context, rentalID int64, amount float64, method domain.PaymentMethod) (*domain.Payment, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, method)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	// refreshes time-driven status before the write transaction
	current, err := s.linker.Get(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	var payment *domain.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.cars.WithTx(tx).GetByIDForUpdate(ctx, current.CarID); err != nil {
			return err
		}
		r, err := s.rentals.WithTx(tx).GetByIDForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}

		payments := s.payments.WithTx(tx)
		if _, err := payments.GetByRentalID(ctx, rentalID); err == nil {
			return domain.ErrDuplicatePayment
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if r.Status != domain.RentalPending {
			return fmt.Errorf("%w: rental is %s, payments need a pending rental", domain.ErrInvalidTransition, r.Status)
		}
		if math.Abs(amount-r.TotalPrice) > amountTolerance {
			return fmt.Errorf("%w: expected %.2f, got %.2f", domain.ErrAmountMismatch, r.TotalPrice, amount)
		}

		payment = &domain.Payment{
			RentalID:  r.ID,
			Amount:    r.TotalPrice,
			Method:    method,
			Status:    domain.PaymentPending,
			Reference: uuid.NewString(),
		}
		return payments.Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment recorded", map[string]interface{}{
		"payment_id": payment.ID,
		"rental_id":  rentalID,
		"method":     string(method),
	})
	return payment, nil
}

// UpdatePaymentStatus moves a payment through its state machine and applies
// the consequence to the rental in the same transaction. Setting the current
// status again changes nothing.
func (s *Service) UpdatePaymentStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (*domain.Rental, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown payment status %q", domain.ErrValidation, status)
	}

	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	current, err := s.rentals.GetByID(ctx, p.RentalID)
	if err != nil {
		return nil, err
	}

	var outbox []*domain.Notification
	changed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		car, err := s.cars.WithTx(tx).GetByIDForUpdate(ctx, current.CarID)
		if err != nil {
			return err
		}
		r, err := s.rentals.WithTx(tx).GetByIDForUpdate(ctx, p.RentalID)
		if err != nil {
			return err
		}
		payments := s.payments.WithTx(tx)
		locked, err := payments.GetByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}

		// Повторный запрос с тем же статусом ничего не меняет
		if locked.Status == status {
			return nil
		}
		if !CanTransition(locked.Status, status) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidPaymentTransition, locked.Status, status)
		}

		from := locked.Status
		locked.Status = status
		if status == domain.PaymentPaid {
			at := s.now().UTC()
			locked.PaymentDate = &at
		}
		if err := payments.UpdateStatus(ctx, locked); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}

		outbox, err = s.linker.ApplyPaymentStatus(ctx, tx, r, car.OwnerID, status)
		if err != nil {
			return err
		}
		changed = true

		s.log.Info("payment status changed", map[string]interface{}{
			"payment_id": locked.ID,
			"rental_id":  r.ID,
			"from":       string(from),
			"to":         string(status),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed && s.publisher != nil && len(outbox) > 0 {
		s.publisher.Publish(outbox...)
	}
	return s.linker.Get(ctx, p.RentalID)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

// Parties returns the renter and car owner behind a payment.
func (s *Service) Parties(ctx context.Context, p *domain.Payment) (renterID, ownerID int64, err error) {
	r, err := s.rentals.GetByID(ctx, p.RentalID)
	if err != nil {
		return 0, 0, err
	}
	ownerID, err = s.cars.OwnerID(ctx, r.CarID)
	if err != nil {
		return 0, 0, err
	}
	return r.RenterID, ownerID, nil
}
