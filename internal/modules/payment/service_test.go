package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"carrental/internal/domain"
	"carrental/internal/modules/notification"
	"carrental/internal/modules/rental"
	"carrental/internal/pkg/logger"
	"carrental/internal/repository"
	"carrental/internal/testutil"
)

type fixture struct {
	db      *gorm.DB
	clock   *time.Time
	rentals *rental.Service
	svc     *Service
	owner   *domain.User
	renter  *domain.User
	other   *domain.User
	car     *domain.Car
}

func setup(t *testing.T, today string) *fixture {
	t.Helper()
	return setupWith(t, testutil.NewDB(t), today)
}

func setupWith(t *testing.T, db *gorm.DB, today string) *fixture {
	t.Helper()
	now := testutil.Day(t, today).Add(10 * time.Hour)
	f := &fixture{db: db, clock: &now}

	f.owner = testutil.CreateUser(t, db, "owner", domain.RoleUser)
	f.renter = testutil.CreateUser(t, db, "renter", domain.RoleUser)
	f.other = testutil.CreateUser(t, db, "other", domain.RoleUser)
	f.car = testutil.CreateCar(t, db, testutil.CreateCatalog(t, db), f.owner.ID, 40)

	rentalRepo := repository.NewRentalRepository(db)
	carRepo := repository.NewCarRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notifier := notification.NewService(repository.NewNotificationRepository(db), nil, logger.NewNoop())

	f.rentals = rental.NewService(db, rentalRepo, carRepo, paymentRepo, notifier, logger.NewNoop(),
		rental.WithClock(func() time.Time { return *f.clock }))
	f.svc = NewService(db, paymentRepo, rentalRepo, carRepo, f.rentals, notifier, logger.NewNoop())
	f.svc.now = func() time.Time { return *f.clock }
	return f
}

func (f *fixture) setToday(t *testing.T, day string) {
	*f.clock = testutil.Day(t, day).Add(10 * time.Hour)
}

func (f *fixture) book(t *testing.T, renterID int64, start, end string) *domain.Rental {
	t.Helper()
	r, err := f.rentals.BookCar(context.Background(), f.car.ID, renterID, testutil.Day(t, start), testutil.Day(t, end))
	require.NoError(t, err)
	return r
}

func (f *fixture) record(t *testing.T, r *domain.Rental) *domain.Payment {
	t.Helper()
	p, err := f.svc.RecordPayment(context.Background(), r.ID, r.TotalPrice, domain.MethodCard)
	require.NoError(t, err)
	return p
}

func (f *fixture) payment(t *testing.T, id int64) *domain.Payment {
	var p domain.Payment
	require.NoError(t, f.db.First(&p, id).Error)
	return &p
}

func TestPaymentCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.PaymentStatus
		want     bool
	}{
		{domain.PaymentPending, domain.PaymentPaid, true},
		{domain.PaymentPending, domain.PaymentFailed, true},
		{domain.PaymentPending, domain.PaymentRefunded, false},
		{domain.PaymentFailed, domain.PaymentPending, true},
		{domain.PaymentFailed, domain.PaymentPaid, true},
		{domain.PaymentPaid, domain.PaymentRefunded, true},
		{domain.PaymentPaid, domain.PaymentFailed, false},
		{domain.PaymentRefunded, domain.PaymentPaid, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestPaidPaymentConfirmsRental(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	r := f.book(t, f.renter.ID, "2024-06-01", "2024-06-05")
	p := f.record(t, r)
	assert.Equal(t, domain.PaymentPending, p.Status)
	assert.Equal(t, 200.0, p.Amount)
	assert.NotEmpty(t, p.Reference)

	got, err := f.svc.UpdatePaymentStatus(ctx, p.ID, domain.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalConfirmed, got.Status)
	require.NotNil(t, got.Payment)
	assert.Equal(t, domain.PaymentPaid, got.Payment.Status)
	assert.NotNil(t, got.Payment.PaymentDate)

	_, err = f.rentals.BookCar(ctx, f.car.ID, f.other.ID, testutil.Day(t, "2024-06-03"), testutil.Day(t, "2024-06-04"))
	assert.ErrorIs(t, err, domain.ErrCarUnavailable)
}

func TestRecordPaymentRejections(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	r := f.book(t, f.renter.ID, "2024-06-01", "2024-06-02")

	_, err := f.svc.RecordPayment(ctx, r.ID, r.TotalPrice, domain.PaymentMethod("bitcoin"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.RecordPayment(ctx, r.ID, r.TotalPrice+1, domain.MethodCash)
	assert.ErrorIs(t, err, domain.ErrAmountMismatch)

	_, err = f.svc.RecordPayment(ctx, 9999, 10, domain.MethodCash)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.record(t, r)
	_, err = f.svc.RecordPayment(ctx, r.ID, r.TotalPrice, domain.MethodCard)
	assert.ErrorIs(t, err, domain.ErrDuplicatePayment)

	cancelled := f.book(t, f.renter.ID, "2024-06-10", "2024-06-11")
	_, err = f.rentals.CancelRental(ctx, cancelled.ID, f.renter.ID, "")
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, cancelled.ID, cancelled.TotalPrice, domain.MethodCard)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSameStatusIsNoop(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	r := f.book(t, f.renter.ID, "2024-06-01", "2024-06-02")
	p := f.record(t, r)

	got, err := f.svc.UpdatePaymentStatus(ctx, p.ID, domain.PaymentPending)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalPending, got.Status)
	assert.Equal(t, p.UpdatedAt.Unix(), f.payment(t, p.ID).UpdatedAt.Unix())
}

func TestFailedPaymentCanBeRetried(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	r := f.book(t, f.renter.ID, "2024-06-01", "2024-06-02")
	p := f.record(t, r)

	got, err := f.svc.UpdatePaymentStatus(ctx, p.ID, domain.PaymentFailed)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalPending, got.Status)

	var failed int64
	require.NoError(t, f.db.Model(&domain.Notification{}).
		Where("user_id = ? AND type = ?", f.renter.ID, domain.NotifPaymentFailed).
		Count(&failed).Error)
	assert.EqualValues(t, 1, failed)

	_, err = f.svc.UpdatePaymentStatus(ctx, p.ID, domain.PaymentPending)
	require.NoError(t, err)
	got, err = f.svc.UpdatePaymentStatus(ctx, p.ID, domain.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalConfirmed, got.Status)
}

func TestRefundCancelsConfirmedRental(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	r := f.book(t, f.renter.ID, "2024-06-01", "2024-06-02")
	p := f.record(t, r)
	_, err := f.svc.UpdatePaymentStatus(ctx, p.ID, domain.PaymentPaid)
	require.NoError(t, err)

	got, err := f.svc.UpdatePaymentStatus(ctx, p.ID, domain.PaymentRefunded)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalCancelled, got.Status)
	assert.Equal(t, "payment refunded", got.CancellationReason)

	var n int64
	require.NoError(t, f.db.Model(&domain.Notification{}).
		Where("type = ? AND user_id IN ?", domain.NotifRentalCancelled, []int64{f.renter.ID, f.owner.ID}).
		Count(&n).Error)
	assert.EqualValues(t, 2, n)

	_, err = f.svc.UpdatePaymentStatus(ctx, p.ID, domain.PaymentPaid)
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentTransition)
}

func TestRefundLeavesActiveRentalUntouched(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	r := f.book(t, f.renter.ID, "2024-06-01", "2024-06-05")
	p := f.record(t, r)
	_, err := f.svc.UpdatePaymentStatus(ctx, p.ID, domain.PaymentPaid)
	require.NoError(t, err)

	f.setToday(t, "2024-06-02")
	got, err := f.svc.UpdatePaymentStatus(ctx, p.ID, domain.PaymentRefunded)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalActive, got.Status)
	assert.Equal(t, domain.PaymentRefunded, f.payment(t, p.ID).Status)
}

func TestSecondOverlappingPaymentChangesNothing(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	first := f.book(t, f.renter.ID, "2024-06-01", "2024-06-05")
	second := f.book(t, f.other.ID, "2024-06-05", "2024-06-07")
	p1 := f.record(t, first)
	p2 := f.record(t, second)

	_, err := f.svc.UpdatePaymentStatus(ctx, p1.ID, domain.PaymentPaid)
	require.NoError(t, err)

	_, err = f.svc.UpdatePaymentStatus(ctx, p2.ID, domain.PaymentPaid)
	assert.ErrorIs(t, err, domain.ErrCarUnavailable)

	assert.Equal(t, domain.PaymentPending, f.payment(t, p2.ID).Status)
	got, err := f.rentals.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalPending, got.Status)
}

func TestPaymentForExpiredRentalFails(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	r := f.book(t, f.renter.ID, "2024-06-01", "2024-06-02")
	p := f.record(t, r)

	f.setToday(t, "2024-06-03")
	_, err := f.svc.UpdatePaymentStatus(ctx, p.ID, domain.PaymentPaid)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.PaymentPending, f.payment(t, p.ID).Status)
}

// No rental reaches confirmed unless its payment is paid.
func TestConfirmedRentalsHavePaidPayments(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	windows := []struct {
		start, end string
		status     domain.PaymentStatus
		err        error
	}{
		{"2024-06-01", "2024-06-03", domain.PaymentPaid, nil},
		{"2024-06-02", "2024-06-04", domain.PaymentPaid, domain.ErrCarUnavailable},
		{"2024-06-10", "2024-06-12", domain.PaymentPaid, nil},
		{"2024-06-20", "2024-06-21", domain.PaymentFailed, nil},
	}
	// all windows are pending at once, payment decides which one wins
	payments := make([]*domain.Payment, len(windows))
	for i, w := range windows {
		payments[i] = f.record(t, f.book(t, f.renter.ID, w.start, w.end))
	}
	for i, w := range windows {
		_, err := f.svc.UpdatePaymentStatus(ctx, payments[i].ID, w.status)
		if w.err != nil {
			assert.ErrorIs(t, err, w.err, "window %d", i)
			assert.Equal(t, domain.PaymentPending, f.payment(t, payments[i].ID).Status)
			continue
		}
		require.NoError(t, err, "window %d", i)
	}

	var confirmed []domain.Rental
	require.NoError(t, f.db.Preload("Payment").Where("status = ?", domain.RentalConfirmed).Find(&confirmed).Error)
	require.Len(t, confirmed, 2)
	for _, r := range confirmed {
		require.NotNil(t, r.Payment)
		assert.Equal(t, domain.PaymentPaid, r.Payment.Status)
	}
}

// Payments for overlapping pending rentals racing on separate connections
// confirm at most one rental.
func TestConcurrentPaymentsConfirmAtMostOne(t *testing.T) {
	const n = 8
	f := setupWith(t, testutil.NewFileDB(t, n+4), "2024-05-20")
	ctx := context.Background()

	payments := make([]*domain.Payment, n)
	for i := range payments {
		start := testutil.Day(t, "2024-06-01").AddDate(0, 0, i%3)
		r := f.book(t, f.renter.ID, start.Format(domain.DateLayout), start.AddDate(0, 0, 3).Format(domain.DateLayout))
		payments[i] = f.record(t, r)
	}

	var (
		wg   sync.WaitGroup
		gate = make(chan struct{})
		errs = make([]error, n)
	)
	for i := range payments {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-gate
			_, errs[i] = f.svc.UpdatePaymentStatus(ctx, payments[i].ID, domain.PaymentPaid)
		}(i)
	}
	close(gate)
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrCarUnavailable), "payment %d: %v", i, err)
	}
	assert.Equal(t, 1, succeeded)

	var confirmed []domain.Rental
	require.NoError(t, f.db.Preload("Payment").Where("status = ?", domain.RentalConfirmed).Find(&confirmed).Error)
	require.Len(t, confirmed, 1)
	require.NotNil(t, confirmed[0].Payment)
	assert.Equal(t, domain.PaymentPaid, confirmed[0].Payment.Status)

	var paid int64
	require.NoError(t, f.db.Model(&domain.Payment{}).Where("status = ?", domain.PaymentPaid).Count(&paid).Error)
	assert.EqualValues(t, 1, paid)
}
