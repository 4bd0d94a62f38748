package rental

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"carrental/internal/domain"
	"carrental/internal/modules/notification"
	"carrental/internal/pkg/logger"
	"carrental/internal/repository"
	"carrental/internal/testutil"
)

type fixture struct {
	db     *gorm.DB
	svc    *Service
	clock  *time.Time
	owner  *domain.User
	renter *domain.User
	other  *domain.User
	car    *domain.Car
}

func setup(t *testing.T, today string) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	now := testutil.Day(t, today).Add(9 * time.Hour)
	f := &fixture{db: db, clock: &now}
	f.owner = testutil.CreateUser(t, db, "owner", domain.RoleUser)
	f.renter = testutil.CreateUser(t, db, "renter", domain.RoleUser)
	f.other = testutil.CreateUser(t, db, "other", domain.RoleUser)
	f.car = testutil.CreateCar(t, db, testutil.CreateCatalog(t, db), f.owner.ID, 50)

	notifier := notification.NewService(repository.NewNotificationRepository(db), nil, logger.NewNoop())
	f.svc = NewService(db,
		repository.NewRentalRepository(db),
		repository.NewCarRepository(db),
		repository.NewPaymentRepository(db),
		notifier,
		logger.NewNoop(),
		WithClock(func() time.Time { return *f.clock }),
	)
	return f
}

func (f *fixture) setToday(t *testing.T, day string) {
	*f.clock = testutil.Day(t, day).Add(9 * time.Hour)
}

func (f *fixture) book(t *testing.T, renterID int64, start, end string) (*domain.Rental, error) {
	return f.svc.BookCar(context.Background(), f.car.ID, renterID, testutil.Day(t, start), testutil.Day(t, end))
}

// pay applies a paid payment the way the payment module does, under the car lock.
func (f *fixture) pay(r *domain.Rental) error {
	ctx := context.Background()
	var outbox []*domain.Notification
	err := f.db.Transaction(func(tx *gorm.DB) error {
		car, err := f.svc.cars.WithTx(tx).GetByIDForUpdate(ctx, r.CarID)
		if err != nil {
			return err
		}
		locked, err := f.svc.rentals.WithTx(tx).GetByIDForUpdate(ctx, r.ID)
		if err != nil {
			return err
		}
		outbox, err = f.svc.ApplyPaymentStatus(ctx, tx, locked, car.OwnerID, domain.PaymentPaid)
		return err
	})
	if err == nil {
		f.svc.publish(outbox)
	}
	return err
}

func (f *fixture) status(t *testing.T, id int64) domain.RentalStatus {
	var r domain.Rental
	require.NoError(t, f.db.First(&r, id).Error)
	return r.Status
}

func (f *fixture) notificationsFor(t *testing.T, userID int64, typ domain.NotificationType) int64 {
	var n int64
	require.NoError(t, f.db.Model(&domain.Notification{}).Where("user_id = ? AND type = ?", userID, typ).Count(&n).Error)
	return n
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.RentalStatus
		want     bool
	}{
		{domain.RentalPending, domain.RentalConfirmed, true},
		{domain.RentalPending, domain.RentalCancelled, true},
		{domain.RentalPending, domain.RentalActive, false},
		{domain.RentalConfirmed, domain.RentalActive, true},
		{domain.RentalConfirmed, domain.RentalCancelled, true},
		{domain.RentalConfirmed, domain.RentalCompleted, false},
		{domain.RentalActive, domain.RentalCompleted, true},
		{domain.RentalActive, domain.RentalCancelled, false},
		{domain.RentalCompleted, domain.RentalCancelled, false},
		{domain.RentalCancelled, domain.RentalPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestDueStatus(t *testing.T) {
	r := func(status domain.RentalStatus) *domain.Rental {
		return &domain.Rental{
			Status:    status,
			StartDate: testutil.Day(t, "2024-06-10"),
			EndDate:   testutil.Day(t, "2024-06-12"),
		}
	}

	assert.Equal(t, domain.RentalStatus(""), dueStatus(r(domain.RentalPending), testutil.Day(t, "2024-06-10")))
	assert.Equal(t, domain.RentalCancelled, dueStatus(r(domain.RentalPending), testutil.Day(t, "2024-06-11")))
	assert.Equal(t, domain.RentalStatus(""), dueStatus(r(domain.RentalConfirmed), testutil.Day(t, "2024-06-09")))
	assert.Equal(t, domain.RentalActive, dueStatus(r(domain.RentalConfirmed), testutil.Day(t, "2024-06-10")))
	assert.Equal(t, domain.RentalStatus(""), dueStatus(r(domain.RentalActive), testutil.Day(t, "2024-06-12")))
	assert.Equal(t, domain.RentalCompleted, dueStatus(r(domain.RentalActive), testutil.Day(t, "2024-06-13")))
	assert.Equal(t, domain.RentalStatus(""), dueStatus(r(domain.RentalCompleted), testutil.Day(t, "2024-07-01")))
}

func TestTotalPrice(t *testing.T) {
	assert.Equal(t, 150.0, TotalPrice(50, 3))
	assert.Equal(t, 0.3, TotalPrice(0.1, 3))
}

func TestBookCarCreatesPendingRental(t *testing.T) {
	f := setup(t, "2024-05-20")

	r, err := f.book(t, f.renter.ID, "2024-06-01", "2024-06-03")
	require.NoError(t, err)

	assert.Equal(t, domain.RentalPending, r.Status)
	assert.Equal(t, 3, r.Days())
	assert.Equal(t, 150.0, r.TotalPrice)

	history, err := f.svc.History(context.Background(), r.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.RentalStatus(""), history[0].FromStatus)
	assert.Equal(t, domain.RentalPending, history[0].ToStatus)
	require.NotNil(t, history[0].ActorID)
	assert.Equal(t, f.renter.ID, *history[0].ActorID)

	assert.EqualValues(t, 1, f.notificationsFor(t, f.owner.ID, domain.NotifRentalRequested))
}

func TestBookCarSingleDay(t *testing.T) {
	f := setup(t, "2024-05-20")

	r, err := f.book(t, f.renter.ID, "2024-05-20", "2024-05-20")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Days())
	assert.Equal(t, 50.0, r.TotalPrice)
}

func TestBookCarRejections(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	_, err := f.book(t, f.renter.ID, "2024-06-05", "2024-06-01")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.book(t, f.renter.ID, "2024-05-19", "2024-05-22")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.book(t, f.owner.ID, "2024-06-01", "2024-06-02")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.BookCar(ctx, 9999, f.renter.ID, testutil.Day(t, "2024-06-01"), testutil.Day(t, "2024-06-02"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.db.Model(f.car).Update("is_listed", false).Error)
	_, err = f.book(t, f.renter.ID, "2024-06-01", "2024-06-02")
	assert.ErrorIs(t, err, domain.ErrCarUnlisted)

	var n int64
	require.NoError(t, f.db.Model(&domain.Rental{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUnlistingKeepsExistingRentals(t *testing.T) {
	f := setup(t, "2024-05-20")

	r, err := f.book(t, f.renter.ID, "2024-06-01", "2024-06-03")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(f.car).Update("is_listed", false).Error)

	require.NoError(t, f.pay(r))
	assert.Equal(t, domain.RentalConfirmed, f.status(t, r.ID))
}

// Scenario A: a paid rental blocks an overlapping booking.
func TestConfirmedRentalBlocksOverlap(t *testing.T) {
	f := setup(t, "2024-05-20")

	a, err := f.book(t, f.renter.ID, "2024-06-01", "2024-06-05")
	require.NoError(t, err)
	assert.Equal(t, domain.RentalPending, a.Status)

	require.NoError(t, f.pay(a))
	assert.Equal(t, domain.RentalConfirmed, f.status(t, a.ID))

	_, err = f.book(t, f.other.ID, "2024-06-03", "2024-06-04")
	assert.ErrorIs(t, err, domain.ErrCarUnavailable)

	_, err = f.book(t, f.other.ID, "2024-06-06", "2024-06-07")
	assert.NoError(t, err)
}

// Scenario B: cancelling an unpaid rental frees the window.
func TestCancelPendingFreesWindow(t *testing.T) {
	f := setup(t, "2024-06-20")
	ctx := context.Background()

	r, err := f.book(t, f.renter.ID, "2024-07-01", "2024-07-03")
	require.NoError(t, err)

	cancelled, err := f.svc.CancelRental(ctx, r.ID, f.renter.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.RentalCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	again, err := f.book(t, f.other.ID, "2024-07-01", "2024-07-03")
	require.NoError(t, err)
	require.NoError(t, f.pay(again))
	assert.Equal(t, domain.RentalConfirmed, f.status(t, again.ID))
}

func TestCancelPendingLeavesPaymentUntouched(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	r, err := f.book(t, f.renter.ID, "2024-06-01", "2024-06-02")
	require.NoError(t, err)
	p := &domain.Payment{RentalID: r.ID, Amount: r.TotalPrice, Method: domain.MethodCard, Status: domain.PaymentFailed, Reference: "ref-1"}
	require.NoError(t, f.db.Create(p).Error)

	_, err = f.svc.CancelRental(ctx, r.ID, f.owner.ID, "car in service")
	require.NoError(t, err)

	var got domain.Payment
	require.NoError(t, f.db.First(&got, p.ID).Error)
	assert.Equal(t, domain.PaymentFailed, got.Status)
	assert.EqualValues(t, 1, f.notificationsFor(t, f.renter.ID, domain.NotifRentalCancelled))
}

func TestCancelRequiresParty(t *testing.T) {
	f := setup(t, "2024-05-20")

	r, err := f.book(t, f.renter.ID, "2024-06-01", "2024-06-02")
	require.NoError(t, err)

	_, err = f.svc.CancelRental(context.Background(), r.ID, f.other.ID, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, domain.RentalPending, f.status(t, r.ID))
}

func TestCancelConfirmedRefundsAndNotifiesBoth(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	r, err := f.book(t, f.renter.ID, "2024-06-01", "2024-06-02")
	require.NoError(t, err)
	now := time.Now()
	p := &domain.Payment{RentalID: r.ID, Amount: r.TotalPrice, Method: domain.MethodCard, Status: domain.PaymentPaid, Reference: "ref-2", PaymentDate: &now}
	require.NoError(t, f.db.Create(p).Error)
	require.NoError(t, f.db.Model(&domain.Rental{}).Where("id = ?", r.ID).Update("status", domain.RentalConfirmed).Error)

	cancelled, err := f.svc.CancelRental(ctx, r.ID, f.renter.ID, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, domain.RentalCancelled, cancelled.Status)
	assert.Equal(t, "plans changed", cancelled.CancellationReason)

	var got domain.Payment
	require.NoError(t, f.db.First(&got, p.ID).Error)
	assert.Equal(t, domain.PaymentRefunded, got.Status)

	assert.EqualValues(t, 1, f.notificationsFor(t, f.renter.ID, domain.NotifRentalCancelled))
	assert.EqualValues(t, 1, f.notificationsFor(t, f.owner.ID, domain.NotifRentalCancelled))
}

func TestCancelAfterStartFails(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	r, err := f.book(t, f.renter.ID, "2024-06-01", "2024-06-05")
	require.NoError(t, err)
	require.NoError(t, f.pay(r))

	f.setToday(t, "2024-06-01")
	_, err = f.svc.CancelRental(ctx, r.ID, f.renter.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	got, err := f.svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalActive, got.Status)

	cancelled, err := f.book(t, f.other.ID, "2024-06-10", "2024-06-11")
	require.NoError(t, err)
	_, err = f.svc.CancelRental(ctx, cancelled.ID, f.other.ID, "")
	require.NoError(t, err)
	_, err = f.svc.CancelRental(ctx, cancelled.ID, f.other.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestGetAppliesTimeTransitions(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	r, err := f.book(t, f.renter.ID, "2024-06-01", "2024-06-03")
	require.NoError(t, err)
	require.NoError(t, f.pay(r))

	f.setToday(t, "2024-06-03")
	got, err := f.svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalActive, got.Status)

	f.setToday(t, "2024-06-10")
	got, err = f.svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalCompleted, got.Status)

	history, err := f.svc.History(ctx, r.ID)
	require.NoError(t, err)
	var path []domain.RentalStatus
	for _, h := range history {
		path = append(path, h.ToStatus)
	}
	assert.Equal(t, []domain.RentalStatus{
		domain.RentalPending, domain.RentalConfirmed, domain.RentalActive, domain.RentalCompleted,
	}, path)
	assert.Nil(t, history[2].ActorID)
	assert.EqualValues(t, 1, f.notificationsFor(t, f.owner.ID, domain.NotifRentalCompleted))
}

func TestCompleteRental(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	r, err := f.book(t, f.renter.ID, "2024-06-01", "2024-06-05")
	require.NoError(t, err)

	_, err = f.svc.CompleteRental(ctx, r.ID, f.owner.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, f.pay(r))
	f.setToday(t, "2024-06-02")

	_, err = f.svc.CompleteRental(ctx, r.ID, f.renter.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	done, err := f.svc.CompleteRental(ctx, r.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalCompleted, done.Status)
}

func TestSecondPaymentForOverlapFails(t *testing.T) {
	f := setup(t, "2024-05-20")

	first, err := f.book(t, f.renter.ID, "2024-06-01", "2024-06-05")
	require.NoError(t, err)
	second, err := f.book(t, f.other.ID, "2024-06-04", "2024-06-08")
	require.NoError(t, err, "pending rentals may overlap")

	require.NoError(t, f.pay(first))
	assert.ErrorIs(t, f.pay(second), domain.ErrCarUnavailable)

	assert.Equal(t, domain.RentalConfirmed, f.status(t, first.ID))
	assert.Equal(t, domain.RentalPending, f.status(t, second.ID))
}

func TestPaidOnStartDayStartsImmediately(t *testing.T) {
	f := setup(t, "2024-06-01")

	r, err := f.book(t, f.renter.ID, "2024-06-01", "2024-06-02")
	require.NoError(t, err)
	require.NoError(t, f.pay(r))
	assert.Equal(t, domain.RentalActive, f.status(t, r.ID))
}

func TestAdvanceDue(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	unpaid, err := f.book(t, f.renter.ID, "2024-06-01", "2024-06-02")
	require.NoError(t, err)
	paid, err := f.book(t, f.other.ID, "2024-06-03", "2024-06-04")
	require.NoError(t, err)
	require.NoError(t, f.pay(paid))
	later, err := f.book(t, f.other.ID, "2024-07-01", "2024-07-04")
	require.NoError(t, err)

	f.setToday(t, "2024-06-03")
	n, err := f.svc.AdvanceDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, domain.RentalCancelled, f.status(t, unpaid.ID))
	assert.Equal(t, domain.RentalActive, f.status(t, paid.ID))
	assert.Equal(t, domain.RentalPending, f.status(t, later.ID))

	n, err = f.svc.AdvanceDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBusyWindows(t *testing.T) {
	f := setup(t, "2024-05-20")
	ctx := context.Background()

	r, err := f.book(t, f.renter.ID, "2024-06-01", "2024-06-05")
	require.NoError(t, err)
	_, err = f.book(t, f.other.ID, "2024-06-10", "2024-06-12")
	require.NoError(t, err)
	require.NoError(t, f.pay(r))

	busy, err := f.svc.BusyWindows(ctx, f.car.ID, testutil.Day(t, "2024-05-01"), testutil.Day(t, "2024-06-30"))
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.Equal(t, r.ID, busy[0].ID)

	_, err = f.svc.BusyWindows(ctx, f.car.ID, testutil.Day(t, "2024-06-30"), testutil.Day(t, "2024-06-01"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// Random bookings and payments never leave two overlapping blocking rentals.
func TestNoOverlappingBlockingRentals(t *testing.T) {
	f := setup(t, "2024-05-01")
	rng := rand.New(rand.NewSource(42))
	base := testutil.Day(t, "2024-05-01")
	renters := []int64{f.renter.ID, f.other.ID}

	for i := 0; i < 60; i++ {
		start := base.AddDate(0, 0, rng.Intn(40))
		end := start.AddDate(0, 0, rng.Intn(5))
		r, err := f.svc.BookCar(context.Background(), f.car.ID, renters[i%2], start, end)
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrCarUnavailable)
			continue
		}
		if rng.Intn(3) > 0 {
			if err := f.pay(r); err != nil {
				assert.ErrorIs(t, err, domain.ErrCarUnavailable)
			}
		}
	}

	var blocking []domain.Rental
	require.NoError(t, f.db.Where("status IN ?", domain.BlockingRentalStatuses).Find(&blocking).Error)
	require.NotEmpty(t, blocking)
	for i := range blocking {
		for j := i + 1; j < len(blocking); j++ {
			a, b := blocking[i], blocking[j]
			assert.False(t, domain.WindowsOverlap(a.StartDate, a.EndDate, b.StartDate, b.EndDate),
				"rentals %d and %d overlap", a.ID, b.ID)
		}
	}
}
