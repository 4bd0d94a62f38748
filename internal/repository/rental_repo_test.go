package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/internal/domain"
	"carrental/internal/repository"
	"carrental/internal/testutil"
)

func TestHasBlockingOverlap(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner", domain.RoleUser)
	renter := testutil.CreateUser(t, db, "renter", domain.RoleUser)
	car := testutil.CreateCar(t, db, testutil.CreateCatalog(t, db), owner.ID, 50)

	confirmed := testutil.CreateRental(t, db, car, renter.ID, "2024-06-01", "2024-06-05", domain.RentalConfirmed)
	testutil.CreateRental(t, db, car, renter.ID, "2024-06-10", "2024-06-12", domain.RentalPending)
	testutil.CreateRental(t, db, car, renter.ID, "2024-06-20", "2024-06-22", domain.RentalCancelled)

	repo := repository.NewRentalRepository(db)

	tests := []struct {
		name      string
		start     string
		end       string
		excludeID int64
		want      bool
	}{
		{"inside confirmed window", "2024-06-03", "2024-06-04", 0, true},
		{"touches last day", "2024-06-05", "2024-06-07", 0, true},
		{"touches first day", "2024-05-28", "2024-06-01", 0, true},
		{"day after", "2024-06-06", "2024-06-08", 0, false},
		{"pending does not block", "2024-06-10", "2024-06-12", 0, false},
		{"cancelled does not block", "2024-06-20", "2024-06-22", 0, false},
		{"own rental excluded", "2024-06-01", "2024-06-05", confirmed.ID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.HasBlockingOverlap(ctx, car.ID, testutil.Day(t, tt.start), testutil.Day(t, tt.end), tt.excludeID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListDue(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner", domain.RoleUser)
	renter := testutil.CreateUser(t, db, "renter", domain.RoleUser)
	car := testutil.CreateCar(t, db, testutil.CreateCatalog(t, db), owner.ID, 50)

	starting := testutil.CreateRental(t, db, car, renter.ID, "2024-06-10", "2024-06-12", domain.RentalConfirmed)
	ended := testutil.CreateRental(t, db, car, renter.ID, "2024-06-01", "2024-06-09", domain.RentalActive)
	stalePending := testutil.CreateRental(t, db, car, renter.ID, "2024-06-05", "2024-06-06", domain.RentalPending)
	testutil.CreateRental(t, db, car, renter.ID, "2024-06-20", "2024-06-22", domain.RentalConfirmed)
	testutil.CreateRental(t, db, car, renter.ID, "2024-06-08", "2024-06-10", domain.RentalActive)
	testutil.CreateRental(t, db, car, renter.ID, "2024-06-10", "2024-06-11", domain.RentalPending)

	repo := repository.NewRentalRepository(db)
	due, err := repo.ListDue(ctx, 0, testutil.Day(t, "2024-06-10"), 0)
	require.NoError(t, err)

	ids := make([]int64, 0, len(due))
	for _, r := range due {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []int64{starting.ID, ended.ID, stalePending.ID}, ids)
}

func TestRentalUpdateStatusGuardsPreviousStatus(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner", domain.RoleUser)
	car := testutil.CreateCar(t, db, testutil.CreateCatalog(t, db), owner.ID, 50)
	r := testutil.CreateRental(t, db, car, owner.ID, "2024-06-01", "2024-06-02", domain.RentalPending)

	repo := repository.NewRentalRepository(db)

	r.Status = domain.RentalConfirmed
	err := repo.UpdateStatus(ctx, r, domain.RentalActive)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, repo.UpdateStatus(ctx, r, domain.RentalPending))
	got, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalConfirmed, got.Status)
}

func TestRentalListByOwner(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	cat := testutil.CreateCatalog(t, db)
	owner := testutil.CreateUser(t, db, "owner", domain.RoleUser)
	other := testutil.CreateUser(t, db, "other", domain.RoleUser)
	renter := testutil.CreateUser(t, db, "renter", domain.RoleUser)
	mine := testutil.CreateCar(t, db, cat, owner.ID, 50)
	theirs := testutil.CreateCar(t, db, cat, other.ID, 70)

	testutil.CreateRental(t, db, mine, renter.ID, "2024-06-01", "2024-06-02", domain.RentalPending)
	testutil.CreateRental(t, db, mine, renter.ID, "2024-06-03", "2024-06-04", domain.RentalCompleted)
	testutil.CreateRental(t, db, theirs, renter.ID, "2024-06-01", "2024-06-02", domain.RentalPending)

	repo := repository.NewRentalRepository(db)

	rentals, total, err := repo.List(ctx, repository.RentalListFilter{OwnerID: owner.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, r := range rentals {
		assert.Equal(t, mine.ID, r.CarID)
	}

	_, total, err = repo.List(ctx, repository.RentalListFilter{RenterID: renter.ID, Status: domain.RentalPending})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestRentalHistoryIsOrdered(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner", domain.RoleUser)
	car := testutil.CreateCar(t, db, testutil.CreateCatalog(t, db), owner.ID, 50)
	r := testutil.CreateRental(t, db, car, owner.ID, "2024-06-01", "2024-06-02", domain.RentalPending)

	repo := repository.NewRentalRepository(db)
	require.NoError(t, repo.AppendHistory(ctx, &domain.RentalStatusHistory{RentalID: r.ID, ToStatus: domain.RentalPending}))
	require.NoError(t, repo.AppendHistory(ctx, &domain.RentalStatusHistory{RentalID: r.ID, FromStatus: domain.RentalPending, ToStatus: domain.RentalCancelled}))

	h, err := repo.History(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, domain.RentalStatus(""), h[0].FromStatus)
	assert.Equal(t, domain.RentalCancelled, h[1].ToStatus)
}
