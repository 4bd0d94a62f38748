package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"carrental/internal/config"
	"carrental/internal/pkg/logger"
)

type mockSweeper struct {
	mock.Mock
}

func (m *mockSweeper) AdvanceDue(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockCleaner struct {
	mock.Mock
}

func (m *mockCleaner) Cleanup(ctx context.Context, retention time.Duration, now time.Time) (int64, error) {
	args := m.Called(ctx, retention, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestRunAll(t *testing.T) {
	sweeper := new(mockSweeper)
	cleaner := new(mockCleaner)
	now := time.Date(2024, 6, 1, 3, 30, 0, 0, time.UTC)

	sweeper.On("AdvanceDue", mock.Anything).Return(3, nil).Once()
	cleaner.On("Cleanup", mock.Anything, 30*24*time.Hour, now).Return(int64(12), nil).Once()

	jr := NewJobRunner(sweeper, cleaner, config.SchedulerConfig{NotificationRetentionDays: 30}, logger.NewNoop())
	jr.now = func() time.Time { return now }
	jr.RunAll()

	sweeper.AssertExpectations(t)
	cleaner.AssertExpectations(t)
}

func TestCleanupDisabledWithoutRetention(t *testing.T) {
	cleaner := new(mockCleaner)
	jr := NewJobRunner(new(mockSweeper), cleaner, config.SchedulerConfig{}, logger.NewNoop())

	jr.CleanupNotifications()
	cleaner.AssertNotCalled(t, "Cleanup", mock.Anything, mock.Anything, mock.Anything)
}

type panicSweeper struct{}

func (panicSweeper) AdvanceDue(context.Context) (int, error) { panic("db gone") }

func TestJobsSurviveFailures(t *testing.T) {
	failing := new(mockSweeper)
	failing.On("AdvanceDue", mock.Anything).Return(0, errors.New("timeout"))

	assert.NotPanics(t, func() {
		NewJobRunner(failing, nil, config.SchedulerConfig{}, logger.NewNoop()).SweepRentals()
		NewJobRunner(panicSweeper{}, nil, config.SchedulerConfig{}, logger.NewNoop()).SweepRentals()
	})
}
