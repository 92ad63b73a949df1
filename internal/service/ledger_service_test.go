package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/artisan-backend/internal/models"
)

type mockLedgerStore struct {
	mock.Mock
}

func (m *mockLedgerStore) GetSummary(ctx context.Context, artisanID uuid.UUID, months int) (*models.LedgerSummary, error) {
	args := m.Called(ctx, artisanID, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerSummary), args.Error(1)
}

func (m *mockLedgerStore) MonthlySeries(ctx context.Context, artisanID uuid.UUID, months int) ([]models.MonthlyEarning, error) {
	args := m.Called(ctx, artisanID, months)
	return args.Get(0).([]models.MonthlyEarning), args.Error(1)
}

func (m *mockLedgerStore) AvailableBalance(ctx context.Context, artisanID uuid.UUID) (float64, error) {
	args := m.Called(ctx, artisanID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockLedgerStore) RefreshSnapshot(ctx context.Context, artisanID uuid.UUID) error {
	args := m.Called(ctx, artisanID)
	return args.Error(0)
}

func newLedgerServiceForTest() (*LedgerService, *mockLedgerStore) {
	store := new(mockLedgerStore)
	// Без Redis кэш выключен и каждый вызов идёт в хранилище.
	svc := NewLedgerService(store, NewCacheService(nil), 30*time.Second, 6)
	return svc, store
}

func TestLedgerService_GetSummary_ComputedOnRead(t *testing.T) {
	svc, store := newLedgerServiceForTest()
	ctx := context.Background()
	artisanID := uuid.New()

	summary := &models.LedgerSummary{
		TotalEarnings:    12000,
		AvailableBalance: 9500,
		PendingBalance:   1500,
		CompletedJobs:    8,
	}
	store.On("GetSummary", ctx, artisanID, 6).Return(summary, nil).Twice()

	got, err := svc.GetSummary(ctx, artisanID)
	assert.NoError(t, err)
	assert.Equal(t, 9500.0, got.AvailableBalance)

	// Кэш выключен, второй вызов снова читает хранилище.
	_, err = svc.GetSummary(ctx, artisanID)
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestLedgerService_AvailableBalance_Passthrough(t *testing.T) {
	svc, store := newLedgerServiceForTest()
	ctx := context.Background()
	artisanID := uuid.New()

	store.On("AvailableBalance", ctx, artisanID).Return(3200.50, nil)

	balance, err := svc.AvailableBalance(ctx, artisanID)
	assert.NoError(t, err)
	assert.Equal(t, 3200.50, balance)
}

func TestLedgerService_RefreshSnapshot_Delegates(t *testing.T) {
	svc, store := newLedgerServiceForTest()
	ctx := context.Background()
	artisanID := uuid.New()

	store.On("RefreshSnapshot", ctx, artisanID).Return(nil)

	assert.NoError(t, svc.RefreshSnapshot(ctx, artisanID))
	store.AssertExpectations(t)
}

func TestLedgerService_DefaultMonths(t *testing.T) {
	store := new(mockLedgerStore)
	svc := NewLedgerService(store, NewCacheService(nil), time.Second, 0)
	ctx := context.Background()
	artisanID := uuid.New()

	store.On("GetSummary", ctx, artisanID, 6).Return(&models.LedgerSummary{}, nil)

	_, err := svc.GetSummary(ctx, artisanID)
	assert.NoError(t, err)
	store.AssertExpectations(t)
}
