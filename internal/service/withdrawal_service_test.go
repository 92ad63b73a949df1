package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/pkg/apperror"
	"github.com/ignatzorin/artisan-backend/internal/repository"
)

type mockWithdrawalStore struct {
	mock.Mock
}

func (m *mockWithdrawalStore) Create(ctx context.Context, withdrawal *models.Withdrawal) error {
	args := m.Called(ctx, withdrawal)
	return args.Error(0)
}

func (m *mockWithdrawalStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Withdrawal), args.Error(1)
}

func (m *mockWithdrawalStore) ListByArtisan(ctx context.Context, artisanID uuid.UUID) ([]models.Withdrawal, error) {
	args := m.Called(ctx, artisanID)
	return args.Get(0).([]models.Withdrawal), args.Error(1)
}

func (m *mockWithdrawalStore) List(ctx context.Context, status string, limit, offset int) ([]models.Withdrawal, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.Withdrawal), args.Error(1)
}

func (m *mockWithdrawalStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string, rejectionReason *string, notifications []repository.NotificationDraft) (*models.Withdrawal, error) {
	args := m.Called(ctx, id, status, rejectionReason, notifications)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Withdrawal), args.Error(1)
}

type mockLedgerRefresher struct {
	mock.Mock
}

func (m *mockLedgerRefresher) RefreshSnapshot(ctx context.Context, artisanID uuid.UUID) error {
	args := m.Called(ctx, artisanID)
	return args.Error(0)
}

func newWithdrawalServiceForTest() (*WithdrawalService, *mockWithdrawalStore, *mockLedgerRefresher) {
	store := new(mockWithdrawalStore)
	ledger := new(mockLedgerRefresher)
	return NewWithdrawalService(store, ledger, 500), store, ledger
}

func TestWithdrawalService_Create_BelowMinimum(t *testing.T) {
	svc, store, _ := newWithdrawalServiceForTest()
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), 499.99, "card", "4276 0000 0000 0000")
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "минимальная сумма")
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWithdrawalService_Create_InsufficientFunds(t *testing.T) {
	svc, store, _ := newWithdrawalServiceForTest()
	ctx := context.Background()

	store.On("Create", ctx, mock.AnythingOfType("*models.Withdrawal")).
		Return(repository.ErrInsufficientFunds)

	_, err := svc.Create(ctx, uuid.New(), 1000, "card", "4276 0000 0000 0000")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "недостаточно средств")
}

func TestWithdrawalService_Create_RefreshesSnapshot(t *testing.T) {
	svc, store, ledger := newWithdrawalServiceForTest()
	ctx := context.Background()
	artisanID := uuid.New()

	store.On("Create", ctx, mock.MatchedBy(func(w *models.Withdrawal) bool {
		return w.ArtisanID == artisanID && w.Amount == 1500 && w.Method == "card"
	})).Return(nil)
	ledger.On("RefreshSnapshot", ctx, artisanID).Return(nil)

	withdrawal, err := svc.Create(ctx, artisanID, 1500, "card", "4276 0000 0000 0000")
	assert.NoError(t, err)
	assert.Equal(t, artisanID, withdrawal.ArtisanID)
	ledger.AssertExpectations(t)
}

func TestWithdrawalService_UpdateStatus_RejectedWithoutReason(t *testing.T) {
	svc, _, _ := newWithdrawalServiceForTest()
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, uuid.New(), models.WithdrawalStatusRejected, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "причина отклонения")
}

func TestWithdrawalService_UpdateStatus_PendingNotAllowed(t *testing.T) {
	svc, _, _ := newWithdrawalServiceForTest()
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, uuid.New(), models.WithdrawalStatusPending, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestWithdrawalService_UpdateStatus_AlreadyProcessed(t *testing.T) {
	svc, store, _ := newWithdrawalServiceForTest()
	ctx := context.Background()
	id := uuid.New()
	artisanID := uuid.New()

	store.On("GetByID", ctx, id).Return(&models.Withdrawal{
		ID: id, ArtisanID: artisanID, Amount: 1000, Status: models.WithdrawalStatusCompleted,
	}, nil)
	store.On("UpdateStatus", ctx, id, models.WithdrawalStatusProcessing, (*string)(nil), mock.Anything).
		Return(nil, repository.ErrWithdrawalProcessed)

	_, err := svc.UpdateStatus(ctx, id, models.WithdrawalStatusProcessing, nil)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeConflict))
	assert.Contains(t, err.Error(), "уже обработана")
}

func TestWithdrawalService_UpdateStatus_NotifiesArtisan(t *testing.T) {
	svc, store, ledger := newWithdrawalServiceForTest()
	ctx := context.Background()
	id := uuid.New()
	artisanID := uuid.New()
	reason := "неверные реквизиты"

	store.On("GetByID", ctx, id).Return(&models.Withdrawal{
		ID: id, ArtisanID: artisanID, Amount: 2000, Status: models.WithdrawalStatusPending,
	}, nil)
	store.On("UpdateStatus", ctx, id, models.WithdrawalStatusRejected, &reason, mock.MatchedBy(func(notifs []repository.NotificationDraft) bool {
		return len(notifs) == 1 && notifs[0].UserID == artisanID &&
			notifs[0].Type == models.NotificationTypeWithdrawalUpdate
	})).Return(&models.Withdrawal{
		ID: id, ArtisanID: artisanID, Amount: 2000, Status: models.WithdrawalStatusRejected,
	}, nil)
	ledger.On("RefreshSnapshot", ctx, artisanID).Return(nil)

	updated, err := svc.UpdateStatus(ctx, id, models.WithdrawalStatusRejected, &reason)
	assert.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusRejected, updated.Status)
	store.AssertExpectations(t)
	ledger.AssertExpectations(t)
}
