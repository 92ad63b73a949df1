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

type mockAvailabilityStore struct {
	mock.Mock
}

func (m *mockAvailabilityStore) GetArtisanProfile(ctx context.Context, userID uuid.UUID) (*models.ArtisanProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ArtisanProfile), args.Error(1)
}

func (m *mockAvailabilityStore) SetAvailability(ctx context.Context, artisanID uuid.UUID, status string) error {
	args := m.Called(ctx, artisanID, status)
	return args.Error(0)
}

func (m *mockAvailabilityStore) SetBusy(ctx context.Context, artisanID uuid.UUID) error {
	args := m.Called(ctx, artisanID)
	return args.Error(0)
}

func (m *mockAvailabilityStore) ReleaseAvailability(ctx context.Context, artisanID uuid.UUID) error {
	args := m.Called(ctx, artisanID)
	return args.Error(0)
}

func TestAvailabilityService_SetManual_InvalidStatus(t *testing.T) {
	store := new(mockAvailabilityStore)
	svc := NewAvailabilityService(store)
	ctx := context.Background()

	for _, status := range []string{"", "vacation", "BUSY", "free"} {
		err := svc.SetManual(ctx, uuid.New(), status)
		assert.ErrorIs(t, err, apperror.ErrInvalidAvailability, "статус %q должен быть отклонён", status)
	}
	store.AssertNotCalled(t, "SetAvailability", mock.Anything, mock.Anything, mock.Anything)
}

func TestAvailabilityService_SetManual_Success(t *testing.T) {
	store := new(mockAvailabilityStore)
	svc := NewAvailabilityService(store)
	ctx := context.Background()
	artisanID := uuid.New()

	for _, status := range []string{
		models.AvailabilityAvailable,
		models.AvailabilityBusy,
		models.AvailabilityOffline,
	} {
		store.On("SetAvailability", ctx, artisanID, status).Return(nil).Once()
		assert.NoError(t, svc.SetManual(ctx, artisanID, status))
	}
	store.AssertExpectations(t)
}

func TestAvailabilityService_SetManual_NoProfile(t *testing.T) {
	store := new(mockAvailabilityStore)
	svc := NewAvailabilityService(store)
	ctx := context.Background()
	artisanID := uuid.New()

	store.On("SetAvailability", ctx, artisanID, models.AvailabilityOffline).
		Return(repository.ErrProfileNotFound)

	err := svc.SetManual(ctx, artisanID, models.AvailabilityOffline)
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
}

func TestAvailabilityService_Get_Success(t *testing.T) {
	store := new(mockAvailabilityStore)
	svc := NewAvailabilityService(store)
	ctx := context.Background()
	artisanID := uuid.New()

	store.On("GetArtisanProfile", ctx, artisanID).Return(&models.ArtisanProfile{
		UserID: artisanID, Availability: models.AvailabilityBusy,
	}, nil)

	status, err := svc.Get(ctx, artisanID)
	assert.NoError(t, err)
	assert.Equal(t, models.AvailabilityBusy, status)
}

func TestAvailabilityService_Release_Passthrough(t *testing.T) {
	store := new(mockAvailabilityStore)
	svc := NewAvailabilityService(store)
	ctx := context.Background()
	artisanID := uuid.New()

	store.On("ReleaseAvailability", ctx, artisanID).Return(nil)

	assert.NoError(t, svc.Release(ctx, artisanID))
	store.AssertExpectations(t)
}
