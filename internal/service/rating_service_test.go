package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRatingStore struct {
	mock.Mock
}

func (m *mockRatingStore) GetAverageRating(ctx context.Context, artisanID uuid.UUID) (float64, int, error) {
	args := m.Called(ctx, artisanID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

type mockRatingWriter struct {
	mock.Mock
}

func (m *mockRatingWriter) UpdateRating(ctx context.Context, artisanID uuid.UUID, rating float64) error {
	args := m.Called(ctx, artisanID, rating)
	return args.Error(0)
}

func TestRatingService_Recompute_Average(t *testing.T) {
	store := new(mockRatingStore)
	writer := new(mockRatingWriter)
	svc := NewRatingService(store, writer)
	ctx := context.Background()
	artisanID := uuid.New()

	// Оценки 5, 5, 4 дают среднее 4.666...
	avg := 14.0 / 3.0
	store.On("GetAverageRating", ctx, artisanID).Return(avg, 3, nil)
	writer.On("UpdateRating", ctx, artisanID, avg).Return(nil)

	got, err := svc.Recompute(ctx, artisanID)
	assert.NoError(t, err)
	assert.InDelta(t, 4.6667, got, 0.001)
	writer.AssertExpectations(t)
}

func TestRatingService_Recompute_NoReviews(t *testing.T) {
	store := new(mockRatingStore)
	writer := new(mockRatingWriter)
	svc := NewRatingService(store, writer)
	ctx := context.Background()
	artisanID := uuid.New()

	store.On("GetAverageRating", ctx, artisanID).Return(0.0, 0, nil)
	writer.On("UpdateRating", ctx, artisanID, 0.0).Return(nil)

	got, err := svc.Recompute(ctx, artisanID)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, got)
	writer.AssertExpectations(t)
}

func TestRatingService_Recompute_WriteError(t *testing.T) {
	store := new(mockRatingStore)
	writer := new(mockRatingWriter)
	svc := NewRatingService(store, writer)
	ctx := context.Background()
	artisanID := uuid.New()

	store.On("GetAverageRating", ctx, artisanID).Return(4.0, 2, nil)
	writer.On("UpdateRating", ctx, artisanID, 4.0).Return(errors.New("db down"))

	_, err := svc.Recompute(ctx, artisanID)
	assert.Error(t, err)
}
