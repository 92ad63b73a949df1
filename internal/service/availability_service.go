package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/pkg/apperror"
	"github.com/ignatzorin/artisan-backend/internal/repository"
)

// AvailabilityStore описывает операции над доступностью мастера.
type AvailabilityStore interface {
	GetArtisanProfile(ctx context.Context, userID uuid.UUID) (*models.ArtisanProfile, error)
	SetAvailability(ctx context.Context, artisanID uuid.UUID, status string) error
	SetBusy(ctx context.Context, artisanID uuid.UUID) error
	ReleaseAvailability(ctx context.Context, artisanID uuid.UUID) error
}

// AvailabilityService управляет статусом доступности мастера.
// Ручная установка принимает любой допустимый статус; системное
// освобождение возвращает только из busy в available, чтобы не
// перетирать выставленный вручную offline.
type AvailabilityService struct {
	store AvailabilityStore
}

// NewAvailabilityService создаёт сервис доступности.
func NewAvailabilityService(store AvailabilityStore) *AvailabilityService {
	return &AvailabilityService{store: store}
}

// Get возвращает текущий статус доступности мастера.
func (s *AvailabilityService) Get(ctx context.Context, artisanID uuid.UUID) (string, error) {
	profile, err := s.store.GetArtisanProfile(ctx, artisanID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return "", apperror.ErrUserNotFound
		}
		return "", err
	}
	return profile.Availability, nil
}

// SetManual выставляет статус доступности по запросу мастера.
func (s *AvailabilityService) SetManual(ctx context.Context, artisanID uuid.UUID, status string) error {
	if !models.ValidAvailabilityStatuses[status] {
		return apperror.ErrInvalidAvailability
	}

	if err := s.store.SetAvailability(ctx, artisanID, status); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return apperror.ErrUserNotFound
		}
		return err
	}

	return nil
}

// Reserve помечает свободного мастера занятым. Эксклюзивность назначения
// обеспечивается транзакцией назначения, здесь только системная пометка.
func (s *AvailabilityService) Reserve(ctx context.Context, artisanID uuid.UUID) error {
	return s.store.SetBusy(ctx, artisanID)
}

// Release освобождает мастера после завершения или отмены работ.
// Мастер в offline остаётся offline.
func (s *AvailabilityService) Release(ctx context.Context, artisanID uuid.UUID) error {
	return s.store.ReleaseAvailability(ctx, artisanID)
}
