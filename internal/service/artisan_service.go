package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/pkg/apperror"
	"github.com/ignatzorin/artisan-backend/internal/repository"
)

// ArtisanStore описывает доступ к мастерам и их профилям.
type ArtisanStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetArtisanProfile(ctx context.Context, userID uuid.UUID) (*models.ArtisanProfile, error)
	ListArtisans(ctx context.Context, params repository.ArtisanListParams) ([]repository.ArtisanListItem, error)
}

// ArtisanService отдаёт каталог мастеров и их профили.
type ArtisanService struct {
	store ArtisanStore
}

// NewArtisanService создаёт сервис мастеров.
func NewArtisanService(store ArtisanStore) *ArtisanService {
	return &ArtisanService{store: store}
}

// List возвращает мастеров по фильтрам каталога.
func (s *ArtisanService) List(ctx context.Context, params repository.ArtisanListParams) ([]repository.ArtisanListItem, error) {
	if params.Availability != "" && !models.ValidAvailabilityStatuses[params.Availability] {
		return nil, apperror.ErrInvalidAvailability
	}
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}
	return s.store.ListArtisans(ctx, params)
}

// GetProfile возвращает профиль мастера вместе с учётной записью.
func (s *ArtisanService) GetProfile(ctx context.Context, artisanID uuid.UUID) (*models.User, *models.ArtisanProfile, error) {
	user, err := s.store.GetByID(ctx, artisanID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, apperror.ErrUserNotFound
		}
		return nil, nil, err
	}

	if !user.IsArtisan() {
		return nil, nil, apperror.ErrUserNotFound
	}

	profile, err := s.store.GetArtisanProfile(ctx, artisanID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, nil, apperror.ErrUserNotFound
		}
		return nil, nil, err
	}

	return user, profile, nil
}
