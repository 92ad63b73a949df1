package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/pkg/apperror"
	"github.com/ignatzorin/artisan-backend/internal/repository"
	"github.com/ignatzorin/artisan-backend/internal/validation"
)

// CategoryStore описывает хранилище категорий услуг.
type CategoryStore interface {
	List(ctx context.Context, activeOnly bool) ([]models.ServiceCategory, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceCategory, error)
	Create(ctx context.Context, category *models.ServiceCategory) error
	Update(ctx context.Context, category *models.ServiceCategory) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// CategoryService управляет справочником категорий услуг.
type CategoryService struct {
	store CategoryStore
}

// CategoryInput содержит данные категории.
type CategoryInput struct {
	Name        string
	Description *string
	Icon        *string
}

// NewCategoryService создаёт сервис категорий.
func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

// List возвращает категории. Публичным клиентам отдаются только активные.
func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]models.ServiceCategory, error) {
	return s.store.List(ctx, activeOnly)
}

// Get возвращает категорию по идентификатору.
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.ServiceCategory, error) {
	category, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, apperror.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// Create создаёт категорию.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.ServiceCategory, error) {
	if err := validation.ValidateNonEmpty("название категории", in.Name); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("название категории", in.Name, 2, 100); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	category := &models.ServiceCategory{
		Name:        in.Name,
		Description: in.Description,
		Icon:        in.Icon,
	}

	if err := s.store.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "категория с таким названием уже существует")
		}
		return nil, err
	}

	return category, nil
}

// Update обновляет категорию.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.ServiceCategory, error) {
	if err := validation.ValidateNonEmpty("название категории", in.Name); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = in.Name
	category.Description = in.Description
	category.Icon = in.Icon

	if err := s.store.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, apperror.ErrCategoryNotFound
		case errors.Is(err, repository.ErrCategoryExists):
			return nil, apperror.New(apperror.ErrCodeConflict, "категория с таким названием уже существует")
		}
		return nil, err
	}

	return category, nil
}

// SetActive включает или выключает категорию.
func (s *CategoryService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.store.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return apperror.ErrCategoryNotFound
		}
		return err
	}
	return nil
}
