package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/repository/common"
)

// Ошибки репозитория категорий.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
)

// CategoryRepository отвечает за справочник категорий услуг.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository создаёт экземпляр репозитория.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List возвращает категории, опционально только активные.
func (r *CategoryRepository) List(ctx context.Context, activeOnly bool) ([]models.ServiceCategory, error) {
	query := `SELECT * FROM service_categories`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	var categories []models.ServiceCategory
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("category repository: list %w", err)
	}

	return categories, nil
}

// GetByID возвращает категорию по идентификатору.
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceCategory, error) {
	category, err := common.GetByID[models.ServiceCategory](ctx, r.db, "service_categories", id, ErrCategoryNotFound)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("category repository: get by id %w", err)
	}

	return category, nil
}

// Create создаёт категорию. Имя уникально.
func (r *CategoryRepository) Create(ctx context.Context, category *models.ServiceCategory) error {
	query := `
		INSERT INTO service_categories (name, description, icon, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, is_active, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		category.Name,
		category.Description,
		category.Icon,
	).Scan(&category.ID, &category.IsActive, &category.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrCategoryExists
		}
		return fmt.Errorf("category repository: create %w", err)
	}

	return nil
}

// Update обновляет имя, описание и иконку категории.
func (r *CategoryRepository) Update(ctx context.Context, category *models.ServiceCategory) error {
	query := `
		UPDATE service_categories
		SET name = $2, description = $3, icon = $4
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.Icon,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrCategoryExists
		}
		return fmt.Errorf("category repository: update %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("category repository: update rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// SetActive включает или выключает категорию. Выключенная категория
// скрывается из публичного списка, существующие заявки не трогаются.
func (r *CategoryRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE service_categories SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("category repository: set active %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("category repository: set active rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
