package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/repository/common"
)

// Ошибки репозитория верификации.
var (
	ErrVerificationNotFound = errors.New("verification request not found")
	ErrVerificationReviewed = errors.New("verification request already reviewed")
)

// VerificationRepository отвечает за заявки мастеров на верификацию.
type VerificationRepository struct {
	db *sqlx.DB
}

// NewVerificationRepository создаёт экземпляр репозитория.
func NewVerificationRepository(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Create создаёт заявку на верификацию в статусе pending.
func (r *VerificationRepository) Create(ctx context.Context, request *models.VerificationRequest) error {
	query := `
		INSERT INTO verification_requests (user_id, status, request_data)
		VALUES ($1, 'pending', $2)
		RETURNING id, status, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, request.UserID, request.RequestData).
		Scan(&request.ID, &request.Status, &request.CreatedAt, &request.UpdatedAt); err != nil {
		return fmt.Errorf("verification repository: create %w", err)
	}

	return nil
}

// GetByID возвращает заявку на верификацию по идентификатору.
func (r *VerificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VerificationRequest, error) {
	return common.GetByID[models.VerificationRequest](ctx, r.db, "verification_requests", id, ErrVerificationNotFound)
}

// ListPending возвращает нерассмотренные заявки, старые первыми.
func (r *VerificationRepository) ListPending(ctx context.Context) ([]models.VerificationRequest, error) {
	var requests []models.VerificationRequest
	query := `SELECT * FROM verification_requests WHERE status = 'pending' ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("verification repository: list pending %w", err)
	}

	return requests, nil
}

// Review рассматривает заявку: обновляет её статус, при одобрении
// проставляет is_verified мастеру и уведомляет его в одной транзакции.
func (r *VerificationRepository) Review(ctx context.Context, id, reviewerID uuid.UUID, approve bool, comment *string, notifications []NotificationDraft) (*models.VerificationRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("verification repository: begin tx %w", err)
	}
	defer tx.Rollback()

	var current models.VerificationRequest
	if err := tx.GetContext(ctx, &current, `SELECT * FROM verification_requests WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVerificationNotFound
		}
		return nil, fmt.Errorf("verification repository: lock %w", err)
	}

	if current.Status != models.VerificationStatusPending {
		return nil, ErrVerificationReviewed
	}

	status := models.VerificationStatusApproved
	if !approve {
		status = models.VerificationStatusRejected
	}

	var updated models.VerificationRequest
	updateQuery := `
		UPDATE verification_requests
		SET status = $2, reviewed_by = $3, admin_notes = $4, reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`
	if err := tx.QueryRowxContext(ctx, updateQuery, id, status, reviewerID, comment).StructScan(&updated); err != nil {
		return nil, fmt.Errorf("verification repository: review %w", err)
	}

	if approve {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET is_verified = TRUE, updated_at = NOW() WHERE id = $1`, current.UserID); err != nil {
			return nil, fmt.Errorf("verification repository: verify user %w", err)
		}
	}

	if err := insertNotificationsTx(ctx, tx, notifications); err != nil {
		return nil, fmt.Errorf("verification repository: notify %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("verification repository: commit %w", err)
	}

	return &updated, nil
}
