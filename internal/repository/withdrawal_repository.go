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

// Ошибки репозитория выводов.
var (
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrWithdrawalProcessed = errors.New("withdrawal already processed")
)

// WithdrawalRepository отвечает за заявки на вывод средств.
type WithdrawalRepository struct {
	db *sqlx.DB
}

// NewWithdrawalRepository создаёт экземпляр репозитория.
func NewWithdrawalRepository(db *sqlx.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// Create создаёт заявку на вывод. Профиль мастера блокируется на время
// транзакции, остаток считается по фактическим данным, чтобы параллельные
// заявки не вывели больше доступного.
func (r *WithdrawalRepository) Create(ctx context.Context, withdrawal *models.Withdrawal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("withdrawal repository: begin tx %w", err)
	}
	defer tx.Rollback()

	var profileID uuid.UUID
	if err := tx.GetContext(ctx, &profileID,
		`SELECT user_id FROM artisan_profiles WHERE user_id = $1 FOR UPDATE`,
		withdrawal.ArtisanID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("withdrawal repository: lock profile %w", err)
	}

	var available float64
	balanceQuery := `
		SELECT
			COALESCE((SELECT SUM(COALESCE(actual_price, 0)) FROM service_requests WHERE artisan_id = $1 AND status = 'completed'), 0)
			- COALESCE((SELECT SUM(amount) FROM withdrawals WHERE artisan_id = $1 AND status IN ('pending', 'processing', 'completed')), 0)
	`
	if err := tx.GetContext(ctx, &available, balanceQuery, withdrawal.ArtisanID); err != nil {
		return fmt.Errorf("withdrawal repository: check balance %w", err)
	}

	if available < withdrawal.Amount {
		return ErrInsufficientFunds
	}

	insertQuery := `
		INSERT INTO withdrawals (artisan_id, amount, method, account_details, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING id, status, requested_at
	`
	if err := tx.QueryRowxContext(ctx, insertQuery,
		withdrawal.ArtisanID,
		withdrawal.Amount,
		withdrawal.Method,
		withdrawal.AccountDetails,
	).Scan(&withdrawal.ID, &withdrawal.Status, &withdrawal.RequestedAt); err != nil {
		return fmt.Errorf("withdrawal repository: create %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("withdrawal repository: commit %w", err)
	}

	return nil
}

// GetByID возвращает заявку на вывод по идентификатору.
func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	return common.GetByID[models.Withdrawal](ctx, r.db, "withdrawals", id, ErrWithdrawalNotFound)
}

// ListByArtisan возвращает заявки мастера, новые первыми.
func (r *WithdrawalRepository) ListByArtisan(ctx context.Context, artisanID uuid.UUID) ([]models.Withdrawal, error) {
	var withdrawals []models.Withdrawal
	query := `SELECT * FROM withdrawals WHERE artisan_id = $1 ORDER BY requested_at DESC`
	if err := r.db.SelectContext(ctx, &withdrawals, query, artisanID); err != nil {
		return nil, fmt.Errorf("withdrawal repository: list by artisan %w", err)
	}

	return withdrawals, nil
}

// List возвращает заявки на вывод для администратора с фильтром по статусу.
func (r *WithdrawalRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Withdrawal, error) {
	query := `SELECT * FROM withdrawals`
	args := []interface{}{}
	argIndex := 1

	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += " ORDER BY requested_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
	}

	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, offset)
	}

	var withdrawals []models.Withdrawal
	if err := r.db.SelectContext(ctx, &withdrawals, query, args...); err != nil {
		return nil, fmt.Errorf("withdrawal repository: list %w", err)
	}

	return withdrawals, nil
}

// UpdateStatus переводит заявку в новый статус и уведомляет мастера в той же
// транзакции. Завершённые и отклонённые заявки неизменяемы.
func (r *WithdrawalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, rejectionReason *string, notifications []NotificationDraft) (*models.Withdrawal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("withdrawal repository: begin tx %w", err)
	}
	defer tx.Rollback()

	var current models.Withdrawal
	if err := tx.GetContext(ctx, &current, `SELECT * FROM withdrawals WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("withdrawal repository: lock %w", err)
	}

	if current.Status == models.WithdrawalStatusCompleted || current.Status == models.WithdrawalStatusRejected {
		return nil, ErrWithdrawalProcessed
	}

	var updated models.Withdrawal
	updateQuery := `
		UPDATE withdrawals SET
			status = $2,
			rejection_reason = $3,
			processed_at = CASE WHEN $2 IN ('completed', 'rejected') THEN NOW() ELSE processed_at END
		WHERE id = $1
		RETURNING *
	`
	if err := tx.QueryRowxContext(ctx, updateQuery, id, status, rejectionReason).StructScan(&updated); err != nil {
		return nil, fmt.Errorf("withdrawal repository: update status %w", err)
	}

	if err := insertNotificationsTx(ctx, tx, notifications); err != nil {
		return nil, fmt.Errorf("withdrawal repository: notify %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("withdrawal repository: commit %w", err)
	}

	return &updated, nil
}
