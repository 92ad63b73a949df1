package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/artisan-backend/internal/models"
)

// LedgerRepository агрегирует заработок мастера на чтении: сумма по
// завершённым заявкам минус выполненные выводы. Кэшированные поля в
// artisan_profiles обновляются только через RefreshSnapshot.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository создаёт экземпляр репозитория.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ledgerTotals содержит сырые агрегаты для одной сводки.
type ledgerTotals struct {
	TotalEarnings  float64 `db:"total_earnings"`
	CompletedJobs  int     `db:"completed_jobs"`
	WithdrawnTotal float64 `db:"withdrawn_total"`
	PendingTotal   float64 `db:"pending_total"`
}

// GetSummary собирает сводку по заработку мастера.
// Отсутствие завершённых заявок не ошибка: возвращается нулевая сводка.
func (r *LedgerRepository) GetSummary(ctx context.Context, artisanID uuid.UUID, months int) (*models.LedgerSummary, error) {
	var totals ledgerTotals
	query := `
		SELECT
			COALESCE((SELECT SUM(COALESCE(actual_price, 0)) FROM service_requests WHERE artisan_id = $1 AND status = 'completed'), 0) AS total_earnings,
			(SELECT COUNT(*) FROM service_requests WHERE artisan_id = $1 AND status = 'completed') AS completed_jobs,
			COALESCE((SELECT SUM(amount) FROM withdrawals WHERE artisan_id = $1 AND status = 'completed'), 0) AS withdrawn_total,
			COALESCE((SELECT SUM(amount) FROM withdrawals WHERE artisan_id = $1 AND status IN ('pending', 'processing')), 0) AS pending_total
	`
	if err := r.db.GetContext(ctx, &totals, query, artisanID); err != nil {
		return nil, fmt.Errorf("ledger repository: get summary %w", err)
	}

	monthly, err := r.MonthlySeries(ctx, artisanID, months)
	if err != nil {
		return nil, err
	}

	return &models.LedgerSummary{
		ArtisanID:        artisanID,
		TotalEarnings:    totals.TotalEarnings,
		AvailableBalance: totals.TotalEarnings - totals.WithdrawnTotal - totals.PendingTotal,
		PendingBalance:   totals.PendingTotal,
		CompletedJobs:    totals.CompletedJobs,
		Monthly:          monthly,
	}, nil
}

// MonthlySeries возвращает помесячный заработок за последние months месяцев,
// от старых к новым. Месяцы без завершённых заявок опускаются.
func (r *LedgerRepository) MonthlySeries(ctx context.Context, artisanID uuid.UUID, months int) ([]models.MonthlyEarning, error) {
	if months <= 0 {
		months = 6
	}

	query := `
		SELECT
			to_char(date_trunc('month', completed_at), 'YYYY-MM') AS period,
			SUM(COALESCE(actual_price, 0)) AS total
		FROM service_requests
		WHERE artisan_id = $1
		  AND status = 'completed'
		  AND completed_at >= date_trunc('month', NOW()) - make_interval(months => $2 - 1)
		GROUP BY date_trunc('month', completed_at)
		ORDER BY date_trunc('month', completed_at)
	`

	var series []models.MonthlyEarning
	if err := r.db.SelectContext(ctx, &series, query, artisanID, months); err != nil {
		return nil, fmt.Errorf("ledger repository: monthly series %w", err)
	}

	return series, nil
}

// AvailableBalance возвращает доступный остаток мастера одним запросом.
func (r *LedgerRepository) AvailableBalance(ctx context.Context, artisanID uuid.UUID) (float64, error) {
	var balance float64
	query := `
		SELECT
			COALESCE((SELECT SUM(COALESCE(actual_price, 0)) FROM service_requests WHERE artisan_id = $1 AND status = 'completed'), 0)
			- COALESCE((SELECT SUM(amount) FROM withdrawals WHERE artisan_id = $1 AND status IN ('pending', 'processing', 'completed')), 0)
	`
	if err := r.db.GetContext(ctx, &balance, query, artisanID); err != nil {
		return 0, fmt.Errorf("ledger repository: available balance %w", err)
	}

	return balance, nil
}

// RefreshSnapshot пересчитывает кэшированные поля профиля из фактических
// данных. Единственный путь записи в total_earnings и балансы профиля.
func (r *LedgerRepository) RefreshSnapshot(ctx context.Context, artisanID uuid.UUID) error {
	query := `
		UPDATE artisan_profiles SET
			total_earnings = agg.total_earnings,
			completed_jobs = agg.completed_jobs,
			available_balance = agg.total_earnings - agg.withdrawn_total - agg.pending_total,
			pending_balance = agg.pending_total,
			updated_at = NOW()
		FROM (
			SELECT
				COALESCE((SELECT SUM(COALESCE(actual_price, 0)) FROM service_requests WHERE artisan_id = $1 AND status = 'completed'), 0) AS total_earnings,
				(SELECT COUNT(*) FROM service_requests WHERE artisan_id = $1 AND status = 'completed') AS completed_jobs,
				COALESCE((SELECT SUM(amount) FROM withdrawals WHERE artisan_id = $1 AND status = 'completed'), 0) AS withdrawn_total,
				COALESCE((SELECT SUM(amount) FROM withdrawals WHERE artisan_id = $1 AND status IN ('pending', 'processing')), 0) AS pending_total
		) AS agg
		WHERE artisan_profiles.user_id = $1
	`
	result, err := r.db.ExecContext(ctx, query, artisanID)
	if err != nil {
		return fmt.Errorf("ledger repository: refresh snapshot %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger repository: refresh snapshot rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrProfileNotFound
	}

	return nil
}
