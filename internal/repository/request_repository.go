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

// Ошибки уровня репозитория.
var (
	ErrRequestNotFound  = errors.New("service request not found")
	ErrProfileNotFound  = errors.New("artisan profile not found")
	ErrStatusConflict   = errors.New("request status changed")
	ErrArtisanBusy      = errors.New("artisan is not available")
	ErrAlreadyRated     = errors.New("request already rated")
	ErrRequestNotDone   = errors.New("request is not completed")
	ErrRequestImmutable = errors.New("request is in terminal status")
)

// NotificationDraft описывает уведомление, которое должно быть записано
// в той же транзакции, что и переход статуса. ToAdmins разворачивает запись
// в рассылку всем активным администраторам.
type NotificationDraft struct {
	UserID    uuid.UUID
	ToAdmins  bool
	Title     string
	Message   string
	Type      string
	RelatedID *uuid.UUID
}

// TransitionParams описывает атомарный переход статуса заявки.
type TransitionParams struct {
	RequestID uuid.UUID
	From      string
	To        string
	// ReleaseArtisan возвращает мастера в available, но только из busy:
	// ушедший в offline мастер остаётся offline.
	ReleaseArtisan bool
	// RecordCompletion обновляет кэш счётчиков и заработка в профиле мастера.
	RecordCompletion bool
	Notifications    []NotificationDraft
}

// RequestRepository отвечает за заявки на услуги и их жизненный цикл.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository создаёт новый экземпляр.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create создаёт заявку в статусе pending и записывает уведомления
// в одной транзакции.
func (r *RequestRepository) Create(ctx context.Context, req *models.ServiceRequest, notifs []NotificationDraft) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO service_requests (user_id, category_id, title, description, location, preferred_date, preferred_time, price_estimate, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	if err := tx.QueryRowxContext(ctx, query,
		req.UserID, req.CategoryID, req.Title, req.Description, req.Location,
		req.PreferredDate, req.PreferredTime, req.PriceEstimate, models.RequestStatusPending,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return fmt.Errorf("request repository: create %w", err)
	}
	req.Status = models.RequestStatusPending

	for i := range notifs {
		if notifs[i].RelatedID == nil {
			id := req.ID
			notifs[i].RelatedID = &id
		}
	}
	if err := insertNotificationsTx(ctx, tx, notifs); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID возвращает заявку по идентификатору.
func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	return common.GetByID[models.ServiceRequest](ctx, r.db, "service_requests", id, ErrRequestNotFound)
}

// ListByUser возвращает заявки клиента.
func (r *RequestRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ServiceRequest, error) {
	var requests []models.ServiceRequest
	err := r.db.SelectContext(ctx, &requests, `
		SELECT * FROM service_requests WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("request repository: list by user %w", err)
	}
	return requests, nil
}

// ListByArtisan возвращает заявки, назначенные мастеру, с необязательным
// фильтром по статусу.
func (r *RequestRepository) ListByArtisan(ctx context.Context, artisanID uuid.UUID, status string, limit, offset int) ([]models.ServiceRequest, error) {
	query := `SELECT * FROM service_requests WHERE artisan_id = $1`
	args := []interface{}{artisanID}
	argIndex := 2

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var requests []models.ServiceRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("request repository: list by artisan %w", err)
	}
	return requests, nil
}

// List возвращает заявки для панели администратора.
func (r *RequestRepository) List(ctx context.Context, status string, limit, offset int) ([]models.ServiceRequest, error) {
	query := `SELECT * FROM service_requests`
	args := []interface{}{}
	argIndex := 1

	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var requests []models.ServiceRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("request repository: list %w", err)
	}
	return requests, nil
}

// Assign привязывает мастера к pending-заявке. Проверка статуса заявки и
// доступности мастера выполняется под блокировками строк, поэтому два
// конкурентных назначения не могут занять одного мастера дважды.
// Порядок блокировок фиксированный: заявка -> профиль мастера.
func (r *RequestRepository) Assign(ctx context.Context, requestID, artisanID uuid.UUID, adminNotes *string, notifs []NotificationDraft) (*models.ServiceRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var req models.ServiceRequest
	err = tx.GetContext(ctx, &req, `SELECT * FROM service_requests WHERE id = $1 FOR UPDATE`, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("request repository: assign lock request %w", err)
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrStatusConflict
	}

	var profile models.ArtisanProfile
	err = tx.GetContext(ctx, &profile, `SELECT * FROM artisan_profiles WHERE user_id = $1 FOR UPDATE`, artisanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("request repository: assign lock profile %w", err)
	}
	if profile.Availability != models.AvailabilityAvailable {
		return nil, ErrArtisanBusy
	}

	err = tx.GetContext(ctx, &req, `
		UPDATE service_requests
		SET artisan_id = $2, status = $3, admin_notes = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, requestID, artisanID, models.RequestStatusAssigned, adminNotes)
	if err != nil {
		return nil, fmt.Errorf("request repository: assign update request %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE artisan_profiles
		SET availability = $2, total_jobs = total_jobs + 1, updated_at = NOW()
		WHERE user_id = $1
	`, artisanID, models.AvailabilityBusy)
	if err != nil {
		return nil, fmt.Errorf("request repository: assign update availability %w", err)
	}

	if err := insertNotificationsTx(ctx, tx, notifs); err != nil {
		return nil, err
	}

	return &req, tx.Commit()
}

// Transition выполняет переход статуса заявки как единую транзакцию:
// смена статуса, освобождение мастера, обновление кэша заработка и запись
// уведомлений либо применяются все вместе, либо не применяются вовсе.
func (r *RequestRepository) Transition(ctx context.Context, p TransitionParams) (*models.ServiceRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var req models.ServiceRequest
	err = tx.GetContext(ctx, &req, `SELECT * FROM service_requests WHERE id = $1 FOR UPDATE`, p.RequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("request repository: transition lock %w", err)
	}
	if req.Status != p.From {
		return nil, ErrStatusConflict
	}

	err = tx.GetContext(ctx, &req, `
		UPDATE service_requests
		SET status = $2,
		    completed_at = CASE WHEN $2 = 'completed' THEN NOW() ELSE completed_at END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, p.RequestID, p.To)
	if err != nil {
		return nil, fmt.Errorf("request repository: transition update %w", err)
	}

	if p.ReleaseArtisan && req.ArtisanID != nil {
		// Возврат в available только из busy: ручной offline не перетирается.
		_, err = tx.ExecContext(ctx, `
			UPDATE artisan_profiles
			SET availability = $2, updated_at = NOW()
			WHERE user_id = $1 AND availability = $3
		`, *req.ArtisanID, models.AvailabilityAvailable, models.AvailabilityBusy)
		if err != nil {
			return nil, fmt.Errorf("request repository: transition release artisan %w", err)
		}
	}

	if p.RecordCompletion && req.ArtisanID != nil {
		// Отсутствующая цена трактуется как 0: администратор может завершить
		// работу до финализации цены.
		_, err = tx.ExecContext(ctx, `
			UPDATE artisan_profiles
			SET completed_jobs = completed_jobs + 1,
			    total_earnings = total_earnings + COALESCE($2, 0),
			    updated_at = NOW()
			WHERE user_id = $1
		`, *req.ArtisanID, req.ActualPrice)
		if err != nil {
			return nil, fmt.Errorf("request repository: transition record completion %w", err)
		}
	}

	if err := insertNotificationsTx(ctx, tx, p.Notifications); err != nil {
		return nil, err
	}

	return &req, tx.Commit()
}

// AttachFeedback прикрепляет оценку и отзыв к завершённой заявке и создаёт
// запись Review в той же транзакции. Повторная отправка отклоняется.
func (r *RequestRepository) AttachFeedback(ctx context.Context, requestID uuid.UUID, rating int, feedback *string) (*models.ServiceRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var req models.ServiceRequest
	err = tx.GetContext(ctx, &req, `SELECT * FROM service_requests WHERE id = $1 FOR UPDATE`, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("request repository: attach feedback lock %w", err)
	}

	if req.Status != models.RequestStatusCompleted {
		return nil, ErrRequestNotDone
	}
	if req.Rating != nil {
		return nil, ErrAlreadyRated
	}

	err = tx.GetContext(ctx, &req, `
		UPDATE service_requests SET rating = $2, feedback = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, requestID, rating, feedback)
	if err != nil {
		return nil, fmt.Errorf("request repository: attach feedback update %w", err)
	}

	if req.ArtisanID != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO reviews (service_request_id, reviewer_id, reviewee_id, rating, comment)
			VALUES ($1, $2, $3, $4, $5)
		`, req.ID, req.UserID, *req.ArtisanID, rating, feedback)
		if err != nil {
			return nil, fmt.Errorf("request repository: attach feedback review %w", err)
		}
	}

	return &req, tx.Commit()
}

// UpdatePrice обновляет оценочную и фактическую цену заявки.
// Конечные статусы неизменяемы.
func (r *RequestRepository) UpdatePrice(ctx context.Context, requestID uuid.UUID, priceEstimate, actualPrice *float64) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	err := r.db.GetContext(ctx, &req, `
		UPDATE service_requests
		SET price_estimate = COALESCE($2, price_estimate),
		    actual_price = COALESCE($3, actual_price),
		    updated_at = NOW()
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled')
		RETURNING *
	`, requestID, priceEstimate, actualPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Либо заявки нет, либо она в конечном статусе.
			if _, getErr := r.GetByID(ctx, requestID); getErr != nil {
				return nil, getErr
			}
			return nil, ErrRequestImmutable
		}
		return nil, fmt.Errorf("request repository: update price %w", err)
	}
	return &req, nil
}

// GetAverageRating возвращает средний рейтинг мастера по завершённым
// заявкам с оценкой и их количество.
func (r *RequestRepository) GetAverageRating(ctx context.Context, artisanID uuid.UUID) (float64, int, error) {
	var result struct {
		Avg   sql.NullFloat64 `db:"avg"`
		Count int             `db:"count"`
	}
	err := r.db.GetContext(ctx, &result, `
		SELECT AVG(rating) as avg, COUNT(rating) as count
		FROM service_requests
		WHERE artisan_id = $1 AND status = 'completed' AND rating IS NOT NULL
	`, artisanID)
	if err != nil {
		return 0, 0, fmt.Errorf("request repository: get average rating %w", err)
	}
	return result.Avg.Float64, result.Count, nil
}

// AdminStats возвращает сводные показатели для панели администратора.
func (r *RequestRepository) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM users WHERE role = 'artisan') AS total_artisans,
			(SELECT COUNT(*) FROM service_requests) AS total_requests,
			(SELECT COUNT(*) FROM service_requests WHERE status = 'pending') AS pending_requests,
			(SELECT COUNT(*) FROM service_requests WHERE status = 'in_progress') AS active_requests,
			(SELECT COUNT(*) FROM service_requests WHERE status = 'completed') AS completed_requests,
			(SELECT COUNT(*) FROM users WHERE role = 'artisan' AND is_verified = FALSE) AS pending_verifications
	`)
	if err != nil {
		return nil, fmt.Errorf("request repository: admin stats %w", err)
	}
	return &stats, nil
}

// insertNotificationsTx записывает черновики уведомлений внутри транзакции.
// Черновик с ToAdmins разворачивается в рассылку всем активным администраторам.
func insertNotificationsTx(ctx context.Context, tx *sqlx.Tx, notifs []NotificationDraft) error {
	for _, n := range notifs {
		if n.ToAdmins {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO notifications (user_id, title, message, type, related_id)
				SELECT id, $1, $2, $3, $4 FROM users WHERE role = 'admin' AND is_active = TRUE
			`, n.Title, n.Message, n.Type, n.RelatedID)
			if err != nil {
				return fmt.Errorf("request repository: insert admin notifications %w", err)
			}
			continue
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (user_id, title, message, type, related_id)
			VALUES ($1, $2, $3, $4, $5)
		`, n.UserID, n.Title, n.Message, n.Type, n.RelatedID)
		if err != nil {
			return fmt.Errorf("request repository: insert notification %w", err)
		}
	}
	return nil
}
