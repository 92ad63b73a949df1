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

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrAlreadyArtisan  = errors.New("user is already an artisan")
)

// UserRepository отвечает за пользователей, профили мастеров и сессии.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт новый экземпляр.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт пользователя.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, phone, password_hash, full_name, role, is_active, is_verified, address)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)
		RETURNING id, is_active, created_at, updated_at
	`
	// Администраторы и клиенты считаются верифицированными сразу,
	// мастера проходят проверку администратором.
	verified := user.Role != models.RoleArtisan
	if err := r.db.QueryRowxContext(ctx, query,
		user.Email, user.Phone, user.PasswordHash, user.FullName, user.Role, verified, user.Address,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("user repository: create %w", err)
	}
	user.IsVerified = verified
	return nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return common.GetByField[models.User](ctx, r.db, "users", "email", email, ErrUserNotFound)
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetByID[models.User](ctx, r.db, "users", id, ErrUserNotFound)
}

// CreateArtisanProfile создаёт профиль мастера при регистрации с ролью artisan.
func (r *UserRepository) CreateArtisanProfile(ctx context.Context, profile *models.ArtisanProfile) error {
	query := `
		INSERT INTO artisan_profiles (user_id, category_id, skills, experience_years, availability, hourly_rate)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING rating, total_jobs, completed_jobs, total_earnings, pending_balance, available_balance, updated_at
	`
	if profile.Availability == "" {
		profile.Availability = models.AvailabilityAvailable
	}
	if err := r.db.QueryRowxContext(ctx, query,
		profile.UserID, profile.CategoryID, profile.Skills, profile.ExperienceYears,
		profile.Availability, profile.HourlyRate,
	).Scan(&profile.Rating, &profile.TotalJobs, &profile.CompletedJobs,
		&profile.TotalEarnings, &profile.PendingBalance, &profile.AvailableBalance,
		&profile.UpdatedAt); err != nil {
		return fmt.Errorf("user repository: create artisan profile %w", err)
	}
	return nil
}

// GetArtisanProfile возвращает профиль мастера.
func (r *UserRepository) GetArtisanProfile(ctx context.Context, userID uuid.UUID) (*models.ArtisanProfile, error) {
	var profile models.ArtisanProfile
	if err := r.db.GetContext(ctx, &profile, `SELECT * FROM artisan_profiles WHERE user_id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("user repository: get artisan profile %w", err)
	}
	return &profile, nil
}

// UpgradeToArtisan атомарно переводит клиента в мастера: смена роли,
// сброс верификации, создание профиля и заявки на верификацию.
func (r *UserRepository) UpgradeToArtisan(ctx context.Context, userID uuid.UUID, profile *models.ArtisanProfile) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var role string
	err = tx.GetContext(ctx, &role, `SELECT role FROM users WHERE id = $1 FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("user repository: upgrade lock user %w", err)
	}
	if role != models.RoleCustomer {
		return ErrAlreadyArtisan
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET role = $2, is_verified = FALSE, updated_at = NOW() WHERE id = $1
	`, userID, models.RoleArtisan)
	if err != nil {
		return fmt.Errorf("user repository: upgrade role %w", err)
	}

	profile.UserID = userID
	if profile.Availability == "" {
		profile.Availability = models.AvailabilityAvailable
	}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO artisan_profiles (user_id, category_id, skills, experience_years, availability, hourly_rate)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING rating, total_jobs, completed_jobs, total_earnings, pending_balance, available_balance, updated_at
	`, profile.UserID, profile.CategoryID, profile.Skills, profile.ExperienceYears,
		profile.Availability, profile.HourlyRate,
	).Scan(&profile.Rating, &profile.TotalJobs, &profile.CompletedJobs,
		&profile.TotalEarnings, &profile.PendingBalance, &profile.AvailableBalance,
		&profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user repository: upgrade create profile %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO verification_requests (user_id, status) VALUES ($1, $2)
	`, userID, models.VerificationStatusPending)
	if err != nil {
		return fmt.Errorf("user repository: upgrade verification request %w", err)
	}

	return tx.Commit()
}

// SetAvailability выставляет статус доступности мастера без ограничений.
// Используется для ручного переключения самим мастером.
func (r *UserRepository) SetAvailability(ctx context.Context, artisanID uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE artisan_profiles SET availability = $2, updated_at = NOW() WHERE user_id = $1
	`, artisanID, status)
	if err != nil {
		return fmt.Errorf("user repository: set availability %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: set availability rows affected %w", err)
	}
	if rows == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// SetBusy переводит мастера из available в busy. Повторный вызов для уже
// занятого мастера — no-op.
func (r *UserRepository) SetBusy(ctx context.Context, artisanID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE artisan_profiles SET availability = $2, updated_at = NOW()
		WHERE user_id = $1 AND availability = $3
	`, artisanID, models.AvailabilityBusy, models.AvailabilityAvailable)
	if err != nil {
		return fmt.Errorf("user repository: set busy %w", err)
	}
	return nil
}

// ReleaseAvailability возвращает мастера в available, но только из busy:
// ручной offline сохраняется.
func (r *UserRepository) ReleaseAvailability(ctx context.Context, artisanID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE artisan_profiles SET availability = $2, updated_at = NOW()
		WHERE user_id = $1 AND availability = $3
	`, artisanID, models.AvailabilityAvailable, models.AvailabilityBusy)
	if err != nil {
		return fmt.Errorf("user repository: release availability %w", err)
	}
	return nil
}

// UpdateRating записывает пересчитанный рейтинг в кэш профиля.
func (r *UserRepository) UpdateRating(ctx context.Context, artisanID uuid.UUID, rating float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE artisan_profiles SET rating = $2, updated_at = NOW() WHERE user_id = $1
	`, artisanID, rating)
	if err != nil {
		return fmt.Errorf("user repository: update rating %w", err)
	}
	return nil
}

// ArtisanListParams параметры поиска мастеров для назначения.
type ArtisanListParams struct {
	CategoryID   *uuid.UUID
	OnlyVerified bool
	Availability string
	Limit        int
	Offset       int
}

// ArtisanListItem строка списка мастеров с данными профиля.
type ArtisanListItem struct {
	models.User
	CategoryID    uuid.UUID `db:"category_id"`
	Availability  string    `db:"availability"`
	Rating        float64   `db:"rating"`
	CompletedJobs int       `db:"completed_jobs"`
}

// ListArtisans возвращает активных мастеров по фильтрам.
func (r *UserRepository) ListArtisans(ctx context.Context, params ArtisanListParams) ([]ArtisanListItem, error) {
	query := `
		SELECT u.*, p.category_id, p.availability, p.rating, p.completed_jobs
		FROM users u
		JOIN artisan_profiles p ON p.user_id = u.id
		WHERE u.role = 'artisan' AND u.is_active = TRUE
	`
	args := []interface{}{}
	argIndex := 1

	if params.CategoryID != nil {
		query += fmt.Sprintf(" AND p.category_id = $%d", argIndex)
		args = append(args, *params.CategoryID)
		argIndex++
	}
	if params.OnlyVerified {
		query += " AND u.is_verified = TRUE"
	}
	if params.Availability != "" {
		query += fmt.Sprintf(" AND p.availability = $%d", argIndex)
		args = append(args, params.Availability)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY p.rating DESC, u.created_at LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, params.Limit, params.Offset)

	var artisans []ArtisanListItem
	if err := r.db.SelectContext(ctx, &artisans, query, args...); err != nil {
		return nil, fmt.Errorf("user repository: list artisans %w", err)
	}
	return artisans, nil
}

// Deactivate помечает аккаунт неактивным и фиксирует причину.
// Физическое удаление не поддерживается.
func (r *UserRepository) Deactivate(ctx context.Context, userID uuid.UUID, reason *string, permanent bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("user repository: deactivate %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: deactivate rows affected %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO account_deactivations (user_id, reason, is_permanent) VALUES ($1, $2, $3)
	`, userID, reason, permanent)
	if err != nil {
		return fmt.Errorf("user repository: deactivation record %w", err)
	}

	return tx.Commit()
}

// UpdateLastLoginAt обновляет время последнего входа.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
	return err
}

// CreateSession сохраняет сессию пользователя.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		session.UserID, session.RefreshToken, session.UserAgent, session.IPAddress, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}
	return nil
}

// GetSessionByToken возвращает сессию по refresh токену.
func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	return common.GetByField[models.Session](ctx, r.db, "sessions", "refresh_token", refreshToken, ErrSessionNotFound)
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken)
	return err
}
