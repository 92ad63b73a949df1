package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает сущность пользователя платформы.
// Роль хранится тегом: customer, artisan или admin.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"phone"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	IsVerified   bool       `db:"is_verified" json:"is_verified"`
	Address      *string    `db:"address" json:"address,omitempty"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// IsArtisan сообщает, является ли пользователь мастером.
func (u *User) IsArtisan() bool { return u.Role == RoleArtisan }

// IsAdmin сообщает, является ли пользователь администратором.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// ArtisanProfile описывает профиль мастера (1:1 с пользователем роли artisan).
// Поля rating, total_jobs, completed_jobs и финансовые суммы — кэш производных
// значений: источником истины остаются завершённые заявки и выплаты.
type ArtisanProfile struct {
	UserID           uuid.UUID `db:"user_id" json:"user_id"`
	CategoryID       uuid.UUID `db:"category_id" json:"category_id"`
	Skills           *string   `db:"skills" json:"skills,omitempty"`
	ExperienceYears  int       `db:"experience_years" json:"experience_years"`
	Availability     string    `db:"availability" json:"availability"`
	Rating           float64   `db:"rating" json:"rating"`
	TotalJobs        int       `db:"total_jobs" json:"total_jobs"`
	CompletedJobs    int       `db:"completed_jobs" json:"completed_jobs"`
	HourlyRate       *float64  `db:"hourly_rate" json:"hourly_rate,omitempty"`
	TotalEarnings    float64   `db:"total_earnings" json:"total_earnings"`
	PendingBalance   float64   `db:"pending_balance" json:"pending_balance"`
	AvailableBalance float64   `db:"available_balance" json:"available_balance"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AccountDeactivation фиксирует деактивацию аккаунта.
// Пользователи никогда не удаляются физически.
type AccountDeactivation struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	Reason        *string    `db:"reason" json:"reason,omitempty"`
	IsPermanent   bool       `db:"is_permanent" json:"is_permanent"`
	DeactivatedAt time.Time  `db:"deactivated_at" json:"deactivated_at"`
	ReactivatedAt *time.Time `db:"reactivated_at" json:"reactivated_at,omitempty"`
}
