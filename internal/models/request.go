package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceRequest описывает заявку клиента на услугу.
// Статус и artisan_id изменяются только через сервис жизненного цикла:
// конечные статусы неизменяемы, кроме прикрепления отзыва к завершённой заявке.
type ServiceRequest struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	ArtisanID     *uuid.UUID `db:"artisan_id" json:"artisan_id,omitempty"`
	CategoryID    uuid.UUID  `db:"category_id" json:"category_id"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	Location      string     `db:"location" json:"location"`
	PreferredDate *time.Time `db:"preferred_date" json:"preferred_date,omitempty"`
	PreferredTime *string    `db:"preferred_time" json:"preferred_time,omitempty"`
	Status        string     `db:"status" json:"status"`
	AdminNotes    *string    `db:"admin_notes" json:"admin_notes,omitempty"`
	PriceEstimate *float64   `db:"price_estimate" json:"price_estimate,omitempty"`
	ActualPrice   *float64   `db:"actual_price" json:"actual_price,omitempty"`
	Rating        *int       `db:"rating" json:"rating,omitempty"`
	Feedback      *string    `db:"feedback" json:"feedback,omitempty"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// ServiceCategory описывает категорию услуг. Справочные данные,
// управляются администратором.
type ServiceCategory struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Icon        *string   `db:"icon" json:"icon,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Review описывает отзыв клиента о мастере после завершения заявки.
type Review struct {
	ID               uuid.UUID `db:"id" json:"id"`
	ServiceRequestID uuid.UUID `db:"service_request_id" json:"service_request_id"`
	ReviewerID       uuid.UUID `db:"reviewer_id" json:"reviewer_id"`
	RevieweeID       uuid.UUID `db:"reviewee_id" json:"reviewee_id"`
	Rating           int       `db:"rating" json:"rating"`
	Comment          *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// VerificationRequest фиксирует заявку мастера на верификацию.
type VerificationRequest struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	Status      string     `db:"status" json:"status"`
	RequestData *string    `db:"request_data" json:"request_data,omitempty"`
	AdminNotes  *string    `db:"admin_notes" json:"admin_notes,omitempty"`
	ReviewedBy  *uuid.UUID `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// AdminStats содержит сводные показатели для панели администратора.
type AdminStats struct {
	TotalUsers           int `db:"total_users" json:"total_users"`
	TotalArtisans        int `db:"total_artisans" json:"total_artisans"`
	TotalRequests        int `db:"total_requests" json:"total_requests"`
	PendingRequests      int `db:"pending_requests" json:"pending_requests"`
	ActiveRequests       int `db:"active_requests" json:"active_requests"`
	CompletedRequests    int `db:"completed_requests" json:"completed_requests"`
	PendingVerifications int `db:"pending_verifications" json:"pending_verifications"`
}
