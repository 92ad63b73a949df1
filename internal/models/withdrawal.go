package models

import (
	"time"

	"github.com/google/uuid"
)

// Withdrawal описывает запрос мастера на выплату заработанных средств.
type Withdrawal struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	ArtisanID       uuid.UUID  `db:"artisan_id" json:"artisan_id"`
	Amount          float64    `db:"amount" json:"amount"`
	Method          string     `db:"method" json:"method"`
	AccountDetails  *string    `db:"account_details" json:"account_details,omitempty"`
	Status          string     `db:"status" json:"status"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	RequestedAt     time.Time  `db:"requested_at" json:"requested_at"`
	ProcessedAt     *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}

// LedgerSummary — производная финансовая сводка мастера.
// Вычисляется агрегацией по завершённым заявкам и выплатам,
// кэшированные поля профиля обновляются из неё, а не наоборот.
type LedgerSummary struct {
	ArtisanID        uuid.UUID        `json:"artisan_id"`
	TotalEarnings    float64          `json:"total_earnings"`
	AvailableBalance float64          `json:"available_balance"`
	PendingBalance   float64          `json:"pending_balance"`
	CompletedJobs    int              `json:"completed_jobs"`
	Monthly          []MonthlyEarning `json:"monthly"`
}

// MonthlyEarning — заработок за один календарный месяц.
type MonthlyEarning struct {
	Period string  `db:"period" json:"period"`
	Total  float64 `db:"total" json:"total"`
}
