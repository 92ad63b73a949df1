package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification описывает уведомление пользователя. Записи только добавляются:
// получатель может пометить уведомление прочитанным или удалить, но не менять.
type Notification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Title     string     `db:"title" json:"title"`
	Message   string     `db:"message" json:"message"`
	Type      string     `db:"type" json:"type"`
	RelatedID *uuid.UUID `db:"related_id" json:"related_id,omitempty"`
	IsRead    bool       `db:"is_read" json:"is_read"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
