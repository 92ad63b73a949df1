package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/pkg/apperror"
	"github.com/ignatzorin/artisan-backend/internal/repository"
)

// VerificationStore описывает хранилище заявок на верификацию.
type VerificationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.VerificationRequest, error)
	ListPending(ctx context.Context) ([]models.VerificationRequest, error)
	Review(ctx context.Context, id, reviewerID uuid.UUID, approve bool, comment *string, notifications []repository.NotificationDraft) (*models.VerificationRequest, error)
}

// VerificationService рассматривает заявки мастеров на верификацию.
type VerificationService struct {
	store VerificationStore
}

// NewVerificationService создаёт сервис верификации.
func NewVerificationService(store VerificationStore) *VerificationService {
	return &VerificationService{store: store}
}

// ListPending возвращает нерассмотренные заявки.
func (s *VerificationService) ListPending(ctx context.Context) ([]models.VerificationRequest, error) {
	return s.store.ListPending(ctx)
}

// Review одобряет или отклоняет заявку. Одобрение верифицирует мастера
// и уведомляет его в той же транзакции.
func (s *VerificationService) Review(ctx context.Context, id, reviewerID uuid.UUID, approve bool, comment *string) (*models.VerificationRequest, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "заявка на верификацию не найдена")
		}
		return nil, err
	}

	title := "Аккаунт верифицирован"
	message := "Ваш аккаунт мастера подтверждён. Теперь вам могут назначаться заявки."
	if !approve {
		title = "Верификация отклонена"
		message = "Ваша заявка на верификацию отклонена."
		if comment != nil && *comment != "" {
			message = "Ваша заявка на верификацию отклонена: " + *comment
		}
	}

	notifs := []repository.NotificationDraft{{
		UserID:    current.UserID,
		Title:     title,
		Message:   message,
		Type:      models.NotificationTypeAccountVerified,
		RelatedID: &current.ID,
	}}

	updated, err := s.store.Review(ctx, id, reviewerID, approve, comment, notifs)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVerificationNotFound):
			return nil, apperror.New(apperror.ErrCodeNotFound, "заявка на верификацию не найдена")
		case errors.Is(err, repository.ErrVerificationReviewed):
			return nil, apperror.New(apperror.ErrCodeConflict, "заявка на верификацию уже рассмотрена")
		}
		return nil, err
	}

	return updated, nil
}
