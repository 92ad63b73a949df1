package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/pkg/apperror"
	"github.com/ignatzorin/artisan-backend/internal/repository"
)

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateForAdmins(ctx context.Context, title, message, notifType string, relatedID *uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool, typeFilter string) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// NotificationService содержит бизнес-логику работы с уведомлениями.
// Уведомления принадлежат получателю: операции над чужими уведомлениями
// запрещены независимо от роли отправителя.
type NotificationService struct {
	repo NotificationRepository
}

// NewNotificationService создаёт новый сервис уведомлений.
func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify создаёт уведомление для конкретного пользователя.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, message, notifType string, relatedID *uuid.UUID) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		RelatedID: relatedID,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	return notification, nil
}

// NotifyAdmins рассылает уведомление всем активным администраторам.
func (s *NotificationService) NotifyAdmins(ctx context.Context, title, message, notifType string, relatedID *uuid.UUID) error {
	return s.repo.CreateForAdmins(ctx, title, message, notifType, relatedID)
}

// List возвращает уведомления пользователя, новые первыми.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool, typeFilter string) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.List(ctx, userID, limit, offset, unreadOnly, typeFilter)
}

// CountUnread возвращает число непрочитанных уведомлений пользователя.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkAsRead отмечает уведомление прочитанным после проверки владельца.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.checkOwner(ctx, userID, notificationID); err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, notificationID)
}

// MarkAllAsRead отмечает все уведомления пользователя прочитанными.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// Delete удаляет уведомление после проверки владельца.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.checkOwner(ctx, userID, notificationID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, notificationID)
}

// DeleteRead удаляет прочитанные уведомления пользователя.
func (s *NotificationService) DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.DeleteRead(ctx, userID)
}

// DeleteAll удаляет все уведомления пользователя.
func (s *NotificationService) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.DeleteAll(ctx, userID)
}

// checkOwner сверяет получателя уведомления с инициатором операции.
func (s *NotificationService) checkOwner(ctx context.Context, userID, notificationID uuid.UUID) error {
	notification, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "уведомление не найдено")
		}
		return err
	}

	if notification.UserID != userID {
		return apperror.ErrForbidden
	}

	return nil
}
