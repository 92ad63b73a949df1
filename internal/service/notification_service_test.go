package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/pkg/apperror"
	"github.com/ignatzorin/artisan-backend/internal/repository"
)

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *mockNotificationRepo) CreateForAdmins(ctx context.Context, title, message, notifType string, relatedID *uuid.UUID) error {
	args := m.Called(ctx, title, message, notifType, relatedID)
	return args.Error(0)
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *mockNotificationRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool, typeFilter string) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit, offset, unreadOnly, typeFilter)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockNotificationRepo) DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepo) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func TestNotificationService_MarkAsRead_ForeignOwner(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()
	notificationID := uuid.New()

	repo.On("GetByID", ctx, notificationID).Return(&models.Notification{
		ID: notificationID, UserID: uuid.New(),
	}, nil)

	err := svc.MarkAsRead(ctx, uuid.New(), notificationID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	repo.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
}

func TestNotificationService_MarkAsRead_NotFound(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()
	notificationID := uuid.New()

	repo.On("GetByID", ctx, notificationID).Return(nil, repository.ErrNotificationNotFound)

	err := svc.MarkAsRead(ctx, uuid.New(), notificationID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestNotificationService_Delete_Owner(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()
	userID := uuid.New()
	notificationID := uuid.New()

	repo.On("GetByID", ctx, notificationID).Return(&models.Notification{
		ID: notificationID, UserID: userID,
	}, nil)
	repo.On("Delete", ctx, notificationID).Return(nil)

	assert.NoError(t, svc.Delete(ctx, userID, notificationID))
	repo.AssertExpectations(t)
}

func TestNotificationService_List_ClampsLimit(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("List", ctx, userID, 50, 0, false, "").Return([]models.Notification{}, nil).Twice()

	_, err := svc.List(ctx, userID, 0, 0, false, "")
	assert.NoError(t, err)
	_, err = svc.List(ctx, userID, 500, 0, false, "")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestNotificationService_Notify_Success(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("Create", ctx, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == userID && n.Type == models.NotificationTypeStatusUpdate
	})).Return(nil)

	notification, err := svc.Notify(ctx, userID, "Статус изменён", "Заявка отменена", models.NotificationTypeStatusUpdate, nil)
	assert.NoError(t, err)
	assert.Equal(t, userID, notification.UserID)
}
