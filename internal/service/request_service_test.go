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

type mockRequestStore struct {
	mock.Mock
}

func (m *mockRequestStore) Create(ctx context.Context, req *models.ServiceRequest, notifs []repository.NotificationDraft) error {
	args := m.Called(ctx, req, notifs)
	return args.Error(0)
}

func (m *mockRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *mockRequestStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ServiceRequest, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.ServiceRequest), args.Error(1)
}

func (m *mockRequestStore) ListByArtisan(ctx context.Context, artisanID uuid.UUID, status string, limit, offset int) ([]models.ServiceRequest, error) {
	args := m.Called(ctx, artisanID, status, limit, offset)
	return args.Get(0).([]models.ServiceRequest), args.Error(1)
}

func (m *mockRequestStore) List(ctx context.Context, status string, limit, offset int) ([]models.ServiceRequest, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.ServiceRequest), args.Error(1)
}

func (m *mockRequestStore) Assign(ctx context.Context, requestID, artisanID uuid.UUID, adminNotes *string, notifs []repository.NotificationDraft) (*models.ServiceRequest, error) {
	args := m.Called(ctx, requestID, artisanID, adminNotes, notifs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *mockRequestStore) Transition(ctx context.Context, p repository.TransitionParams) (*models.ServiceRequest, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *mockRequestStore) AttachFeedback(ctx context.Context, requestID uuid.UUID, rating int, feedback *string) (*models.ServiceRequest, error) {
	args := m.Called(ctx, requestID, rating, feedback)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *mockRequestStore) UpdatePrice(ctx context.Context, requestID uuid.UUID, priceEstimate, actualPrice *float64) (*models.ServiceRequest, error) {
	args := m.Called(ctx, requestID, priceEstimate, actualPrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

type mockRequestUserStore struct {
	mock.Mock
}

func (m *mockRequestUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockRequestUserStore) GetArtisanProfile(ctx context.Context, userID uuid.UUID) (*models.ArtisanProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ArtisanProfile), args.Error(1)
}

type mockRequestCategoryStore struct {
	mock.Mock
}

func (m *mockRequestCategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceCategory), args.Error(1)
}

type mockRatingRecomputer struct {
	mock.Mock
}

func (m *mockRatingRecomputer) Recompute(ctx context.Context, artisanID uuid.UUID) (float64, error) {
	args := m.Called(ctx, artisanID)
	return args.Get(0).(float64), args.Error(1)
}

type mockSnapshotRefresher struct {
	mock.Mock
}

func (m *mockSnapshotRefresher) RefreshSnapshotAsync(artisanID uuid.UUID) {
	m.Called(artisanID)
}

func newRequestServiceForTest() (*RequestService, *mockRequestStore, *mockRequestUserStore, *mockRequestCategoryStore, *mockRatingRecomputer, *mockSnapshotRefresher) {
	requests := new(mockRequestStore)
	users := new(mockRequestUserStore)
	categories := new(mockRequestCategoryStore)
	ratings := new(mockRatingRecomputer)
	ledger := new(mockSnapshotRefresher)
	svc := NewRequestService(requests, users, categories, ratings, ledger)
	return svc, requests, users, categories, ratings, ledger
}

func TestRequestService_Create_NotifiesAdmins(t *testing.T) {
	svc, requests, _, categories, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	userID := uuid.New()
	categoryID := uuid.New()

	categories.On("GetByID", ctx, categoryID).Return(&models.ServiceCategory{ID: categoryID, IsActive: true}, nil)
	requests.On("Create", ctx, mock.AnythingOfType("*models.ServiceRequest"), mock.MatchedBy(func(notifs []repository.NotificationDraft) bool {
		return len(notifs) == 1 && notifs[0].ToAdmins && notifs[0].Type == models.NotificationTypeNewRequest
	})).Return(nil)

	created, err := svc.Create(ctx, CreateRequestInput{
		UserID:      userID,
		CategoryID:  categoryID,
		Title:       "Починить розетку",
		Description: "Не работает розетка на кухне, искрит при включении.",
		Location:    "ул. Ленина, 10",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, created.Status)
	requests.AssertExpectations(t)
}

func TestRequestService_Create_InactiveCategory(t *testing.T) {
	svc, _, _, categories, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	categoryID := uuid.New()

	categories.On("GetByID", ctx, categoryID).Return(&models.ServiceCategory{ID: categoryID, IsActive: false}, nil)

	_, err := svc.Create(ctx, CreateRequestInput{
		UserID:      uuid.New(),
		CategoryID:  categoryID,
		Title:       "Починить розетку",
		Description: "Не работает розетка на кухне, искрит при включении.",
		Location:    "ул. Ленина, 10",
	})
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestRequestService_Assign_Success(t *testing.T) {
	svc, requests, users, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()
	artisanID := uuid.New()
	customerID := uuid.New()

	users.On("GetByID", ctx, artisanID).Return(&models.User{
		ID: artisanID, Role: models.RoleArtisan, IsActive: true, IsVerified: true, FullName: "Иван Петров",
	}, nil)
	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: customerID, Title: "Сборка шкафа", Status: models.RequestStatusPending,
	}, nil)
	requests.On("Assign", ctx, requestID, artisanID, (*string)(nil), mock.MatchedBy(func(notifs []repository.NotificationDraft) bool {
		if len(notifs) != 2 {
			return false
		}
		return notifs[0].UserID == artisanID && notifs[0].Type == models.NotificationTypeJobAssigned &&
			notifs[1].UserID == customerID && notifs[1].Type == models.NotificationTypeArtisanAssigned
	})).Return(&models.ServiceRequest{
		ID: requestID, UserID: customerID, ArtisanID: &artisanID, Status: models.RequestStatusAssigned,
	}, nil)

	updated, err := svc.Assign(ctx, requestID, artisanID, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusAssigned, updated.Status)
	requests.AssertExpectations(t)
}

func TestRequestService_Assign_UnverifiedArtisan(t *testing.T) {
	svc, _, users, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	artisanID := uuid.New()

	users.On("GetByID", ctx, artisanID).Return(&models.User{
		ID: artisanID, Role: models.RoleArtisan, IsActive: true, IsVerified: false,
	}, nil)

	_, err := svc.Assign(ctx, uuid.New(), artisanID, nil)
	assert.ErrorIs(t, err, apperror.ErrArtisanUnavailable)
}

func TestRequestService_Assign_BusyArtisan(t *testing.T) {
	svc, requests, users, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()
	artisanID := uuid.New()

	users.On("GetByID", ctx, artisanID).Return(&models.User{
		ID: artisanID, Role: models.RoleArtisan, IsActive: true, IsVerified: true,
	}, nil)
	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: uuid.New(), Status: models.RequestStatusPending,
	}, nil)
	requests.On("Assign", ctx, requestID, artisanID, (*string)(nil), mock.Anything).
		Return(nil, repository.ErrArtisanBusy)

	_, err := svc.Assign(ctx, requestID, artisanID, nil)
	assert.ErrorIs(t, err, apperror.ErrArtisanUnavailable)
}

func TestRequestService_Assign_LostRace(t *testing.T) {
	svc, requests, users, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()
	artisanID := uuid.New()

	users.On("GetByID", ctx, artisanID).Return(&models.User{
		ID: artisanID, Role: models.RoleArtisan, IsActive: true, IsVerified: true,
	}, nil)
	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: uuid.New(), Status: models.RequestStatusPending,
	}, nil).Once()
	requests.On("Assign", ctx, requestID, artisanID, (*string)(nil), mock.Anything).
		Return(nil, repository.ErrStatusConflict)
	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: uuid.New(), Status: models.RequestStatusAssigned,
	}, nil).Once()

	_, err := svc.Assign(ctx, requestID, artisanID, nil)
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestRequestService_Transition_InvalidTransition(t *testing.T) {
	svc, requests, _, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()
	customerID := uuid.New()

	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: customerID, Status: models.RequestStatusPending,
	}, nil)

	actor := Actor{UserID: customerID, Role: models.RoleAdmin}
	_, err := svc.Transition(ctx, actor, requestID, models.RequestStatusInProgress)
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestRequestService_Transition_CompletedIsTerminal(t *testing.T) {
	svc, requests, _, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()

	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: uuid.New(), Status: models.RequestStatusCompleted,
	}, nil)

	actor := Actor{UserID: uuid.New(), Role: models.RoleAdmin}
	for _, to := range []string{
		models.RequestStatusPending,
		models.RequestStatusAssigned,
		models.RequestStatusInProgress,
		models.RequestStatusCancelled,
	} {
		_, err := svc.Transition(ctx, actor, requestID, to)
		assert.True(t, apperror.IsInvalidTransition(err), "completed -> %s должен быть запрещён", to)
	}
}

func TestRequestService_Transition_AcceptByAssignedArtisan(t *testing.T) {
	svc, requests, _, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()
	artisanID := uuid.New()

	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: uuid.New(), ArtisanID: &artisanID,
		Title: "Сборка шкафа", Status: models.RequestStatusAssigned,
	}, nil)
	requests.On("Transition", ctx, mock.MatchedBy(func(p repository.TransitionParams) bool {
		return p.From == models.RequestStatusAssigned &&
			p.To == models.RequestStatusInProgress &&
			!p.ReleaseArtisan && !p.RecordCompletion &&
			len(p.Notifications) == 1 && p.Notifications[0].ToAdmins
	})).Return(&models.ServiceRequest{ID: requestID, Status: models.RequestStatusInProgress}, nil)

	actor := Actor{UserID: artisanID, Role: models.RoleArtisan}
	updated, err := svc.Transition(ctx, actor, requestID, models.RequestStatusInProgress)
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusInProgress, updated.Status)
}

func TestRequestService_Transition_AcceptByForeignArtisan(t *testing.T) {
	svc, requests, _, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()
	assignedID := uuid.New()

	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: uuid.New(), ArtisanID: &assignedID, Status: models.RequestStatusAssigned,
	}, nil)

	actor := Actor{UserID: uuid.New(), Role: models.RoleArtisan}
	_, err := svc.Transition(ctx, actor, requestID, models.RequestStatusInProgress)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestRequestService_Transition_CompleteReleasesAndRecords(t *testing.T) {
	svc, requests, _, _, _, ledger := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()
	artisanID := uuid.New()
	customerID := uuid.New()

	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: customerID, ArtisanID: &artisanID,
		Title: "Ремонт крана", Status: models.RequestStatusInProgress,
	}, nil)
	requests.On("Transition", ctx, mock.MatchedBy(func(p repository.TransitionParams) bool {
		if p.To != models.RequestStatusCompleted || !p.ReleaseArtisan || !p.RecordCompletion {
			return false
		}
		if len(p.Notifications) != 2 {
			return false
		}
		return p.Notifications[0].ToAdmins && p.Notifications[1].UserID == customerID &&
			p.Notifications[1].Type == models.NotificationTypeServiceCompleted
	})).Return(&models.ServiceRequest{
		ID: requestID, ArtisanID: &artisanID, Status: models.RequestStatusCompleted,
	}, nil)
	ledger.On("RefreshSnapshotAsync", artisanID)

	actor := Actor{UserID: artisanID, Role: models.RoleArtisan}
	updated, err := svc.Transition(ctx, actor, requestID, models.RequestStatusCompleted)
	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, updated.Status)
	requests.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestRequestService_Transition_CancelByForeignCustomer(t *testing.T) {
	svc, requests, _, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()

	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: uuid.New(), Status: models.RequestStatusPending,
	}, nil)

	actor := Actor{UserID: uuid.New(), Role: models.RoleCustomer}
	_, err := svc.Transition(ctx, actor, requestID, models.RequestStatusCancelled)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestRequestService_Transition_CancelAssignedNotifiesArtisan(t *testing.T) {
	svc, requests, _, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()
	artisanID := uuid.New()
	customerID := uuid.New()

	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: customerID, ArtisanID: &artisanID,
		Title: "Покраска стен", Status: models.RequestStatusAssigned,
	}, nil)
	requests.On("Transition", ctx, mock.MatchedBy(func(p repository.TransitionParams) bool {
		if p.To != models.RequestStatusCancelled || !p.ReleaseArtisan {
			return false
		}
		if len(p.Notifications) != 3 {
			return false
		}
		return p.Notifications[0].ToAdmins &&
			p.Notifications[1].UserID == customerID &&
			p.Notifications[2].UserID == artisanID
	})).Return(&models.ServiceRequest{ID: requestID, Status: models.RequestStatusCancelled}, nil)

	actor := Actor{UserID: customerID, Role: models.RoleCustomer}
	_, err := svc.Transition(ctx, actor, requestID, models.RequestStatusCancelled)
	assert.NoError(t, err)
	requests.AssertExpectations(t)
}

func TestRequestService_Transition_CancelNotifiesCustomer(t *testing.T) {
	svc, requests, _, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()
	customerID := uuid.New()

	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: customerID,
		Title: "Замена замка", Status: models.RequestStatusPending,
	}, nil)
	requests.On("Transition", ctx, mock.MatchedBy(func(p repository.TransitionParams) bool {
		if p.To != models.RequestStatusCancelled || p.ReleaseArtisan {
			return false
		}
		if len(p.Notifications) != 2 {
			return false
		}
		return p.Notifications[0].ToAdmins &&
			p.Notifications[1].UserID == customerID &&
			p.Notifications[1].Type == models.NotificationTypeStatusUpdate
	})).Return(&models.ServiceRequest{ID: requestID, Status: models.RequestStatusCancelled}, nil)

	actor := Actor{UserID: customerID, Role: models.RoleCustomer}
	_, err := svc.Transition(ctx, actor, requestID, models.RequestStatusCancelled)
	assert.NoError(t, err)
	requests.AssertExpectations(t)
}

func TestRequestService_AttachFeedback_NotCompleted(t *testing.T) {
	svc, requests, _, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()
	customerID := uuid.New()

	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: customerID, Status: models.RequestStatusInProgress,
	}, nil)
	requests.On("AttachFeedback", ctx, requestID, 5, (*string)(nil)).
		Return(nil, repository.ErrRequestNotDone)

	actor := Actor{UserID: customerID, Role: models.RoleCustomer}
	_, err := svc.AttachFeedback(ctx, actor, requestID, 5, nil)
	assert.ErrorIs(t, err, apperror.ErrNotCompleted)
}

func TestRequestService_AttachFeedback_AlreadyRated(t *testing.T) {
	svc, requests, _, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()
	customerID := uuid.New()

	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: customerID, Status: models.RequestStatusCompleted,
	}, nil)
	requests.On("AttachFeedback", ctx, requestID, 4, (*string)(nil)).
		Return(nil, repository.ErrAlreadyRated)

	actor := Actor{UserID: customerID, Role: models.RoleCustomer}
	_, err := svc.AttachFeedback(ctx, actor, requestID, 4, nil)
	assert.ErrorIs(t, err, apperror.ErrAlreadyRated)
}

func TestRequestService_AttachFeedback_ForeignCustomer(t *testing.T) {
	svc, requests, _, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()

	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: uuid.New(), Status: models.RequestStatusCompleted,
	}, nil)

	actor := Actor{UserID: uuid.New(), Role: models.RoleCustomer}
	_, err := svc.AttachFeedback(ctx, actor, requestID, 5, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestRequestService_AttachFeedback_RecomputesRating(t *testing.T) {
	svc, requests, _, _, ratings, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()
	customerID := uuid.New()
	artisanID := uuid.New()
	rating := 5

	requests.On("GetByID", ctx, requestID).Return(&models.ServiceRequest{
		ID: requestID, UserID: customerID, ArtisanID: &artisanID, Status: models.RequestStatusCompleted,
	}, nil)
	requests.On("AttachFeedback", ctx, requestID, rating, (*string)(nil)).
		Return(&models.ServiceRequest{
			ID: requestID, UserID: customerID, ArtisanID: &artisanID,
			Status: models.RequestStatusCompleted, Rating: &rating,
		}, nil)
	ratings.On("Recompute", ctx, artisanID).Return(4.75, nil)

	actor := Actor{UserID: customerID, Role: models.RoleCustomer}
	updated, err := svc.AttachFeedback(ctx, actor, requestID, rating, nil)
	assert.NoError(t, err)
	assert.Equal(t, rating, *updated.Rating)
	ratings.AssertExpectations(t)
}

func TestRequestService_AttachFeedback_InvalidRating(t *testing.T) {
	svc, _, _, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()

	actor := Actor{UserID: uuid.New(), Role: models.RoleCustomer}
	for _, rating := range []int{0, -1, 6} {
		_, err := svc.AttachFeedback(ctx, actor, uuid.New(), rating, nil)
		assert.True(t, apperror.IsValidation(err), "оценка %d должна быть отклонена", rating)
	}
}

func TestRequestService_UpdatePrice_Immutable(t *testing.T) {
	svc, requests, _, _, _, _ := newRequestServiceForTest()
	ctx := context.Background()
	requestID := uuid.New()
	price := 1500.0

	requests.On("UpdatePrice", ctx, requestID, (*float64)(nil), &price).
		Return(nil, repository.ErrRequestImmutable)

	_, err := svc.UpdatePrice(ctx, requestID, nil, &price)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeConflict))
}
