package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/pkg/apperror"
	"github.com/ignatzorin/artisan-backend/internal/repository"
	"github.com/ignatzorin/artisan-backend/internal/validation"
)

// RequestStore описывает зависимости RequestService от хранилища заявок.
type RequestStore interface {
	Create(ctx context.Context, req *models.ServiceRequest, notifs []repository.NotificationDraft) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ServiceRequest, error)
	ListByArtisan(ctx context.Context, artisanID uuid.UUID, status string, limit, offset int) ([]models.ServiceRequest, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.ServiceRequest, error)
	Assign(ctx context.Context, requestID, artisanID uuid.UUID, adminNotes *string, notifs []repository.NotificationDraft) (*models.ServiceRequest, error)
	Transition(ctx context.Context, p repository.TransitionParams) (*models.ServiceRequest, error)
	AttachFeedback(ctx context.Context, requestID uuid.UUID, rating int, feedback *string) (*models.ServiceRequest, error)
	UpdatePrice(ctx context.Context, requestID uuid.UUID, priceEstimate, actualPrice *float64) (*models.ServiceRequest, error)
}

// RequestUserStore описывает доступ к пользователям и профилям мастеров.
type RequestUserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetArtisanProfile(ctx context.Context, userID uuid.UUID) (*models.ArtisanProfile, error)
}

// RequestCategoryStore проверяет существование категории при создании заявки.
type RequestCategoryStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceCategory, error)
}

// RatingRecomputer пересчитывает рейтинг мастера после нового отзыва.
type RatingRecomputer interface {
	Recompute(ctx context.Context, artisanID uuid.UUID) (float64, error)
}

// SnapshotRefresher обновляет снимок заработка мастера в фоне.
type SnapshotRefresher interface {
	RefreshSnapshotAsync(artisanID uuid.UUID)
}

// RequestService реализует жизненный цикл заявки на услугу.
type RequestService struct {
	requests   RequestStore
	users      RequestUserStore
	categories RequestCategoryStore
	ratings    RatingRecomputer
	ledger     SnapshotRefresher
}

// CreateRequestInput содержит данные новой заявки.
type CreateRequestInput struct {
	UserID        uuid.UUID
	CategoryID    uuid.UUID
	Title         string
	Description   string
	Location      string
	PreferredDate *time.Time
	PreferredTime *string
	PriceEstimate *float64
}

// Actor описывает инициатора операции для проверки прав.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// NewRequestService создаёт сервис заявок.
func NewRequestService(requests RequestStore, users RequestUserStore, categories RequestCategoryStore, ratings RatingRecomputer, ledger SnapshotRefresher) *RequestService {
	return &RequestService{
		requests:   requests,
		users:      users,
		categories: categories,
		ratings:    ratings,
		ledger:     ledger,
	}
}

// Create создаёт заявку в статусе pending и уведомляет администраторов.
func (s *RequestService) Create(ctx context.Context, in CreateRequestInput) (*models.ServiceRequest, error) {
	if err := validation.ValidateRequestTitle(in.Title); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateRequestDescription(in.Description); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLocation(in.Location); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice(in.PriceEstimate); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	category, err := s.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, apperror.ErrCategoryNotFound
		}
		return nil, err
	}
	if !category.IsActive {
		return nil, apperror.New(apperror.ErrCodeValidation, "категория недоступна")
	}

	req := &models.ServiceRequest{
		UserID:        in.UserID,
		CategoryID:    in.CategoryID,
		Title:         in.Title,
		Description:   in.Description,
		Location:      in.Location,
		PreferredDate: in.PreferredDate,
		PreferredTime: in.PreferredTime,
		Status:        models.RequestStatusPending,
		PriceEstimate: in.PriceEstimate,
	}

	notifs := []repository.NotificationDraft{{
		ToAdmins: true,
		Title:    "Новая заявка",
		Message:  fmt.Sprintf("Поступила новая заявка: %s", in.Title),
		Type:     models.NotificationTypeNewRequest,
	}}

	if err := s.requests.Create(ctx, req, notifs); err != nil {
		return nil, err
	}

	return req, nil
}

// Get возвращает заявку с проверкой прав: заказчик и мастер видят только
// свои заявки, администратор — любые.
func (s *RequestService) Get(ctx context.Context, actor Actor, requestID uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, err
	}

	if !s.canView(actor, req) {
		return nil, apperror.ErrForbidden
	}

	return req, nil
}

// ListForCustomer возвращает заявки заказчика.
func (s *RequestService) ListForCustomer(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ServiceRequest, error) {
	return s.requests.ListByUser(ctx, userID, limit, offset)
}

// ListForArtisan возвращает заявки, назначенные мастеру.
func (s *RequestService) ListForArtisan(ctx context.Context, artisanID uuid.UUID, status string, limit, offset int) ([]models.ServiceRequest, error) {
	if status != "" && !models.ValidRequestStatuses[status] {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	return s.requests.ListByArtisan(ctx, artisanID, status, limit, offset)
}

// ListAll возвращает все заявки для администратора.
func (s *RequestService) ListAll(ctx context.Context, status string, limit, offset int) ([]models.ServiceRequest, error) {
	if status != "" && !models.ValidRequestStatuses[status] {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	return s.requests.List(ctx, status, limit, offset)
}

// Assign назначает мастера на заявку. Мастер должен быть активен,
// верифицирован и в статусе available; занятость меняется атомарно
// с переходом заявки, поэтому два администратора не назначат одного
// мастера дважды.
func (s *RequestService) Assign(ctx context.Context, requestID, artisanID uuid.UUID, adminNotes *string) (*models.ServiceRequest, error) {
	artisan, err := s.users.GetByID(ctx, artisanID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}

	if !artisan.IsArtisan() {
		return nil, apperror.New(apperror.ErrCodeValidation, "пользователь не является мастером")
	}
	if !artisan.IsActive || !artisan.IsVerified {
		return nil, apperror.ErrArtisanUnavailable
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, err
	}

	notifs := []repository.NotificationDraft{
		{
			UserID:  artisanID,
			Title:   "Новое назначение",
			Message: fmt.Sprintf("Вам назначена заявка: %s", req.Title),
			Type:    models.NotificationTypeJobAssigned,
		},
		{
			UserID:  req.UserID,
			Title:   "Мастер назначен",
			Message: fmt.Sprintf("Мастер %s назначен на вашу заявку: %s", artisan.FullName, req.Title),
			Type:    models.NotificationTypeArtisanAssigned,
		},
	}

	updated, err := s.requests.Assign(ctx, requestID, artisanID, adminNotes, notifs)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestNotFound):
			return nil, apperror.ErrRequestNotFound
		case errors.Is(err, repository.ErrProfileNotFound):
			return nil, apperror.New(apperror.ErrCodeValidation, "у мастера нет профиля")
		case errors.Is(err, repository.ErrArtisanBusy):
			return nil, apperror.ErrArtisanUnavailable
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, s.transitionConflict(ctx, requestID, models.RequestStatusAssigned)
		}
		return nil, err
	}

	return updated, nil
}

// Transition переводит заявку в новый статус. Допустимость перехода
// проверяется по таблице переходов, права — по роли инициатора.
func (s *RequestService) Transition(ctx context.Context, actor Actor, requestID uuid.UUID, to string) (*models.ServiceRequest, error) {
	if !models.ValidRequestStatuses[to] {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, err
	}

	if err := s.checkTransitionRights(actor, req, to); err != nil {
		return nil, err
	}

	if !models.IsValidTransition(req.Status, to) {
		return nil, apperror.NewInvalidTransition(req.Status, to)
	}

	params := repository.TransitionParams{
		RequestID: requestID,
		From:      req.Status,
		To:        to,
	}

	switch to {
	case models.RequestStatusInProgress:
		params.Notifications = []repository.NotificationDraft{{
			ToAdmins: true,
			Title:    "Заявка в работе",
			Message:  fmt.Sprintf("Мастер приступил к заявке: %s", req.Title),
			Type:     models.NotificationTypeJobAccepted,
		}}
	case models.RequestStatusCompleted:
		params.ReleaseArtisan = true
		params.RecordCompletion = true
		params.Notifications = []repository.NotificationDraft{
			{
				ToAdmins: true,
				Title:    "Заявка завершена",
				Message:  fmt.Sprintf("Заявка завершена: %s", req.Title),
				Type:     models.NotificationTypeJobCompleted,
			},
			{
				UserID:  req.UserID,
				Title:   "Работы завершены",
				Message: fmt.Sprintf("Работы по заявке завершены: %s. Оставьте отзыв.", req.Title),
				Type:    models.NotificationTypeServiceCompleted,
			},
		}
	case models.RequestStatusCancelled:
		params.ReleaseArtisan = req.ArtisanID != nil
		params.Notifications = []repository.NotificationDraft{
			{
				ToAdmins: true,
				Title:    "Заявка отменена",
				Message:  fmt.Sprintf("Заявка отменена: %s", req.Title),
				Type:     models.NotificationTypeStatusUpdate,
			},
			{
				UserID:  req.UserID,
				Title:   "Заявка отменена",
				Message: fmt.Sprintf("Ваша заявка отменена: %s", req.Title),
				Type:    models.NotificationTypeStatusUpdate,
			},
		}
		if req.ArtisanID != nil {
			params.Notifications = append(params.Notifications, repository.NotificationDraft{
				UserID:  *req.ArtisanID,
				Title:   "Заявка отменена",
				Message: fmt.Sprintf("Заявка отменена заказчиком: %s", req.Title),
				Type:    models.NotificationTypeStatusUpdate,
			})
		}
	}

	updated, err := s.requests.Transition(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestNotFound):
			return nil, apperror.ErrRequestNotFound
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, s.transitionConflict(ctx, requestID, to)
		}
		return nil, err
	}

	// Завершение меняет заработок мастера: снимок и кэш сводки
	// обновляются в фоне, сбой не влияет на ответ.
	if to == models.RequestStatusCompleted && updated.ArtisanID != nil {
		s.ledger.RefreshSnapshotAsync(*updated.ArtisanID)
	}

	return updated, nil
}

// AttachFeedback сохраняет оценку и отзыв заказчика по завершённой заявке
// и пересчитывает рейтинг мастера.
func (s *RequestService) AttachFeedback(ctx context.Context, actor Actor, requestID uuid.UUID, rating int, feedback *string) (*models.ServiceRequest, error) {
	if err := validation.ValidateRating(rating); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateFeedback(feedback); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, err
	}

	if req.UserID != actor.UserID && actor.Role != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	updated, err := s.requests.AttachFeedback(ctx, requestID, rating, feedback)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestNotFound):
			return nil, apperror.ErrRequestNotFound
		case errors.Is(err, repository.ErrRequestNotDone):
			return nil, apperror.ErrNotCompleted
		case errors.Is(err, repository.ErrAlreadyRated):
			return nil, apperror.ErrAlreadyRated
		}
		return nil, err
	}

	if updated.ArtisanID != nil {
		if _, err := s.ratings.Recompute(ctx, *updated.ArtisanID); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// UpdatePrice обновляет ориентировочную и фактическую стоимость заявки.
// Завершённые и отменённые заявки неизменяемы.
func (s *RequestService) UpdatePrice(ctx context.Context, requestID uuid.UUID, priceEstimate, actualPrice *float64) (*models.ServiceRequest, error) {
	if err := validation.ValidatePrice(priceEstimate); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice(actualPrice); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	updated, err := s.requests.UpdatePrice(ctx, requestID, priceEstimate, actualPrice)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestNotFound):
			return nil, apperror.ErrRequestNotFound
		case errors.Is(err, repository.ErrRequestImmutable):
			return nil, apperror.New(apperror.ErrCodeConflict, "заявка уже закрыта, стоимость неизменяема")
		}
		return nil, err
	}

	return updated, nil
}

// canView проверяет право актора видеть заявку.
func (s *RequestService) canView(actor Actor, req *models.ServiceRequest) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	if req.UserID == actor.UserID {
		return true
	}
	return req.ArtisanID != nil && *req.ArtisanID == actor.UserID
}

// checkTransitionRights проверяет, что роль актора допускает переход.
func (s *RequestService) checkTransitionRights(actor Actor, req *models.ServiceRequest, to string) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}

	switch to {
	case models.RequestStatusInProgress, models.RequestStatusCompleted:
		// Принимает и завершает работу только назначенный мастер.
		if req.ArtisanID == nil || *req.ArtisanID != actor.UserID {
			return apperror.ErrForbidden
		}
	case models.RequestStatusCancelled:
		if req.UserID != actor.UserID {
			return apperror.ErrForbidden
		}
	default:
		// pending и assigned выставляются только системой и администратором.
		return apperror.ErrForbidden
	}

	return nil
}

// transitionConflict перечитывает заявку после проигранной гонки и
// возвращает ошибку с фактическим текущим статусом.
func (s *RequestService) transitionConflict(ctx context.Context, requestID uuid.UUID, to string) error {
	current, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return apperror.NewInvalidTransition("unknown", to)
	}
	return apperror.NewInvalidTransition(current.Status, to)
}
