package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/pkg/apperror"
	"github.com/ignatzorin/artisan-backend/internal/repository"
	"github.com/ignatzorin/artisan-backend/internal/validation"
)

// WithdrawalStore описывает хранилище заявок на вывод средств.
type WithdrawalStore interface {
	Create(ctx context.Context, withdrawal *models.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	ListByArtisan(ctx context.Context, artisanID uuid.UUID) ([]models.Withdrawal, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Withdrawal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, rejectionReason *string, notifications []repository.NotificationDraft) (*models.Withdrawal, error)
}

// LedgerRefresher обновляет снимок заработка после изменений по выводам.
type LedgerRefresher interface {
	RefreshSnapshot(ctx context.Context, artisanID uuid.UUID) error
}

// WithdrawalService управляет заявками на вывод средств.
type WithdrawalService struct {
	store         WithdrawalStore
	ledger        LedgerRefresher
	minWithdrawal float64
}

// NewWithdrawalService создаёт сервис выводов.
func NewWithdrawalService(store WithdrawalStore, ledger LedgerRefresher, minWithdrawal float64) *WithdrawalService {
	return &WithdrawalService{
		store:         store,
		ledger:        ledger,
		minWithdrawal: minWithdrawal,
	}
}

// Create создаёт заявку на вывод. Остаток проверяется под блокировкой
// профиля, поэтому параллельные заявки не уведут баланс в минус.
func (s *WithdrawalService) Create(ctx context.Context, artisanID uuid.UUID, amount float64, method, accountDetails string) (*models.Withdrawal, error) {
	if amount < s.minWithdrawal {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("минимальная сумма вывода %.2f", s.minWithdrawal))
	}
	if method == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "способ вывода обязателен")
	}
	if err := validation.ValidateAccountDetails(accountDetails); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	withdrawal := &models.Withdrawal{
		ArtisanID:      artisanID,
		Amount:         amount,
		Method:         method,
		AccountDetails: &accountDetails,
	}

	if err := s.store.Create(ctx, withdrawal); err != nil {
		switch {
		case errors.Is(err, repository.ErrProfileNotFound):
			return nil, apperror.ErrUserNotFound
		case errors.Is(err, repository.ErrInsufficientFunds):
			return nil, apperror.New(apperror.ErrCodeValidation, "недостаточно средств для вывода")
		}
		return nil, err
	}

	if err := s.ledger.RefreshSnapshot(ctx, artisanID); err != nil {
		return nil, err
	}

	return withdrawal, nil
}

// ListForArtisan возвращает заявки мастера на вывод.
func (s *WithdrawalService) ListForArtisan(ctx context.Context, artisanID uuid.UUID) ([]models.Withdrawal, error) {
	return s.store.ListByArtisan(ctx, artisanID)
}

// ListAll возвращает заявки на вывод для администратора.
func (s *WithdrawalService) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Withdrawal, error) {
	if status != "" && !models.ValidWithdrawalStatuses[status] {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус вывода")
	}
	return s.store.List(ctx, status, limit, offset)
}

// UpdateStatus переводит заявку на вывод в новый статус и уведомляет
// мастера. Отклонение требует причины.
func (s *WithdrawalService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, rejectionReason *string) (*models.Withdrawal, error) {
	if !models.ValidWithdrawalStatuses[status] || status == models.WithdrawalStatusPending {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус вывода")
	}
	if status == models.WithdrawalStatusRejected && (rejectionReason == nil || *rejectionReason == "") {
		return nil, apperror.New(apperror.ErrCodeValidation, "причина отклонения обязательна")
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWithdrawalNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "заявка на вывод не найдена")
		}
		return nil, err
	}

	message := fmt.Sprintf("Статус вашей заявки на вывод %.2f изменён: %s", current.Amount, status)
	if status == models.WithdrawalStatusRejected && rejectionReason != nil {
		message = fmt.Sprintf("Заявка на вывод %.2f отклонена: %s", current.Amount, *rejectionReason)
	}

	notifs := []repository.NotificationDraft{{
		UserID:    current.ArtisanID,
		Title:     "Вывод средств",
		Message:   message,
		Type:      models.NotificationTypeWithdrawalUpdate,
		RelatedID: &current.ID,
	}}

	updated, err := s.store.UpdateStatus(ctx, id, status, rejectionReason, notifs)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrWithdrawalNotFound):
			return nil, apperror.New(apperror.ErrCodeNotFound, "заявка на вывод не найдена")
		case errors.Is(err, repository.ErrWithdrawalProcessed):
			return nil, apperror.New(apperror.ErrCodeConflict, "заявка на вывод уже обработана")
		}
		return nil, err
	}

	if err := s.ledger.RefreshSnapshot(ctx, updated.ArtisanID); err != nil {
		return nil, err
	}

	return updated, nil
}
