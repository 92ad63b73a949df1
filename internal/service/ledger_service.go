package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/artisan-backend/internal/goroutine"
	"github.com/ignatzorin/artisan-backend/internal/logger"
	"github.com/ignatzorin/artisan-backend/internal/models"
)

// LedgerStore агрегирует заработок мастера из фактических данных.
type LedgerStore interface {
	GetSummary(ctx context.Context, artisanID uuid.UUID, months int) (*models.LedgerSummary, error)
	MonthlySeries(ctx context.Context, artisanID uuid.UUID, months int) ([]models.MonthlyEarning, error)
	AvailableBalance(ctx context.Context, artisanID uuid.UUID) (float64, error)
	RefreshSnapshot(ctx context.Context, artisanID uuid.UUID) error
}

// LedgerService отдаёт сводки по заработку. Истина считается на чтении
// из завершённых заявок и выводов; кэшированные поля профиля только
// снимок для списков. Redis-кэш сглаживает повторные запросы сводки.
type LedgerService struct {
	store    LedgerStore
	cache    *CacheService
	cacheTTL time.Duration
	months   int
}

// NewLedgerService создаёт сервис учёта заработка.
func NewLedgerService(store LedgerStore, cache *CacheService, cacheTTL time.Duration, months int) *LedgerService {
	if months <= 0 {
		months = 6
	}
	return &LedgerService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		months:   months,
	}
}

// GetSummary возвращает сводку по заработку мастера.
func (s *LedgerService) GetSummary(ctx context.Context, artisanID uuid.UUID) (*models.LedgerSummary, error) {
	key := ledgerCacheKey(artisanID)

	var cached models.LedgerSummary
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	summary, err := s.store.GetSummary(ctx, artisanID, s.months)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, summary, s.cacheTTL)

	return summary, nil
}

// AvailableBalance возвращает доступный к выводу остаток.
func (s *LedgerService) AvailableBalance(ctx context.Context, artisanID uuid.UUID) (float64, error) {
	return s.store.AvailableBalance(ctx, artisanID)
}

// RefreshSnapshot пересчитывает кэшированные поля профиля и сбрасывает
// кэш сводки. Вызывается после завершения заявки и изменений по выводам.
func (s *LedgerService) RefreshSnapshot(ctx context.Context, artisanID uuid.UUID) error {
	if err := s.store.RefreshSnapshot(ctx, artisanID); err != nil {
		return err
	}

	s.cache.Delete(ctx, ledgerCacheKey(artisanID))

	return nil
}

// RefreshSnapshotAsync пересчитывает снимок в фоновой горутине, вне
// запроса инициатора. Сбой не влияет на ответ пользователю: сводка всё
// равно считается на чтении.
func (s *LedgerService) RefreshSnapshotAsync(artisanID uuid.UUID) {
	goroutine.SafeGo("ledger-refresh-snapshot", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.RefreshSnapshot(ctx, artisanID); err != nil && logger.Log != nil {
			logger.Log.WithField("artisan_id", artisanID).Warnf("ledger service: не удалось обновить снимок: %v", err)
		}
	})
}

func ledgerCacheKey(artisanID uuid.UUID) string {
	return fmt.Sprintf("ledger:summary:%s", artisanID)
}
