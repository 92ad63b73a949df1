package service

import (
	"context"
	"time"

	"github.com/ignatzorin/artisan-backend/internal/models"
)

// StatsStore отдаёт сводные показатели по системе.
type StatsStore interface {
	AdminStats(ctx context.Context) (*models.AdminStats, error)
}

// StatsService собирает показатели для панели администратора.
type StatsService struct {
	store    StatsStore
	cache    *CacheService
	cacheTTL time.Duration
}

// NewStatsService создаёт сервис статистики.
func NewStatsService(store StatsStore, cache *CacheService, cacheTTL time.Duration) *StatsService {
	return &StatsService{store: store, cache: cache, cacheTTL: cacheTTL}
}

// Dashboard возвращает сводку для панели администратора.
func (s *StatsService) Dashboard(ctx context.Context) (*models.AdminStats, error) {
	const key = "stats:dashboard"

	var cached models.AdminStats
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	stats, err := s.store.AdminStats(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, stats, s.cacheTTL)

	return stats, nil
}
