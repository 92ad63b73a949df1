package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignatzorin/artisan-backend/internal/logger"
)

// CacheService оборачивает Redis для кэширования дорогих агрегатов.
// Клиент nil означает выключенный кэш: все операции становятся no-op,
// чтение всегда промахивается.
type CacheService struct {
	client *redis.Client
}

// NewCacheService создаёт сервис кэширования.
func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{client: client}
}

// Enabled сообщает, подключён ли кэш.
func (cs *CacheService) Enabled() bool {
	return cs.client != nil
}

// Get читает значение из кэша и декодирует его в dest.
func (cs *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if cs.client == nil {
		return false
	}

	raw, err := cs.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && logger.Log != nil {
			logger.Log.WithField("key", key).Warnf("cache: ошибка чтения: %v", err)
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}

	return true
}

// Set сохраняет значение в кэш с TTL. Ошибки записи не фатальны.
func (cs *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if cs.client == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := cs.client.Set(ctx, key, raw, ttl).Err(); err != nil && logger.Log != nil {
		logger.Log.WithField("key", key).Warnf("cache: ошибка записи: %v", err)
	}
}

// Delete удаляет ключ из кэша.
func (cs *CacheService) Delete(ctx context.Context, keys ...string) {
	if cs.client == nil || len(keys) == 0 {
		return
	}

	if err := cs.client.Del(ctx, keys...).Err(); err != nil && logger.Log != nil {
		logger.Log.Warnf("cache: ошибка удаления: %v", err)
	}
}
