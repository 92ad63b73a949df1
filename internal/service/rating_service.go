package service

import (
	"context"

	"github.com/google/uuid"
)

// RatingStore читает отзывы и пишет кэш рейтинга.
type RatingStore interface {
	GetAverageRating(ctx context.Context, artisanID uuid.UUID) (float64, int, error)
}

// RatingWriter сохраняет пересчитанный рейтинг в профиль мастера.
type RatingWriter interface {
	UpdateRating(ctx context.Context, artisanID uuid.UUID, rating float64) error
}

// RatingService пересчитывает рейтинг мастера как среднее оценок по его
// завершённым заявкам. Без отзывов рейтинг равен нулю, а не скрытому
// дефолту: отсутствие оценок видно явно.
type RatingService struct {
	store  RatingStore
	writer RatingWriter
}

// NewRatingService создаёт сервис рейтинга.
func NewRatingService(store RatingStore, writer RatingWriter) *RatingService {
	return &RatingService{store: store, writer: writer}
}

// Recompute пересчитывает и сохраняет рейтинг мастера, возвращает новое значение.
func (s *RatingService) Recompute(ctx context.Context, artisanID uuid.UUID) (float64, error) {
	avg, count, err := s.store.GetAverageRating(ctx, artisanID)
	if err != nil {
		return 0, err
	}

	if count == 0 {
		avg = 0
	}

	if err := s.writer.UpdateRating(ctx, artisanID, avg); err != nil {
		return 0, err
	}

	return avg, nil
}

// Get возвращает текущее среднее и количество оценок без записи в кэш.
func (s *RatingService) Get(ctx context.Context, artisanID uuid.UUID) (float64, int, error) {
	return s.store.GetAverageRating(ctx, artisanID)
}
