package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nivi1412/ticketing-platform/internal/domain/event"
	"github.com/nivi1412/ticketing-platform/internal/domain/seat"
	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
	redisinfra "github.com/nivi1412/ticketing-platform/internal/infrastructure/redis"
	"github.com/nivi1412/ticketing-platform/internal/pkg/logger"
	"github.com/nivi1412/ticketing-platform/internal/pkg/metrics"
)

const (
	availabilityCacheTTL = 30 * time.Second
)

type EventService struct {
	txManager transaction.Manager
	eventRepo event.Repository
	seatRepo  seat.Repository
	cache     *redisinfra.AvailabilityCache
	metrics   *metrics.Metrics
}

func NewEventService(tm transaction.Manager, er event.Repository, sr seat.Repository, cache *redisinfra.AvailabilityCache, m *metrics.Metrics) *EventService {
	return &EventService{txManager: tm, eventRepo: er, seatRepo: sr, cache: cache, metrics: m}
}

// InitializeEvent はイベントを作成し、座席 1..totalTickets を同一トランザクションで
// 一括作成する。totalTickets が 0 の場合はデフォルト値（100）を採用する
func (s *EventService) InitializeEvent(ctx context.Context, totalTickets int) (*event.Event, error) {
	e := event.NewEvent(totalTickets)
	if err := e.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.eventRepo.Create(ctx, tx, e); err != nil {
		return nil, err
	}
	if err := s.seatRepo.CreateBulk(ctx, tx, e.ID, e.TotalTickets); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("イベントを初期化",
		zap.String("event_id", e.ID),
		zap.Int("total_tickets", e.TotalTickets),
	)

	// 作成直後は全席が空席
	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, e.ID, e.TotalTickets, availabilityCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	if s.metrics != nil {
		s.metrics.AvailableSeats.WithLabelValues(e.ID).Set(float64(e.TotalTickets))
	}

	return e, nil
}

// GetEvent はイベントを取得する
// 形式不正なIDは存在しないイベントとして扱う
func (s *EventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, event.ErrEventNotFound
	}
	return s.eventRepo.GetByID(ctx, id)
}

// ListEvents はイベント一覧を取得する
func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.eventRepo.List(ctx, limit, offset)
}

// CountAvailableSeats はイベントの空席数を返す
// キャッシュを優先し、ミス時はDBから取得してキャッシュを再生成する
func (s *EventService) CountAvailableSeats(ctx context.Context, eventID string) (int, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return 0, event.ErrEventNotFound
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return 0, err
	}

	if s.cache != nil {
		count, err := s.cache.Get(ctx, eventID)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.String("event_id", eventID), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	return s.RefreshAvailability(ctx, eventID)
}

// RefreshAvailability は空席数をDBから再計算し、キャッシュとゲージを更新する
// ワーカーからも定期的に呼ばれる
func (s *EventService) RefreshAvailability(ctx context.Context, eventID string) (int, error) {
	count, err := s.seatRepo.CountAvailable(ctx, eventID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, eventID, count, availabilityCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	if s.metrics != nil {
		s.metrics.AvailableSeats.WithLabelValues(eventID).Set(float64(count))
	}

	return count, nil
}
