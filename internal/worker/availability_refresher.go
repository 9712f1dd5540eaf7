package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nivi1412/ticketing-platform/internal/domain/event"
	"github.com/nivi1412/ticketing-platform/internal/pkg/logger"
)

// AvailabilitySource は空席数の再計算を提供するインターフェース
type AvailabilitySource interface {
	ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error)
	RefreshAvailability(ctx context.Context, eventID string) (int, error)
}

// refreshBatchSize は1回の更新で対象とするイベント数の上限
const refreshBatchSize = 100

// AvailabilityRefresher は空席数キャッシュを定期的に再計算するワーカー
// キャッシュ無効化の取りこぼしがあっても、ここで実数に収束する
type AvailabilityRefresher struct {
	source   AvailabilitySource
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewAvailabilityRefresher は新しいリフレッシャーを作成
func NewAvailabilityRefresher(source AvailabilitySource, interval time.Duration) *AvailabilityRefresher {
	return &AvailabilityRefresher{
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はリフレッシャーを開始
func (r *AvailabilityRefresher) Start(ctx context.Context) {
	logger.Info("空席数リフレッシャー開始", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("空席数リフレッシャー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("空席数リフレッシャー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop はリフレッシャーを停止
func (r *AvailabilityRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// refresh は直近のイベントの空席数を再計算する
func (r *AvailabilityRefresher) refresh(ctx context.Context) {
	log := logger.Get()
	log.Debug("空席数の再計算開始")

	events, err := r.source.ListEvents(ctx, refreshBatchSize, 0)
	if err != nil {
		log.Error("イベント一覧の取得失敗", zap.Error(err))
		return
	}

	for _, ev := range events {
		if _, err := r.source.RefreshAvailability(ctx, ev.ID); err != nil {
			log.Error("空席数の再計算失敗",
				zap.String("event_id", ev.ID),
				zap.Error(err),
			)
		}
	}

	log.Debug("空席数の再計算完了", zap.Int("events", len(events)))
}
