package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/nivi1412/ticketing-platform/internal/domain/event"
)

// MockAvailabilitySource はAvailabilitySourceのモック
type MockAvailabilitySource struct {
	mock.Mock
}

func (m *MockAvailabilitySource) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockAvailabilitySource) RefreshAvailability(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func TestNewAvailabilityRefresher(t *testing.T) {
	mockSource := new(MockAvailabilitySource)
	interval := 30 * time.Second

	refresher := NewAvailabilityRefresher(mockSource, interval)

	assert.NotNil(t, refresher)
	assert.Equal(t, interval, refresher.interval)
	assert.NotNil(t, refresher.stopCh)
	assert.NotNil(t, refresher.doneCh)
}

func TestAvailabilityRefresher_Refresh(t *testing.T) {
	t.Run("全イベントの空席数を再計算する", func(t *testing.T) {
		mockSource := new(MockAvailabilitySource)
		events := []*event.Event{
			{ID: "event-1", TotalTickets: 100},
			{ID: "event-2", TotalTickets: 50},
		}
		mockSource.On("ListEvents", mock.Anything, refreshBatchSize, 0).Return(events, nil)
		mockSource.On("RefreshAvailability", mock.Anything, "event-1").Return(42, nil)
		mockSource.On("RefreshAvailability", mock.Anything, "event-2").Return(50, nil)

		refresher := NewAvailabilityRefresher(mockSource, time.Minute)
		refresher.refresh(context.Background())

		mockSource.AssertExpectations(t)
	})

	t.Run("一覧取得失敗時はスキップする", func(t *testing.T) {
		mockSource := new(MockAvailabilitySource)
		mockSource.On("ListEvents", mock.Anything, refreshBatchSize, 0).Return(nil, assert.AnError)

		refresher := NewAvailabilityRefresher(mockSource, time.Minute)

		// パニックしないことを確認
		refresher.refresh(context.Background())

		mockSource.AssertNotCalled(t, "RefreshAvailability", mock.Anything, mock.Anything)
	})

	t.Run("個別イベントの失敗は他のイベントに影響しない", func(t *testing.T) {
		mockSource := new(MockAvailabilitySource)
		events := []*event.Event{
			{ID: "event-1", TotalTickets: 100},
			{ID: "event-2", TotalTickets: 50},
		}
		mockSource.On("ListEvents", mock.Anything, refreshBatchSize, 0).Return(events, nil)
		mockSource.On("RefreshAvailability", mock.Anything, "event-1").Return(0, assert.AnError)
		mockSource.On("RefreshAvailability", mock.Anything, "event-2").Return(50, nil)

		refresher := NewAvailabilityRefresher(mockSource, time.Minute)
		refresher.refresh(context.Background())

		mockSource.AssertExpectations(t)
	})
}

func TestAvailabilityRefresher_StartStop(t *testing.T) {
	t.Run("開始と停止が正常に動作する", func(t *testing.T) {
		mockSource := new(MockAvailabilitySource)
		mockSource.On("ListEvents", mock.Anything, refreshBatchSize, 0).Return([]*event.Event{}, nil).Maybe()

		refresher := NewAvailabilityRefresher(mockSource, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go refresher.Start(ctx)

		time.Sleep(120 * time.Millisecond)

		refresher.Stop()

		select {
		case <-refresher.doneCh:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("refresher did not stop in time")
		}
	})

	t.Run("コンテキストキャンセルで停止する", func(t *testing.T) {
		mockSource := new(MockAvailabilitySource)
		mockSource.On("ListEvents", mock.Anything, refreshBatchSize, 0).Return([]*event.Event{}, nil).Maybe()

		refresher := NewAvailabilityRefresher(mockSource, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			refresher.Start(ctx)
			close(done)
		}()

		time.Sleep(80 * time.Millisecond)
		cancel()

		select {
		case <-done:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("refresher did not stop after context cancel")
		}
	})
}
