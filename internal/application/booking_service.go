package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nivi1412/ticketing-platform/internal/domain/booking"
	"github.com/nivi1412/ticketing-platform/internal/domain/event"
	"github.com/nivi1412/ticketing-platform/internal/domain/seat"
	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
	redisinfra "github.com/nivi1412/ticketing-platform/internal/infrastructure/redis"
	"github.com/nivi1412/ticketing-platform/internal/pkg/logger"
	"github.com/nivi1412/ticketing-platform/internal/pkg/metrics"
)

type BookingService struct {
	txManager   transaction.Manager
	bookingRepo booking.Repository
	seatRepo    seat.Repository
	eventRepo   event.Repository
	cache       *redisinfra.AvailabilityCache
	metrics     *metrics.Metrics
}

func NewBookingService(tm transaction.Manager, br booking.Repository, sr seat.Repository, er event.Repository, cache *redisinfra.AvailabilityCache, m *metrics.Metrics) *BookingService {
	return &BookingService{txManager: tm, bookingRepo: br, seatRepo: sr, eventRepo: er, cache: cache, metrics: m}
}

type BookTicketsInput struct {
	EventID string
	UserID  string
	Tickets int
}

// BookTickets はチケットを予約する
// イベント確認・クォータ検査・座席選択・予約作成を単一トランザクションで実行し、
// いずれかが失敗した場合は座席状態を一切変更せずロールバックする
func (s *BookingService) BookTickets(ctx context.Context, input BookTicketsInput) (*booking.Booking, error) {
	if input.Tickets < 1 || input.Tickets > booking.MaxSeatsPerUser {
		s.countBooking(metrics.BookingStatusInvalidInput)
		return nil, booking.ErrInvalidTicketCount
	}
	if _, err := uuid.Parse(input.EventID); err != nil {
		s.countBooking(metrics.BookingStatusInvalidInput)
		return nil, event.ErrInvalidEventID
	}
	if input.UserID == "" {
		s.countBooking(metrics.BookingStatusInvalidInput)
		return nil, booking.ErrUserIDRequired
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.countBooking(metrics.BookingStatusError)
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// イベント確認
	ev, err := s.eventRepo.GetByIDTx(ctx, tx, input.EventID)
	if err != nil {
		if err == event.ErrEventNotFound {
			s.countBooking(metrics.BookingStatusNotFound)
		} else {
			s.countBooking(metrics.BookingStatusError)
		}
		return nil, err
	}

	// クォータ検査
	// 予約行のロックにより同一ユーザーの並行リクエストはここで直列化される
	if err := s.checkQuota(ctx, tx, ev.ID, input.UserID, input.Tickets); err != nil {
		return nil, err
	}

	// 空席を座席番号の昇順で選択する
	// SKIP LOCKED により他トランザクションがロック中の座席は待たずに除外されるため、
	// 競合は「選択されない」に変換され、予約同士がデッドロックすることはない
	seatNumbers, err := s.seatRepo.SelectAvailableForUpdate(ctx, tx, ev.ID, input.Tickets)
	if err != nil {
		s.countBooking(metrics.BookingStatusError)
		return nil, err
	}
	if len(seatNumbers) < input.Tickets {
		s.countBooking(metrics.BookingStatusSoldOut)
		return nil, &seat.InsufficientCapacityError{
			EventID:   ev.ID,
			Available: len(seatNumbers),
			Requested: input.Tickets,
		}
	}

	if err := s.seatRepo.MarkBooked(ctx, tx, ev.ID, seatNumbers); err != nil {
		s.countBooking(metrics.BookingStatusError)
		return nil, err
	}

	b := booking.NewBooking(ev.ID, input.UserID, seatNumbers)
	if err := b.Validate(); err != nil {
		s.countBooking(metrics.BookingStatusError)
		return nil, err
	}
	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		s.countBooking(metrics.BookingStatusError)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.countBooking(metrics.BookingStatusError)
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.countBooking(metrics.BookingStatusSuccess)
	s.invalidateAvailability(ctx, ev.ID)

	logger.Info("チケットを予約",
		zap.String("booking_id", b.ID),
		zap.String("event_id", b.EventID),
		zap.String("user_id", b.UserID),
		zap.Ints("seat_numbers", b.SeatNumbers()),
	)
	return b, nil
}

// checkQuota は (イベント, ユーザー) の保有座席数を検査する
// 保有数と要求数の合計が上限を超える場合は QuotaExceededError を返す
func (s *BookingService) checkQuota(ctx context.Context, tx transaction.Tx, eventID, userID string, requested int) error {
	held, err := s.bookingRepo.SeatsHeldForUpdate(ctx, tx, eventID, userID)
	if err != nil {
		s.countBooking(metrics.BookingStatusError)
		return err
	}
	if held+requested > booking.MaxSeatsPerUser {
		s.countBooking(metrics.BookingStatusQuota)
		return &booking.QuotaExceededError{
			EventID:   eventID,
			UserID:    userID,
			Held:      held,
			Requested: requested,
		}
	}
	return nil
}

// CancelBooking は予約をキャンセルし、保有していた座席を解放する
// 座席解放と予約削除は単一トランザクションで実行される
func (s *BookingService) CancelBooking(ctx context.Context, id string) (*booking.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		s.countCancellation(metrics.BookingStatusNotFound)
		return nil, booking.ErrBookingNotFound
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.countCancellation(metrics.BookingStatusError)
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 予約行をロックし、同一予約への並行キャンセルを直列化する
	b, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if err == booking.ErrBookingNotFound {
			s.countCancellation(metrics.BookingStatusNotFound)
		} else {
			s.countCancellation(metrics.BookingStatusError)
		}
		return nil, err
	}

	for _, seatNumber := range b.SeatNumbers() {
		released, err := s.seatRepo.Release(ctx, tx, b.EventID, seatNumber)
		if err != nil {
			s.countCancellation(metrics.BookingStatusError)
			return nil, err
		}
		if !released {
			// 座席行に解決できない参照は許容するが、破損検知のため記録する
			logger.Warn("解放対象の座席が存在しません",
				zap.String("booking_id", b.ID),
				zap.String("event_id", b.EventID),
				zap.Int("seat_number", seatNumber),
			)
		}
	}

	if err := s.bookingRepo.Delete(ctx, tx, b.ID); err != nil {
		s.countCancellation(metrics.BookingStatusError)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.countCancellation(metrics.BookingStatusError)
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.countCancellation(metrics.BookingStatusSuccess)
	s.invalidateAvailability(ctx, b.EventID)

	logger.Info("予約をキャンセル",
		zap.String("booking_id", b.ID),
		zap.String("event_id", b.EventID),
		zap.Ints("seat_numbers", b.SeatNumbers()),
	)
	return b, nil
}

// GetBooking は予約を取得する
// 形式不正なIDは存在しない予約として扱う
func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, booking.ErrBookingNotFound
	}
	return s.bookingRepo.GetByID(ctx, id)
}

// GetUserBookings はユーザーの予約一覧を取得する
func (s *BookingService) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.bookingRepo.GetByUserID(ctx, userID, limit, offset)
}

func (s *BookingService) countBooking(status string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func (s *BookingService) countCancellation(status string) {
	if s.metrics != nil {
		s.metrics.CancellationsTotal.WithLabelValues(status).Inc()
	}
}

// invalidateAvailability はコミット後に空席数キャッシュを無効化する（ベストエフォート）
func (s *BookingService) invalidateAvailability(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.String("event_id", eventID), zap.Error(err))
	}
}
