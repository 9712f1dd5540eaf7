package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nivi1412/ticketing-platform/internal/domain/booking"
	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
)

type bookingRow struct {
	ID          string    `db:"id"`
	EventID     string    `db:"event_id"`
	UserID      string    `db:"user_id"`
	SeatNumber1 *int      `db:"seat_number1"`
	SeatNumber2 *int      `db:"seat_number2"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID:          r.ID,
		EventID:     r.EventID,
		UserID:      r.UserID,
		SeatNumber1: r.SeatNumber1,
		SeatNumber2: r.SeatNumber2,
		CreatedAt:   r.CreatedAt,
	}
}

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create は新しい予約を作成する
// 座席の予約済み更新と同一トランザクションで実行される
func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	query := `INSERT INTO bookings (event_id, user_id, seat_number1, seat_number2, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	sqlxTx := UnwrapTx(tx)
	if err := sqlxTx.QueryRowContext(ctx, query, b.EventID, b.UserID, b.SeatNumber1, b.SeatNumber2, b.CreatedAt).Scan(&b.ID); err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

// GetByID はIDから予約を取得する
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	query := `SELECT id, event_id, user_id, seat_number1, seat_number2, created_at FROM bookings WHERE id = $1`
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDForUpdate は予約行をロックして取得する
// 同一予約に対するキャンセルの並行実行を直列化する
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*booking.Booking, error) {
	query := `SELECT id, event_id, user_id, seat_number1, seat_number2, created_at FROM bookings WHERE id = $1 FOR UPDATE`
	var row bookingRow
	sqlxTx := UnwrapTx(tx)
	if err := sqlxTx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// SeatsHeldForUpdate は (イベント, ユーザー) の予約行をロックし保有座席数を合計する
// 行ロックにより同一ユーザーの並行予約リクエストが直列化される
// 異なるユーザー同士のクォータ判定は意図的に保護しない
func (r *BookingRepository) SeatsHeldForUpdate(ctx context.Context, tx transaction.Tx, eventID, userID string) (int, error) {
	query := `SELECT id, event_id, user_id, seat_number1, seat_number2, created_at FROM bookings WHERE event_id = $1 AND user_id = $2 FOR UPDATE`
	var rows []bookingRow
	sqlxTx := UnwrapTx(tx)
	if err := sqlxTx.SelectContext(ctx, &rows, query, eventID, userID); err != nil {
		return 0, fmt.Errorf("保有座席数取得に失敗: %w", err)
	}
	held := 0
	for _, row := range rows {
		held += row.toEntity().SeatCount()
	}
	return held, nil
}

// GetByUserID はユーザーの予約一覧を取得する
func (r *BookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	query := `SELECT id, event_id, user_id, seat_number1, seat_number2, created_at FROM bookings WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

// Delete は予約を削除する（ハードデリート）
func (r *BookingRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	sqlxTx := UnwrapTx(tx)
	result, err := sqlxTx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("予約削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

var _ booking.Repository = (*BookingRepository)(nil)
