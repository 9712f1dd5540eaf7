package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nivi1412/ticketing-platform/internal/domain/seat"
	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
)

type seatRow struct {
	EventID    string `db:"event_id"`
	SeatNumber int    `db:"seat_number"`
	IsBooked   bool   `db:"is_booked"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		EventID:    r.EventID,
		SeatNumber: r.SeatNumber,
		IsBooked:   r.IsBooked,
	}
}

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

// CreateBulk はイベントの座席 1..count を一括作成する
func (r *SeatRepository) CreateBulk(ctx context.Context, tx transaction.Tx, eventID string, count int) error {
	if count <= 0 {
		return nil
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 1000
	for start := 1; start <= count; start += batchSize {
		end := start + batchSize - 1
		if end > count {
			end = count
		}
		if err := r.createBulkBatch(ctx, tx, eventID, start, end); err != nil {
			return err
		}
	}
	return nil
}

// createBulkBatch は座席番号 start..end のマルチバリューINSERTを実行
func (r *SeatRepository) createBulkBatch(ctx context.Context, tx transaction.Tx, eventID string, start, end int) error {
	query := `INSERT INTO seats (event_id, seat_number, is_booked) VALUES `
	args := make([]interface{}, 0, (end-start+1)*2)
	placeholders := make([]string, 0, end-start+1)

	for n := start; n <= end; n++ {
		base := len(args)
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, FALSE)", base+1, base+2))
		args = append(args, eventID, n)
	}

	query += strings.Join(placeholders, ", ")
	sqlxTx := UnwrapTx(tx)
	if _, err := sqlxTx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	return nil
}

// SelectAvailableForUpdate は空席を座席番号の昇順で最大 limit 件選択し排他ロックを取得する
// 他トランザクションがロック中の行は SKIP LOCKED で待たずに除外されるため、
// 独立した予約トランザクションは互いにブロックせず並行に進行できる
func (r *SeatRepository) SelectAvailableForUpdate(ctx context.Context, tx transaction.Tx, eventID string, limit int) ([]int, error) {
	query := `
		SELECT seat_number FROM seats
		WHERE event_id = $1 AND is_booked = FALSE
		ORDER BY seat_number
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`
	var seatNumbers []int
	sqlxTx := UnwrapTx(tx)
	if err := sqlxTx.SelectContext(ctx, &seatNumbers, query, eventID, limit); err != nil {
		return nil, fmt.Errorf("空席選択に失敗: %w", err)
	}
	return seatNumbers, nil
}

// MarkBooked は選択済みの座席を予約済みに更新する
func (r *SeatRepository) MarkBooked(ctx context.Context, tx transaction.Tx, eventID string, seatNumbers []int) error {
	if len(seatNumbers) == 0 {
		return nil
	}
	query := `UPDATE seats SET is_booked = TRUE WHERE event_id = $1 AND seat_number = ANY($2) AND is_booked = FALSE`
	sqlxTx := UnwrapTx(tx)
	result, err := sqlxTx.ExecContext(ctx, query, eventID, pq.Array(seatNumbers))
	if err != nil {
		return fmt.Errorf("座席予約に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if int(rows) != len(seatNumbers) {
		return seat.ErrSeatAlreadyBooked
	}
	return nil
}

// Release は座席を解放する。該当行が存在しない場合は false を返す
func (r *SeatRepository) Release(ctx context.Context, tx transaction.Tx, eventID string, seatNumber int) (bool, error) {
	query := `UPDATE seats SET is_booked = FALSE WHERE event_id = $1 AND seat_number = $2`
	sqlxTx := UnwrapTx(tx)
	result, err := sqlxTx.ExecContext(ctx, query, eventID, seatNumber)
	if err != nil {
		return false, fmt.Errorf("座席解放に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// GetByNumber は座席を取得する
func (r *SeatRepository) GetByNumber(ctx context.Context, eventID string, seatNumber int) (*seat.Seat, error) {
	query := `SELECT event_id, seat_number, is_booked FROM seats WHERE event_id = $1 AND seat_number = $2`
	var row seatRow
	if err := r.db.GetContext(ctx, &row, query, eventID, seatNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// CountAvailable はイベントの空席数を取得する
func (r *SeatRepository) CountAvailable(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM seats WHERE event_id = $1 AND is_booked = FALSE`, eventID)
	if err != nil {
		return 0, fmt.Errorf("空席数取得に失敗: %w", err)
	}
	return count, nil
}

var _ seat.Repository = (*SeatRepository)(nil)
