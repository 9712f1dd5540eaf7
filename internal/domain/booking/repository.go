package booking

import (
	"context"

	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByIDForUpdate は予約行をロックして取得する（トランザクション必須）
	// キャンセル処理の直列化に使用する
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Booking, error)

	// SeatsHeldForUpdate は (イベント, ユーザー) の予約行をロックし、
	// 保有座席数の合計を返す。ロックにより同一ユーザーの並行リクエストが
	// 直列化され、古い保有数での判定を防ぐ
	SeatsHeldForUpdate(ctx context.Context, tx transaction.Tx, eventID, userID string) (int, error)

	// GetByUserID はユーザーの予約一覧を取得する
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)

	// Delete は予約を削除する（トランザクション必須）
	Delete(ctx context.Context, tx transaction.Tx, id string) error
}
