package seat

import (
	"context"

	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
)

// Repository は座席リポジトリのインターフェース
type Repository interface {
	// CreateBulk はイベントの座席 1..count を一括作成する（トランザクション必須）
	CreateBulk(ctx context.Context, tx transaction.Tx, eventID string, count int) error

	// SelectAvailableForUpdate は空席を座席番号の昇順で最大 limit 件選択し、
	// 各行の排他ロックを取得する。他トランザクションがロック中の行は
	// 待たずにスキップする（FOR UPDATE SKIP LOCKED）
	SelectAvailableForUpdate(ctx context.Context, tx transaction.Tx, eventID string, limit int) ([]int, error)

	// MarkBooked は選択済みの座席を予約済みに更新する（トランザクション必須）
	MarkBooked(ctx context.Context, tx transaction.Tx, eventID string, seatNumbers []int) error

	// Release は座席を解放する。該当行が存在しない場合は false を返す
	Release(ctx context.Context, tx transaction.Tx, eventID string, seatNumber int) (bool, error)

	// GetByNumber は座席を取得する
	GetByNumber(ctx context.Context, eventID string, seatNumber int) (*Seat, error)

	// CountAvailable はイベントの空席数を取得する
	CountAvailable(ctx context.Context, eventID string) (int, error)
}
