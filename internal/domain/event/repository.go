package event

import (
	"context"

	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
)

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, event *Event) error

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id string) (*Event, error)

	// GetByIDTx は予約トランザクションのスコープ内でイベントを取得する
	GetByIDTx(ctx context.Context, tx transaction.Tx, id string) (*Event, error)

	// List はイベント一覧を作成日時の降順で取得する
	List(ctx context.Context, limit, offset int) ([]*Event, error)

	// Delete はイベントを削除する
	// 座席と予約はON DELETE CASCADEで連動して削除される
	Delete(ctx context.Context, id string) error
}
