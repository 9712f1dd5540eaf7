package seat

import (
	"errors"
	"fmt"
)

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound      = errors.New("座席が見つかりません")
	ErrSeatAlreadyBooked = errors.New("座席は既に予約されています")
	ErrEventIDRequired   = errors.New("イベントIDは必須です")
	ErrInvalidSeatNumber = errors.New("座席番号は1以上である必要があります")
)

// InsufficientCapacityError は選択時点の空席数が要求枚数に満たないことを表す
// Available には選択できた（＝ロックを取得できた）空席数が入る
type InsufficientCapacityError struct {
	EventID   string
	Available int
	Requested int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("空席が不足しています（空席: %d, 要求: %d）", e.Available, e.Requested)
}
