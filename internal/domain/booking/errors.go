package booking

import (
	"errors"
	"fmt"
)

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound    = errors.New("予約が見つかりません")
	ErrInvalidBookingID   = errors.New("予約IDの形式が不正です")
	ErrEventIDRequired    = errors.New("イベントIDは必須です")
	ErrUserIDRequired     = errors.New("ユーザーIDは必須です")
	ErrSeatsRequired      = errors.New("座席は1つ以上必要です")
	ErrInvalidTicketCount = errors.New("チケット枚数は1枚または2枚である必要があります")
)

// QuotaExceededError は1ユーザーの保有上限超過を表す
// 診断用に現在の保有数と要求数を保持する
type QuotaExceededError struct {
	EventID   string
	UserID    string
	Held      int
	Requested int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("ユーザー %s はイベント %s で%d席を超えて予約できません（保有: %d, 要求: %d）",
		e.UserID, e.EventID, MaxSeatsPerUser, e.Held, e.Requested)
}
