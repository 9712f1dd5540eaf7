package event

import "time"

const (
	// DefaultTotalTickets はキャパシティ未指定時の座席数
	DefaultTotalTickets = 100

	// MaxTotalTickets は一括座席作成の上限
	MaxTotalTickets = 100000
)

// Event はイベントエンティティを表す
// TotalTickets は作成後に変更されない
type Event struct {
	ID           string
	TotalTickets int
	CreatedAt    time.Time
}

// NewEvent は新しいイベントを作成する
// totalTickets が 0 の場合はデフォルト値を採用する
func NewEvent(totalTickets int) *Event {
	if totalTickets == 0 {
		totalTickets = DefaultTotalTickets
	}
	return &Event{
		TotalTickets: totalTickets,
		CreatedAt:    time.Now(),
	}
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.TotalTickets < 1 || e.TotalTickets > MaxTotalTickets {
		return ErrInvalidCapacity
	}
	return nil
}
