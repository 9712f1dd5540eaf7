package booking

import "time"

// MaxSeatsPerUser は1ユーザーが1イベントで保有できる座席数の上限
const MaxSeatsPerUser = 2

// Booking は予約エンティティを表す
// 座席は最大2枠で、未使用の枠は nil
// 座席の占有状態の正は Seat 行であり、Booking は保有者の記録
type Booking struct {
	ID          string
	EventID     string
	UserID      string
	SeatNumber1 *int
	SeatNumber2 *int
	CreatedAt   time.Time
}

// NewBooking は新しい予約を作成する
// seatNumbers は選択順（昇順）にスロットへ割り当てられる
func NewBooking(eventID, userID string, seatNumbers []int) *Booking {
	b := &Booking{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if len(seatNumbers) > 0 {
		n := seatNumbers[0]
		b.SeatNumber1 = &n
	}
	if len(seatNumbers) > 1 {
		n := seatNumbers[1]
		b.SeatNumber2 = &n
	}
	return b
}

// SeatNumbers は保有している座席番号を返す
func (b *Booking) SeatNumbers() []int {
	numbers := make([]int, 0, 2)
	if b.SeatNumber1 != nil {
		numbers = append(numbers, *b.SeatNumber1)
	}
	if b.SeatNumber2 != nil {
		numbers = append(numbers, *b.SeatNumber2)
	}
	return numbers
}

// SeatCount は保有座席数を返す
func (b *Booking) SeatCount() int {
	count := 0
	if b.SeatNumber1 != nil {
		count++
	}
	if b.SeatNumber2 != nil {
		count++
	}
	return count
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.EventID == "" {
		return ErrEventIDRequired
	}
	if b.UserID == "" {
		return ErrUserIDRequired
	}
	if b.SeatCount() == 0 {
		return ErrSeatsRequired
	}
	return nil
}
