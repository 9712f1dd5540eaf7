package seat

// Seat は座席エンティティを表す
// 識別子は (イベントID, 座席番号) の複合キー
// 座席番号はイベント作成時に 1..TotalTickets の連番で払い出される
type Seat struct {
	EventID    string
	SeatNumber int
	IsBooked   bool
}

// NewSeat は空席状態の座席を作成する
func NewSeat(eventID string, seatNumber int) *Seat {
	return &Seat{
		EventID:    eventID,
		SeatNumber: seatNumber,
		IsBooked:   false,
	}
}

// IsAvailable は座席が予約可能かを返す
func (s *Seat) IsAvailable() bool {
	return !s.IsBooked
}

// Book は座席を予約済み状態にする
func (s *Seat) Book() error {
	if s.IsBooked {
		return ErrSeatAlreadyBooked
	}
	s.IsBooked = true
	return nil
}

// Release は座席を解放する
func (s *Seat) Release() {
	s.IsBooked = false
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.EventID == "" {
		return ErrEventIDRequired
	}
	if s.SeatNumber < 1 {
		return ErrInvalidSeatNumber
	}
	return nil
}
