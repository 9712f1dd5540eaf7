package seat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeat(t *testing.T) {
	seat := NewSeat("event-123", 1)

	assert.Equal(t, "event-123", seat.EventID)
	assert.Equal(t, 1, seat.SeatNumber)
	assert.False(t, seat.IsBooked)
}

func TestSeat_IsAvailable(t *testing.T) {
	tests := []struct {
		name     string
		isBooked bool
		expected bool
	}{
		{"空席", false, true},
		{"予約済み", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seat := &Seat{IsBooked: tt.isBooked}
			assert.Equal(t, tt.expected, seat.IsAvailable())
		})
	}
}

func TestSeat_Book(t *testing.T) {
	t.Run("空席を予約できる", func(t *testing.T) {
		seat := NewSeat("event-123", 1)

		err := seat.Book()

		require.NoError(t, err)
		assert.True(t, seat.IsBooked)
	})

	t.Run("予約済みの座席は予約できない", func(t *testing.T) {
		seat := NewSeat("event-123", 1)
		seat.IsBooked = true

		err := seat.Book()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSeatAlreadyBooked)
	})
}

func TestSeat_Release(t *testing.T) {
	seat := NewSeat("event-123", 1)
	seat.Book()

	seat.Release()

	assert.False(t, seat.IsBooked)
}

func TestSeat_Validate(t *testing.T) {
	tests := []struct {
		name        string
		seat        *Seat
		expectedErr error
	}{
		{
			name:        "有効な座席",
			seat:        &Seat{EventID: "event-123", SeatNumber: 1},
			expectedErr: nil,
		},
		{
			name:        "イベントIDが空",
			seat:        &Seat{EventID: "", SeatNumber: 1},
			expectedErr: ErrEventIDRequired,
		},
		{
			name:        "座席番号が0",
			seat:        &Seat{EventID: "event-123", SeatNumber: 0},
			expectedErr: ErrInvalidSeatNumber,
		},
		{
			name:        "座席番号が負",
			seat:        &Seat{EventID: "event-123", SeatNumber: -1},
			expectedErr: ErrInvalidSeatNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seat.Validate()
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestInsufficientCapacityError(t *testing.T) {
	err := &InsufficientCapacityError{
		EventID:   "event-123",
		Available: 1,
		Requested: 2,
	}

	assert.Contains(t, err.Error(), "空席: 1")
	assert.Contains(t, err.Error(), "要求: 2")
}
