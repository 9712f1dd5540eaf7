package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nivi1412/ticketing-platform/internal/application"
	"github.com/nivi1412/ticketing-platform/internal/domain/booking"
	"github.com/nivi1412/ticketing-platform/internal/domain/event"
	"github.com/nivi1412/ticketing-platform/internal/domain/seat"
)

type TicketHandler struct {
	bookingService BookingServiceInterface
}

func NewTicketHandler(bookingService BookingServiceInterface) *TicketHandler {
	return &TicketHandler{bookingService: bookingService}
}

type BookTicketsRequest struct {
	EventID string `json:"event_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID  string `json:"user_id" validate:"required" example:"alice"`
	Tickets int    `json:"tickets" validate:"required,min=1,max=2" example:"2"`
}

type BookingResponse struct {
	BookingID   string `json:"booking_id" example:"6f1c2b3a-0d4e-4f5a-8b6c-7d8e9f0a1b2c"`
	EventID     string `json:"event_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID      string `json:"user_id" example:"alice"`
	SeatNumbers []int  `json:"seat_numbers" example:"1,2"`
	Timestamp   string `json:"timestamp" example:"2025-06-01T12:00:00Z"`
}

type CancelTicketRequest struct {
	BookingID string `json:"booking_id" validate:"required" example:"6f1c2b3a-0d4e-4f5a-8b6c-7d8e9f0a1b2c"`
}

type CancelTicketResponse struct {
	Message   string `json:"message" example:"予約をキャンセルしました"`
	BookingID string `json:"booking_id" example:"6f1c2b3a-0d4e-4f5a-8b6c-7d8e9f0a1b2c"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		BookingID:   b.ID,
		EventID:     b.EventID,
		UserID:      b.UserID,
		SeatNumbers: b.SeatNumbers(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// Book godoc
// @Summary チケットを予約
// @Description 空席から座席を自動割当して予約を作成します（1ユーザー1イベントにつき最大2席）
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body BookTicketsRequest true "予約リクエスト"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tickets/book [post]
func (h *TicketHandler) Book(c echo.Context) error {
	var req BookTicketsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	b, err := h.bookingService.BookTickets(c.Request().Context(), application.BookTicketsInput{
		EventID: req.EventID,
		UserID:  req.UserID,
		Tickets: req.Tickets,
	})
	if err != nil {
		return bookingErrorToHTTP(err)
	}

	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約を削除し、保有していた座席を解放します
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body CancelTicketRequest true "キャンセルリクエスト"
// @Success 200 {object} CancelTicketResponse
// @Failure 404 {object} map[string]string
// @Router /tickets/cancel [post]
func (h *TicketHandler) Cancel(c echo.Context) error {
	var req CancelTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	b, err := h.bookingService.CancelBooking(c.Request().Context(), req.BookingID)
	if err != nil {
		return bookingErrorToHTTP(err)
	}

	return c.JSON(http.StatusOK, CancelTicketResponse{
		Message:   "予約をキャンセルしました",
		BookingID: b.ID,
	})
}

// GetByID godoc
// @Summary 予約を取得
// @Description 指定IDの予約を取得します
// @Tags tickets
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *TicketHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	b, err := h.bookingService.GetBooking(c.Request().Context(), id)
	if err != nil {
		return bookingErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// ListByUser godoc
// @Summary ユーザーの予約一覧を取得
// @Tags tickets
// @Produce json
// @Param user_id path string true "ユーザーID"
// @Success 200 {array} BookingResponse
// @Router /users/{user_id}/bookings [get]
func (h *TicketHandler) ListByUser(c echo.Context) error {
	userID := c.Param("user_id")
	bookings, err := h.bookingService.GetUserBookings(c.Request().Context(), userID, 0, 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	res := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		res = append(res, toBookingResponse(b))
	}
	return c.JSON(http.StatusOK, res)
}

// bookingErrorToHTTP はドメインエラーをHTTPエラーへ変換する
func bookingErrorToHTTP(err error) error {
	var quotaErr *booking.QuotaExceededError
	var capacityErr *seat.InsufficientCapacityError

	switch {
	case errors.Is(err, event.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "イベントが見つかりません")
	case errors.Is(err, booking.ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "予約が見つかりません")
	case errors.As(err, &quotaErr):
		return echo.NewHTTPError(http.StatusBadRequest, quotaErr.Error())
	case errors.As(err, &capacityErr):
		return echo.NewHTTPError(http.StatusBadRequest, capacityErr.Error())
	case errors.Is(err, event.ErrInvalidEventID),
		errors.Is(err, booking.ErrInvalidTicketCount),
		errors.Is(err, booking.ErrUserIDRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
