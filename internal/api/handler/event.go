package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nivi1412/ticketing-platform/internal/domain/event"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type InitializeEventRequest struct {
	TotalTickets int `json:"total_tickets" validate:"omitempty,min=1,max=100000" example:"100"`
}

type EventResponse struct {
	EventID      string `json:"event_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TotalTickets int    `json:"total_tickets" example:"100"`
}

type AvailabilityResponse struct {
	EventID        string `json:"event_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	AvailableSeats int    `json:"available_seats" example:"42"`
}

func toEventResponse(e *event.Event) EventResponse {
	return EventResponse{
		EventID:      e.ID,
		TotalTickets: e.TotalTickets,
	}
}

// Initialize godoc
// @Summary イベントを初期化
// @Description 固定キャパシティのイベントを作成し、座席を一括生成します
// @Tags events
// @Accept json
// @Produce json
// @Param request body InitializeEventRequest false "キャパシティ（省略時100）"
// @Success 201 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Router /events/initialize [post]
func (h *EventHandler) Initialize(c echo.Context) error {
	var req InitializeEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	e, err := h.eventService.InitializeEvent(c.Request().Context(), req.TotalTickets)
	if err != nil {
		if errors.Is(err, event.ErrInvalidCapacity) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID godoc
// @Summary イベントを取得
// @Description 指定IDのイベントを取得します
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	e, err := h.eventService.GetEvent(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "イベントが見つかりません")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// GetAvailability godoc
// @Summary イベントの空席数を取得
// @Description 指定イベントの現在の空席数を取得します
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} AvailabilityResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id}/availability [get]
func (h *EventHandler) GetAvailability(c echo.Context) error {
	id := c.Param("id")
	count, err := h.eventService.CountAvailableSeats(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "イベントが見つかりません")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{
		EventID:        id,
		AvailableSeats: count,
	})
}
