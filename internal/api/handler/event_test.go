package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nivi1412/ticketing-platform/internal/domain/event"
)

const testEventID = "550e8400-e29b-41d4-a716-446655440000"

// MockEventService はEventServiceInterfaceのモック
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) InitializeEvent(ctx context.Context, totalTickets int) (*event.Event, error) {
	args := m.Called(ctx, totalTickets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventService) CountAvailableSeats(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func TestEventHandler_Initialize(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にイベントを初期化できる", func(t *testing.T) {
		mockService := new(MockEventService)
		expectedEvent := &event.Event{ID: testEventID, TotalTickets: 100}

		mockService.On("InitializeEvent", mock.Anything, 100).Return(expectedEvent, nil)

		handler := NewEventHandler(mockService)

		reqBody := `{"total_tickets": 100}`
		req := httptest.NewRequest(http.MethodPost, "/events/initialize", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Initialize(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var res EventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, testEventID, res.EventID)
		assert.Equal(t, 100, res.TotalTickets)
		mockService.AssertExpectations(t)
	})

	t.Run("キャパシティ省略時はデフォルトで作成", func(t *testing.T) {
		mockService := new(MockEventService)
		expectedEvent := &event.Event{ID: testEventID, TotalTickets: event.DefaultTotalTickets}

		mockService.On("InitializeEvent", mock.Anything, 0).Return(expectedEvent, nil)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/events/initialize", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Initialize(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var res EventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, event.DefaultTotalTickets, res.TotalTickets)
	})

	t.Run("不正なキャパシティはバリデーションエラー", func(t *testing.T) {
		mockService := new(MockEventService)
		handler := NewEventHandler(mockService)

		reqBody := `{"total_tickets": -5}`
		req := httptest.NewRequest(http.MethodPost, "/events/initialize", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Initialize(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		mockService.AssertNotCalled(t, "InitializeEvent", mock.Anything, mock.Anything)
	})
}

func TestEventHandler_GetByID(t *testing.T) {
	e := NewTestEcho()

	t.Run("イベントを取得できる", func(t *testing.T) {
		mockService := new(MockEventService)
		expectedEvent := &event.Event{ID: testEventID, TotalTickets: 100}

		mockService.On("GetEvent", mock.Anything, testEventID).Return(expectedEvent, nil)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/events/:id")
		c.SetParamNames("id")
		c.SetParamValues(testEventID)

		err := handler.GetByID(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var res EventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, testEventID, res.EventID)
	})

	t.Run("存在しないイベントは404", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("GetEvent", mock.Anything, testEventID).Return(nil, event.ErrEventNotFound)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/events/:id")
		c.SetParamNames("id")
		c.SetParamValues(testEventID)

		err := handler.GetByID(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestEventHandler_GetAvailability(t *testing.T) {
	e := NewTestEcho()

	t.Run("空席数を取得できる", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("CountAvailableSeats", mock.Anything, testEventID).Return(42, nil)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/events/:id/availability")
		c.SetParamNames("id")
		c.SetParamValues(testEventID)

		err := handler.GetAvailability(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var res AvailabilityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, 42, res.AvailableSeats)
	})

	t.Run("存在しないイベントは404", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("CountAvailableSeats", mock.Anything, testEventID).Return(0, event.ErrEventNotFound)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/events/:id/availability")
		c.SetParamNames("id")
		c.SetParamValues(testEventID)

		err := handler.GetAvailability(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}
