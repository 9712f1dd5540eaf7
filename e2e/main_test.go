package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/nivi1412/ticketing-platform/internal/api"
	"github.com/nivi1412/ticketing-platform/internal/api/handler"
	"github.com/nivi1412/ticketing-platform/internal/api/middleware"
	"github.com/nivi1412/ticketing-platform/internal/application"
	"github.com/nivi1412/ticketing-platform/internal/config"
	"github.com/nivi1412/ticketing-platform/internal/infrastructure/postgres"
	redisinfra "github.com/nivi1412/ticketing-platform/internal/infrastructure/redis"
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo *echo.Echo
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

var (
	testServer *TestServer
	testDB     *sqlx.DB
)

// TestMain はE2Eテストのエントリポイント
// パッケージ全体で1回だけサーバーを組み立てることで高速化
func TestMain(m *testing.M) {
	cfg := config.Load()

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		os.Exit(0) // DB未起動時はスキップ
	}
	testDB = db

	if err := postgres.RunMigrations(db.DB, "../migrations"); err != nil {
		db.Close()
		os.Exit(0)
	}

	// Redisは任意（未起動時はキャッシュなしで動作する）
	var cache *redisinfra.AvailabilityCache
	redisClient := redisinfra.NewClient(&cfg.Redis)
	if err := redisinfra.Ping(context.Background(), redisClient); err == nil {
		cache = redisinfra.NewAvailabilityCache(redisClient)
	}

	eventRepo := postgres.NewEventRepository(db)
	seatRepo := postgres.NewSeatRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	txManager := postgres.NewTxManager(db)

	eventService := application.NewEventService(txManager, eventRepo, seatRepo, cache, nil)
	bookingService := application.NewBookingService(txManager, bookingRepo, seatRepo, eventRepo, cache, nil)

	eventHandler := handler.NewEventHandler(eventService)
	ticketHandler := handler.NewTicketHandler(bookingService)
	healthHandler := handler.NewHealthHandler()

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)
	v1.POST("/events/initialize", eventHandler.Initialize)
	v1.GET("/events/:id", eventHandler.GetByID)
	v1.GET("/events/:id/availability", eventHandler.GetAvailability)
	v1.POST("/tickets/book", ticketHandler.Book)
	v1.POST("/tickets/cancel", ticketHandler.Cancel)
	v1.GET("/bookings/:id", ticketHandler.GetByID)
	v1.GET("/users/:user_id/bookings", ticketHandler.ListByUser)

	testServer = &TestServer{Echo: e}

	code := m.Run()

	cleanupTables()
	redisClient.Close()
	db.Close()

	os.Exit(code)
}

// cleanupTables はテーブルをクリーンアップ
func cleanupTables() {
	testDB.Exec("TRUNCATE TABLE bookings, seats, events RESTART IDENTITY CASCADE")
}

// getTestServer は共有サーバーを取得（テスト前にテーブルをクリーンアップ）
func getTestServer(t *testing.T) *TestServer {
	t.Helper()
	if testServer == nil {
		t.Skip("テスト環境が利用できません")
	}
	cleanupTables()
	return testServer
}
