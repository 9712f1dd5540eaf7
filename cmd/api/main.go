package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nivi1412/ticketing-platform/internal/api"
	"github.com/nivi1412/ticketing-platform/internal/api/handler"
	custommiddleware "github.com/nivi1412/ticketing-platform/internal/api/middleware"
	"github.com/nivi1412/ticketing-platform/internal/application"
	"github.com/nivi1412/ticketing-platform/internal/config"
	"github.com/nivi1412/ticketing-platform/internal/infrastructure/postgres"
	redisinfra "github.com/nivi1412/ticketing-platform/internal/infrastructure/redis"
	"github.com/nivi1412/ticketing-platform/internal/pkg/logger"
	"github.com/nivi1412/ticketing-platform/internal/pkg/metrics"
	"github.com/nivi1412/ticketing-platform/internal/worker"
)

func main() {
	defer logger.Sync()

	cfg := config.Load()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	// Redis接続（ベストエフォート: 失敗してもキャッシュなしで起動する）
	var cache *redisinfra.AvailabilityCache
	redisClient := redisinfra.NewClient(&cfg.Redis)
	if err := redisinfra.Ping(context.Background(), redisClient); err != nil {
		logger.Warn("Redis接続エラー、キャッシュなしで起動", zap.Error(err))
	} else {
		cache = redisinfra.NewAvailabilityCache(redisClient)
		defer redisClient.Close()
	}

	// メトリクス初期化
	m := metrics.Init()

	// リポジトリ
	eventRepo := postgres.NewEventRepository(db)
	seatRepo := postgres.NewSeatRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	txManager := postgres.NewTxManager(db)

	// サービス
	eventService := application.NewEventService(txManager, eventRepo, seatRepo, cache, m)
	bookingService := application.NewBookingService(txManager, bookingRepo, seatRepo, eventRepo, cache, m)

	// Echo設定
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	custommiddleware.SetupMiddleware(e)
	e.Use(custommiddleware.PrometheusMiddleware(m))

	// ハンドラー
	eventHandler := handler.NewEventHandler(eventService)
	ticketHandler := handler.NewTicketHandler(bookingService)
	healthHandler := handler.NewHealthHandler()

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)
	v1.POST("/events/initialize", eventHandler.Initialize)
	v1.GET("/events/:id", eventHandler.GetByID)
	v1.GET("/events/:id/availability", eventHandler.GetAvailability)
	v1.POST("/tickets/book", ticketHandler.Book)
	v1.POST("/tickets/cancel", ticketHandler.Cancel)
	v1.GET("/bookings/:id", ticketHandler.GetByID)
	v1.GET("/users/:user_id/bookings", ticketHandler.ListByUser)

	// Prometheusメトリクス（Basic認証付き）
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommiddleware.MetricsBasicAuth())

	// 空席数リフレッシュワーカー
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	var refresher *worker.AvailabilityRefresher
	if cfg.Worker.Enabled && cache != nil {
		refresher = worker.NewAvailabilityRefresher(eventService, cfg.Worker.RefreshInterval)
		go refresher.Start(workerCtx)
	}

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()
	logger.Info("サーバー起動", zap.String("port", cfg.Server.Port))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("シャットダウン開始")

	if refresher != nil {
		refresher.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("シャットダウンエラー", zap.Error(err))
	}

	logger.Info("シャットダウン完了")
}
