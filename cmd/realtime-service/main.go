package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-realtime/internal/api/handlers"
	"auction-realtime/internal/config"
	"auction-realtime/internal/infrastructure/mysql"
	realtimeredis "auction-realtime/internal/infrastructure/redis"
	"auction-realtime/internal/infrastructure/websocket"
	"auction-realtime/internal/services"
	"auction-realtime/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.Log.Level)
	log.Info("Starting Auction Realtime Service", "config", cfg.GetConfigString())

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}(db)

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	// Test MySQL connection
	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to MySQL")

	// Collaborator adapters
	productRepo := mysql.NewMySQLProductRepository(db)
	userRepo := mysql.NewMySQLUserRepository(db)

	// Authenticator
	if cfg.Auth.JWTSecret == "" {
		log.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	authService := services.NewAuthService(cfg.Auth.JWTSecret, userRepo, cfg.Auth.LookupTimeout, log)

	// Realtime server (WebSocket listener, rooms, liveness, broadcast)
	realtimeServer := websocket.NewRealtimeServer(cfg.Realtime, authService, productRepo, log)
	if err := realtimeServer.Start(); err != nil {
		log.Error("Failed to start realtime server", "error", err)
		os.Exit(1)
	}

	// Feed committed-bid events from the bid-placement service into the
	// broadcaster.
	subscriberCtx, stopSubscriber := context.WithCancel(context.Background())
	eventSubscriber := realtimeredis.NewRedisEventSubscriber(rdb, log)
	go func() {
		if err := eventSubscriber.Subscribe(subscriberCtx, realtimeServer); err != nil &&
			!errors.Is(err, context.Canceled) {
			log.Error("Event subscriber failed", "error", err)
		}
	}()

	// Initialize Echo for the collaborator-facing API
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
	}))

	broadcastHandler := handlers.NewBroadcastHandler(realtimeServer, log)
	broadcastHandler.Register(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "auction-realtime",
			"timestamp": time.Now().Format(time.RFC3339),
			"port":      cfg.API.Port,
		})
	})

	apiAddr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	log.Info("Starting API server", "address", apiAddr)

	go func() {
		if err := e.Start(apiAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("API server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down auction realtime service...")

	stopSubscriber()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Realtime.ShutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("API server forced to shutdown", "error", err)
	}
	if err := realtimeServer.Close(); err != nil {
		log.Error("Failed to close realtime server", "error", err)
	}

	log.Info("Auction realtime service stopped")
}
