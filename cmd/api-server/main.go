package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"storefront/database"
	"storefront/internal/config"
	httpapi "storefront/internal/http-api"
	"storefront/internal/http-api/handler"
	"storefront/internal/http-api/repository"
	"storefront/internal/http-api/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// Redis backs the product cache and the security alert channel.
	// The service runs without it, with caching and alerting disabled.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unavailable, continuing without cache and alerts", "error", err)
			redisClient = nil
		}
		cancel()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	contactRepo := repository.NewContactRepository(db)
	productCache := repository.NewProductCache(redisClient, cfg.CacheTTL)

	// Services
	var alertSink service.AlertSink = service.NoopAlertSink{}
	if redisClient != nil {
		alertSink = service.NewRedisAlertSink(redisClient)
	}
	issuer := service.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	replayDetector := service.NewReplayDetector(tokenRepo, alertSink, logger, cfg.AlertTimeout)
	authService := service.NewAuthService(userRepo, tokenRepo, issuer, replayDetector, alertSink, logger, cfg)
	productService := service.NewProductService(productRepo, productCache)
	categoryService := service.NewCategoryService(categoryRepo)
	orderService := service.NewOrderService(orderRepo, productRepo)
	contactService := service.NewContactService(contactRepo)
	paymentProvider := service.NewStripeProvider(cfg.StripeSecretKey)

	// Retention cleanup for refresh-token rows
	cleanup := service.NewTokenCleanup(tokenRepo, logger, cfg.TokenRetentionGrace, cfg.CleanupInterval)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go cleanup.Run(ctx)

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	httpapi.SetupRouter(r, httpapi.RouterDeps{
		Auth:              handler.NewAuthHandler(authService, logger, cfg.RefreshTokenTTL),
		Products:          handler.NewProductHandler(productService),
		Categories:        handler.NewCategoryHandler(categoryService),
		Orders:            handler.NewOrderHandler(orderService),
		Payments:          handler.NewPaymentHandler(orderService, paymentProvider),
		Contact:           handler.NewContactHandler(contactService),
		AuthService:       authService,
		RefreshRateLimit:  cfg.RefreshRateLimit,
		RefreshRateWindow: cfg.RefreshRateWindow,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("API server starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}
