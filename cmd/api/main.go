package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/api"
	"github.com/markpoint/backend/internal/auth"
	"github.com/markpoint/backend/internal/billing"
	"github.com/markpoint/backend/internal/config"
	"github.com/markpoint/backend/internal/domain"
	"github.com/markpoint/backend/internal/fcm"
	"github.com/markpoint/backend/internal/realtime"
	"github.com/markpoint/backend/internal/repository"
	"github.com/markpoint/backend/internal/storage"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	logger, err := initLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Starting MarkPoint API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.Int("geohash_precision", cfg.Geo.Precision),
	)

	ctx := context.Background()
	db, err := initDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database")

	// Core dependencies
	repo := repository.NewPostgresRepository(db)
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	googleAuth := auth.NewGoogleAuthVerifier(cfg.Google.ClientIDs)

	if googleAuth.IsConfigured() {
		logger.Info("Google sign-in is configured")
	} else {
		logger.Warn("Google sign-in is NOT configured - set GOOGLE_CLIENT_ID to enable")
	}

	fcmClient, err := fcm.NewClient(ctx, logger, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	if err != nil {
		logger.Warn("Failed to initialize push client - push notifications will be disabled", zap.Error(err))
		fcmClient = nil
	} else {
		logger.Info("Push client initialized")
	}

	fileStorage, err := initStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	// Realtime hub and the mark event fan-out
	hub := realtime.NewHub(logger)
	dispatcher := realtime.NewDispatcher(hub, cfg.Server.BaseURL, logger)

	// Services
	authService := domain.NewAuthService(repo, jwtManager, googleAuth)
	markService := domain.NewMarkService(repo, repo, dispatcher, cfg.Geo.Precision, cfg.Marks.EditWindow, cfg.Geo.MaxResults)
	notificationService := domain.NewNotificationService(repo, fcmClient, logger)
	chatService := domain.NewChatService(repo, notificationService)
	commentService := domain.NewCommentService(repo, repo, notificationService)
	subscriptionService := domain.NewSubscriptionService(repo, billing.NewSandboxProvider(logger))

	// Handlers
	authHandler := api.NewAuthHandler(authService, logger)
	markHandler := api.NewMarkHandler(markService, fileStorage, logger)
	categoryHandler := api.NewCategoryHandler(repo, logger)
	commentHandler := api.NewCommentHandler(commentService, logger)
	chatHandler := api.NewChatHandler(chatService, hub, logger)
	subscriptionHandler := api.NewSubscriptionHandler(subscriptionService, logger)
	notificationHandler := api.NewNotificationHandler(notificationService, logger)
	wsHandler := api.NewWSHandler(hub, markService, chatService, jwtManager, logger)
	healthHandler := api.NewHealthHandler(db)

	router := api.NewRouter(
		authHandler,
		markHandler,
		categoryHandler,
		commentHandler,
		chatHandler,
		subscriptionHandler,
		notificationHandler,
		wsHandler,
		healthHandler,
		jwtManager,
		logger,
	)
	r := router.Setup()

	// Background maintenance (token cleanup, mark end flags, subscription expiry)
	maintCtx, maintCancel := context.WithCancel(ctx)
	repo.StartMaintenanceWorker(maintCtx, 1*time.Hour)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	maintCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func initLogger() (*zap.Logger, error) {
	if os.Getenv("ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func initDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLife
	poolCfg.MaxConnIdleTime = cfg.Database.MaxConnIdle
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func initStorage(ctx context.Context, cfg *config.Config) (storage.FileStorage, error) {
	if cfg.Storage.Type == "s3" {
		return storage.NewS3Storage(ctx, cfg.Storage)
	}
	return storage.NewLocalFileStorage(cfg.Storage.LocalDir, cfg.Server.BaseURL+"/uploads")
}
