package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/jonas/postflow/internal/api"
	"github.com/jonas/postflow/internal/auth"
	"github.com/jonas/postflow/internal/dashboard"
	"github.com/jonas/postflow/internal/database"
	"github.com/jonas/postflow/internal/invites"
	"github.com/jonas/postflow/internal/posts"
	"github.com/jonas/postflow/internal/storage"
	"github.com/jonas/postflow/pkg/config"
	"github.com/jonas/postflow/pkg/queue"
	"github.com/jonas/postflow/pkg/util"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting postflow server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis", "error", err)
		redisClient = nil
	}

	// Initialize Asynq client for background job enqueuing
	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
	}

	// Media storage backend
	var store storage.Store
	var mediaDir string
	switch cfg.Storage.Backend {
	case "s3":
		s3Store, err := storage.NewS3Store(context.Background(), cfg.Storage.Bucket, cfg.Storage.Region)
		if err != nil {
			logger.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		store = s3Store
	default:
		diskStore := storage.NewDiskStore(cfg.Storage.Root, cfg.Server.BaseURL)
		store = diskStore
		mediaDir = diskStore.Root()
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)
	postService := posts.NewService(db, store, logger)
	dashboardService := dashboard.NewService(db, store)
	inviteService := invites.NewService(db, jwtService, asynqClient, cfg.Invite.Expiry(), logger)

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:               db,
		Redis:            redisClient,
		Logger:           logger,
		JWTService:       jwtService,
		AuthService:      authService,
		PostService:      postService,
		DashboardService: dashboardService,
		InviteService:    inviteService,
		MediaDir:         mediaDir,
		RateLimitReqs:    cfg.RateLimit.Requests,
		RateLimitSecs:    cfg.RateLimit.WindowSeconds,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Close Asynq client
	if asynqClient != nil {
		asynqClient.Close()
	}

	// Close Redis connection
	if redisClient != nil {
		redisClient.Close()
	}

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
