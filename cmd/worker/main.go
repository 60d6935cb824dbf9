package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/jonas/postflow/internal/database"
	"github.com/jonas/postflow/internal/mailer"
	"github.com/jonas/postflow/internal/posts"
	"github.com/jonas/postflow/internal/storage"
	"github.com/jonas/postflow/internal/tasks"
	"github.com/jonas/postflow/pkg/config"
	"github.com/jonas/postflow/pkg/queue"
	"github.com/jonas/postflow/pkg/util"
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

	logger.Info("starting postflow worker")

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Media storage backend
	var store storage.Store
	switch cfg.Storage.Backend {
	case "s3":
		store, err = storage.NewS3Store(context.Background(), cfg.Storage.Bucket, cfg.Storage.Region)
		if err != nil {
			logger.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		store = storage.NewDiskStore(cfg.Storage.Root, cfg.Server.BaseURL)
	}

	// Outbound mail
	mail, err := mailer.NewSESMailer(context.Background(), cfg.Mail.Region, cfg.Mail.Sender)
	if err != nil {
		logger.Error("failed to initialize mailer", "error", err)
		os.Exit(1)
	}

	postService := posts.NewService(db, store, logger)

	// Create Asynq server
	srv := queue.NewServer(&cfg.Redis, 10)

	// Create task handler
	handler := tasks.NewHandler(postService, mail, cfg.Server.BaseURL, logger)

	// Register handlers
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Periodic publish sweep, cadence comes from WORKER_SWEEP_SCHEDULE
	sweepSchedule := cfg.Worker.SweepSchedule
	if err := util.ValidateCronExpr(sweepSchedule); err != nil {
		logger.Error("invalid sweep schedule", "schedule", sweepSchedule, "error", err)
		os.Exit(1)
	}
	nextSweep, err := util.NextCronTime(sweepSchedule, time.Now())
	if err != nil {
		logger.Error("invalid sweep schedule", "schedule", sweepSchedule, "error", err)
		os.Exit(1)
	}
	logger.Info("publish sweep scheduled", "schedule", sweepSchedule, "next_run", nextSweep)

	scheduler := queue.NewScheduler(&cfg.Redis)
	if _, err := scheduler.Register(sweepSchedule, tasks.NewPublishSweepTask()); err != nil {
		logger.Error("failed to register publish sweep", "error", err)
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// Handle shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		scheduler.Shutdown()
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	// Start the server
	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	// Wait for context cancellation
	<-ctx.Done()

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}
