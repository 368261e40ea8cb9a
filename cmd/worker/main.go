package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/toybazaar/toybazaar/internal/app"
	"github.com/toybazaar/toybazaar/internal/cart"
	"github.com/toybazaar/toybazaar/internal/catalog"
	"github.com/toybazaar/toybazaar/internal/platform/db"
	"github.com/toybazaar/toybazaar/internal/promo"
	"github.com/toybazaar/toybazaar/internal/shared"
	"github.com/toybazaar/toybazaar/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	promoRepo := promo.NewRepository(pool)
	catalogRepo := catalog.NewRepository(pool)
	catalogCache := catalog.NewCache(redisClient, cfg.ProductCacheTTL)
	catalogService := catalog.NewService(catalogRepo, catalogCache, promo.NewDealSource(promoRepo))
	promoService := promo.NewService(promoRepo, catalogService, redisClient, logger, cfg.HomeConfigTTL)

	cartStore := cart.NewStore(redisClient, cfg.CartTTL)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	confirmationJob := jobs.NewOrderConfirmationJob(pool, logger)
	otpJob := jobs.NewOTPDeliveryJob(logger)
	sweepJob := jobs.NewDealSweepJob(promoService, logger)
	reminderJob := jobs.NewCartReminderJob(cartStore, logger)
	cleanupJob := jobs.NewIdempotencyCleanupJob(idempotencyStore, logger)

	reminderTask, err := jobs.NewCartReminderTask(jobs.CartReminderPayload{IdleHours: 24})
	if err != nil {
		logger.Error("build reminder task", slog.Any("error", err))
		os.Exit(1)
	}
	cleanupTask, err := jobs.NewIdempotencyCleanupTask(jobs.IdempotencyCleanupPayload{RetentionHours: 7 * 24})
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOrderConfirmation, Handler: confirmationJob.Handle},
			{Type: jobs.TaskSendOTP, Handler: otpJob.Handle},
			{Type: jobs.TaskDealSweep, Handler: sweepJob.Handle},
			{Type: jobs.TaskCartReminder, Handler: reminderJob.Handle},
			{Type: jobs.TaskIdempotencyCleanup, Handler: cleanupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/10 * * * *", Task: jobs.NewDealSweepTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 9 * * *", Task: reminderTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 3 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
