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

	"github.com/toybazaar/toybazaar/internal/app"
	"github.com/toybazaar/toybazaar/internal/auth"
	"github.com/toybazaar/toybazaar/internal/cart"
	"github.com/toybazaar/toybazaar/internal/catalog"
	"github.com/toybazaar/toybazaar/internal/customers"
	"github.com/toybazaar/toybazaar/internal/observability"
	"github.com/toybazaar/toybazaar/internal/orders"
	"github.com/toybazaar/toybazaar/internal/payments"
	"github.com/toybazaar/toybazaar/internal/platform/cache"
	"github.com/toybazaar/toybazaar/internal/platform/db"
	"github.com/toybazaar/toybazaar/internal/promo"
	"github.com/toybazaar/toybazaar/internal/shared"
	"github.com/toybazaar/toybazaar/internal/shipping"
	"github.com/toybazaar/toybazaar/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	idempotencyStore := shared.NewIdempotencyStore(pool)

	shippingRepo := shipping.NewRepository(pool)
	shippingService := shipping.NewService(shippingRepo, logger, cfg.ShippingRuleTTL)
	shippingHandler := shipping.NewHandler(logger, shippingService)

	promoRepo := promo.NewRepository(pool)

	catalogRepo := catalog.NewRepository(pool)
	catalogCache := catalog.NewCache(redisClient, cfg.ProductCacheTTL)
	catalogService := catalog.NewService(catalogRepo, catalogCache, promo.NewDealSource(promoRepo))
	catalogHandler := catalog.NewHandler(logger, catalogService)

	promoService := promo.NewService(promoRepo, catalogService, redisClient, logger, cfg.HomeConfigTTL)
	promoHandler := promo.NewHandler(logger, promoService)

	cartStore := cart.NewStore(redisClient, cfg.CartTTL)
	cartService := cart.NewService(cartStore, catalogService, shippingService, logger)
	cartHandler := cart.NewHandler(logger, cartService)

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo)
	customersHandler := customers.NewHandler(logger, customersService)

	authService := auth.NewService(redisClient, customersService, cfg.OTPTTL, cfg.SessionTTL)
	authHandler := auth.NewHandler(logger, authService, jobsClient)

	metrics := observability.NewMetrics()

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo, catalogService, customersService, shippingService, cartService, idempotencyStore, jobsClient, logger)
	ordersHandler := orders.NewHandler(logger, ordersService)
	ordersHandler.OnPlaced = metrics.OrderPlaced

	gateway := payments.NewGateway(cfg.PaymentGatewayURL, cfg.PaymentAPIKey)
	paymentsService := payments.NewService(gateway, ordersService, cfg.PaymentWebhookSecret, logger)
	paymentsHandler := payments.NewHandler(logger, paymentsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthService:      authService,
		AuthHandler:      authHandler,
		CatalogHandler:   catalogHandler,
		CartHandler:      cartHandler,
		ShippingHandler:  shippingHandler,
		PromoHandler:     promoHandler,
		CustomersHandler: customersHandler,
		OrdersHandler:    ordersHandler,
		PaymentsHandler:  paymentsHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
