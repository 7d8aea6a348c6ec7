package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chowpack/chowpack-engine/api/routes"
	"github.com/chowpack/chowpack-engine/internal/cart"
	"github.com/chowpack/chowpack-engine/internal/checkout"
	"github.com/chowpack/chowpack-engine/internal/delivery"
	"github.com/chowpack/chowpack-engine/internal/notifications"
	"github.com/chowpack/chowpack-engine/internal/orders"
	"github.com/chowpack/chowpack-engine/internal/pricing"
	"github.com/chowpack/chowpack-engine/internal/profile"
	"github.com/chowpack/chowpack-engine/internal/promotions"
	"github.com/chowpack/chowpack-engine/internal/users"
	"github.com/chowpack/chowpack-engine/pkg/config"
	"github.com/chowpack/chowpack-engine/pkg/logger"
	"github.com/chowpack/chowpack-engine/pkg/metrics"
	"github.com/chowpack/chowpack-engine/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var cartStore cart.Store
	if cfg.Store.UseSQLite {
		cartStore, err = cart.NewSQLiteStore(cfg.Store.SQLiteDSN)
	} else {
		cartStore, err = cart.NewRedisStore(redisClient, cfg.Checkout.CartTTL)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cart store", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	packPriceFetcher, err := pricing.NewTableFetcher(cfg.Upstream, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create pack price fetcher", err)
		os.Exit(1)
	}
	deliveryFetcher, err := delivery.NewFetcher(cfg.Upstream, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery fetcher", err)
		os.Exit(1)
	}
	promotionsFetcher, err := promotions.NewFetcher(cfg.Upstream, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create promotions fetcher", err)
		os.Exit(1)
	}
	usersClient, err := users.NewClient(cfg.Upstream, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create users client", err)
		os.Exit(1)
	}
	ordersSubmitter, err := orders.NewSubmitter(cfg.Upstream, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders submitter", err)
		os.Exit(1)
	}
	profileService, err := profile.NewService(redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	notifier := notifications.NewLogNotifier(logg)

	checkoutService, err := checkout.NewService(checkout.Deps{
		Carts:      cartService,
		PackPrices: packPriceFetcher,
		Delivery:   deliveryFetcher,
		Promotions: promotionsFetcher,
		Users:      usersClient,
		Orders:     ordersSubmitter,
		Profiles:   profileService,
		Notifier:   notifier,
		Metrics:    metrics.NewCheckoutMetrics(registry),
	}, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub, err := redisClient.Subscribe(ctx, cfg.Events.Channel)
	if err != nil {
		logg.Error(ctx, "failed to subscribe to event channel", err)
		os.Exit(1)
	}
	// Balance events re-read the user so the next quote sees the debited
	// wallet. The feed carries no session token, so this is best-effort.
	refreshUser := func(ctx context.Context, userID string) {
		_, _ = usersClient.Refresh(ctx, userID, "")
	}
	consumer, err := notifications.NewConsumer(sub, notifier, refreshUser, logg)
	if err != nil {
		logg.Error(ctx, "failed to create event consumer", err)
		os.Exit(1)
	}
	go func() {
		if err := consumer.Run(ctx); err != nil {
			logg.Error(ctx, "event consumer stopped", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, redisClient, registry,
			cartService, checkoutService, profileService,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "error during shutdown", err)
		}
		logg.Info(logCtx, "api server stopped")
	}
}
