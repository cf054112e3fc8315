package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"rentflow/auth"
	"rentflow/config"
	"rentflow/contract"
	"rentflow/db"
	"rentflow/httpapi"
	"rentflow/maintenance"
	"rentflow/notification"
	"rentflow/payment"
	"rentflow/property"
	"rentflow/realtime"
	"rentflow/storage"
	"rentflow/tenant"
)

const heartbeatInterval = 25 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	var blocklist auth.Blocklist
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opt)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		blocklist = auth.NewRedisBlocklist(client)
	} else {
		logger.Warn("REDIS_URL not set, logout token revocation disabled")
	}

	authSvc := auth.NewService(auth.NewRepository(pool), blocklist, cfg.JWTSecret)
	tenantSvc := tenant.NewService(tenant.NewRepository(pool))
	propertySvc := property.NewService(property.NewRepository(pool))
	contractSvc := contract.NewService(pool, tenantSvc)
	paymentRepo := payment.NewRepository(pool)
	paymentSvc := payment.NewService(paymentRepo)
	billing := payment.NewBillingEngine(paymentRepo, logger)
	maintenanceSvc := maintenance.NewService(maintenance.NewRepository(pool))
	notificationSvc := notification.NewService(notification.NewRepository(pool), logger)

	hub := realtime.NewHub(logger)
	defer hub.Close()

	server := httpapi.NewServer(httpapi.Server{
		Logger:        logger,
		Auth:          authSvc,
		Tenants:       tenantSvc,
		Properties:    propertySvc,
		Contracts:     contractSvc,
		Payments:      paymentSvc,
		Billing:       billing,
		Maintenance:   maintenanceSvc,
		Notifications: notificationSvc,
		Hub:           hub,
		Uploader:      storage.NewClient(cfg.StorageEndpoint, cfg.StorageBucket, cfg.StorageAPIKey),
		CronSecret:    cfg.CronSecret,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		err := hub.RunHeartbeats(ctx, heartbeatInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
