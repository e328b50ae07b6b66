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

	"github.com/josh-kwaku/rental-webhooks/api"
	"github.com/josh-kwaku/rental-webhooks/internal/config"
	"github.com/josh-kwaku/rental-webhooks/internal/handler"
	"github.com/josh-kwaku/rental-webhooks/internal/logging"
	"github.com/josh-kwaku/rental-webhooks/internal/middleware"
	"github.com/josh-kwaku/rental-webhooks/internal/service"
	"github.com/josh-kwaku/rental-webhooks/internal/signature"
	"github.com/josh-kwaku/rental-webhooks/internal/telemetry"
)

const (
	serviceName        = "rental-webhooks"
	rateLimitPruneTick = time.Minute
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init(serviceName, cfg.LogLevel, cfg.AppEnv)
	logger := slog.Default()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mp, shutdownMetrics, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		slog.Error("failed to set up telemetry", "error", err)
		os.Exit(1)
	}
	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		slog.Error("failed to create metrics", "error", err)
		os.Exit(1)
	}

	store, closeStore, err := openDedupStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open dedup store", "store", cfg.DedupStore, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	dedup := service.NewDeduplicator(store, logger,
		service.WithRetention(cfg.DedupRetention),
		service.WithHighWater(cfg.DedupHighWater),
		service.WithSweepObserver(metrics.Swept),
	)

	dispatcher := service.NewDispatcher()
	dispatcher.RegisterDefaults()

	if !cfg.SignatureRequired() {
		slog.Warn("HQ_WEBHOOK_SECRET is not set, webhook signatures will not be verified")
	}

	webhookHandler := handler.NewWebhookHandler(handler.WebhookConfig{
		Enabled:         cfg.WebhooksEnabled,
		Provider:        cfg.WebhookProvider,
		SignatureHeader: cfg.SignatureHeader,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		Secret:          cfg.WebhookSecret,
	}, signature.New(cfg.WebhookSecret), dedup, dispatcher, metrics)
	healthHandler := handler.NewHealthHandler(dedup, version)
	docsHandler := handler.NewDocsHandler(api.OpenAPISpec)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.HandleFunc("GET /docs", docsHandler.UI)
	mux.HandleFunc("GET /docs/openapi.yaml", docsHandler.Spec)

	mux.Handle("POST /api/webhooks/{provider}", rateLimiter.Middleware(http.HandlerFunc(webhookHandler.Receive)))
	mux.HandleFunc("GET /api/webhooks/{provider}", webhookHandler.Status)
	mux.HandleFunc("OPTIONS /api/webhooks/{provider}", webhookHandler.Options)

	if cfg.AdminJWTSecret != "" {
		adminHandler := handler.NewAdminHandler(dedup)
		mux.Handle("POST /admin/webhooks/sweep", middleware.Auth(cfg.AdminJWTSecret)(http.HandlerFunc(adminHandler.Sweep)))
	} else {
		slog.Info("ADMIN_JWT_SECRET is not set, admin routes disabled")
	}

	go service.NewSweeper(dedup, logger, cfg.DedupSweepInterval).Start(ctx)
	if rateLimiter != nil {
		go pruneRateLimiter(ctx, rateLimiter)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           middleware.Chain(mux, middleware.Tracing, middleware.Logging, middleware.Recovery(metrics)),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started",
			"addr", addr,
			"webhooks_enabled", cfg.WebhooksEnabled,
			"endpoint", webhookHandler.Endpoint(),
			"dedup_store", cfg.DedupStore,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	if err := shutdownMetrics(shutdownCtx); err != nil {
		slog.Error("failed to flush metrics", "error", err)
	}
	slog.Info("server stopped")
}

func pruneRateLimiter(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(rateLimitPruneTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Prune(); n > 0 {
				slog.Debug("pruned idle rate limit entries", "count", n)
			}
		}
	}
}
