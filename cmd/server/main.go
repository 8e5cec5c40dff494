package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suhanarda/greengrocer/internal/cart"
	"github.com/suhanarda/greengrocer/internal/checkout"
	checkoutlogsqlite "github.com/suhanarda/greengrocer/internal/checkout/checkoutlog/sqlite"
	"github.com/suhanarda/greengrocer/internal/config"
	"github.com/suhanarda/greengrocer/internal/httpx"
	"github.com/suhanarda/greengrocer/internal/invoice"
	"github.com/suhanarda/greengrocer/internal/order"
	"github.com/suhanarda/greengrocer/internal/pkg/broker"
	"github.com/suhanarda/greengrocer/internal/pkg/cache"
	"github.com/suhanarda/greengrocer/internal/pkg/telemetry"
	"github.com/suhanarda/greengrocer/internal/settings"
	"github.com/suhanarda/greengrocer/internal/storage/sqlite"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	journal, err := checkoutlogsqlite.Open(cfg.CheckoutLogPath)
	if err != nil {
		slog.Error("failed to open checkout log", "path", cfg.CheckoutLogPath, "error", err)
		os.Exit(1)
	}
	defer journal.Close()

	var redisCache cache.Cache
	if cfg.RedisAddr != "" {
		redisCache = cache.NewRedisCache(cfg.RedisAddr, "greengrocer")
	}

	// The broker is optional: without RABBITMQ_URL the shop runs fine, it
	// just emits no lifecycle events.
	var publisher broker.Publisher
	if cfg.RabbitMQURL != "" {
		mq, err := broker.NewRabbitMQ(cfg.RabbitMQURL, cfg.OrderExchange)
		if err != nil {
			slog.Warn("rabbitmq unavailable, continuing without events", "error", err)
		} else {
			publisher = mq
			defer mq.Close()
		}
	}

	orderService := order.NewService(store.Orders(), store.Inventory(), store.Coupons(), publisher)
	checkoutService := checkout.NewService(checkout.Deps{
		Orders:    store.Orders(),
		Ledger:    store.Inventory(),
		Coupons:   store.Coupons(),
		Customers: store.Customers(),
		Settings:  settings.NewProvider(store.Settings(), redisCache),
		Invoices:  invoice.NewTextGenerator(),
		InvStore:  store.Invoices(),
		Journal:   journal,
		Publisher: publisher,
	})

	handler := httpx.NewHandler(
		cart.NewManager(),
		checkoutService,
		orderService,
		store.Inventory(),
		store.Coupons(),
		store.Customers(),
		store.Settings(),
		store.Invoices(),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(handler, cfg.JWTSecret),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("greengrocer API running", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}
