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

	"github.com/neexbeast/weather-dashboard/internal/api"
	"github.com/neexbeast/weather-dashboard/internal/cityinfo"
	"github.com/neexbeast/weather-dashboard/internal/config"
	"github.com/neexbeast/weather-dashboard/internal/dashboard"
	"github.com/neexbeast/weather-dashboard/internal/logger"
	"github.com/neexbeast/weather-dashboard/internal/session"
	"github.com/neexbeast/weather-dashboard/internal/telemetry"
	"github.com/neexbeast/weather-dashboard/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("loading config", "err", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	for _, w := range cfg.Warnings() {
		log.Warn("configuration warning", "detail", w)
	}

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(cfg.Telemetry.ServiceName, cfg.Telemetry.ZipkinEndpoint)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("flushing traces failed", "err", err)
		}
	}()

	// Pick the session store.
	var store dashboard.Store
	if cfg.Session.RedisURL != "" {
		redisClient, err := session.Connect(ctx, cfg.Session.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		store = session.NewRedisStore(redisClient, cfg.Session.TTL)
		log.Info("sessions stored in redis", "ttl", cfg.Session.TTL)
	} else {
		store = dashboard.NewMemoryStore(cfg.Session.TTL)
		log.Info("sessions stored in memory", "ttl", cfg.Session.TTL)
	}

	// Wire dependencies.
	weatherClient := weather.NewClient(cfg.Weather)
	cityFetcher := cityinfo.NewFetcher(cfg, log)
	controller := dashboard.NewController(weatherClient, cityFetcher, store, log)
	handlers := api.NewHandlers(controller, log)

	router := api.NewRouter(handlers, store, api.SessionOptions{
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.CookieSecure,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}
