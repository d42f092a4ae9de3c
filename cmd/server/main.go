// Package main is the entry point for the retailops API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"retailops/internal/app"
	"retailops/internal/auth"
	"retailops/internal/config"
	v1 "retailops/internal/infrastructure/http/v1"
	"retailops/internal/infrastructure/http/v1/handlers"
	"retailops/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Infow("starting retailops server", "env", cfg.AppEnv, "storage", cfg.StorageDriver)

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open runtime", "error", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Warnw("failed to close runtime", "error", err)
		}
	}()

	// --- JWT Service ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))

	checks := make(map[string]handlers.Pinger, len(rt.Checks))
	for name, p := range rt.Checks {
		checks[name] = p
	}

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		JWTValidator:   jwtService,
		Services:       rt.Services,
		HealthChecks:   checks,
		RequestTimeout: cfg.RequestTimeout,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
