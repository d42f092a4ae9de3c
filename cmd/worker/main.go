// Package main is the entry point for the retailops background worker. It
// reconciles POS and storefront mirrors with item stock on a fixed interval.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"retailops/internal/app"
	"retailops/internal/config"
	"retailops/internal/worker"
	"retailops/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

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

	log.Infow("starting retailops worker", "interval", cfg.MirrorSyncInterval)
	if cfg.StorageDriver == config.DriverMemory {
		log.Warn("memory storage driver: the worker sees only its own empty store")
	}

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open runtime", "error", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Warnw("failed to close runtime", "error", err)
		}
	}()

	sweeper := worker.NewSweeper(rt.Services.Mirror, cfg.MirrorSyncInterval, rt.Pool, log)
	sweeper.Start(ctx)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	sweeper.Stop()
	log.Info("worker stopped")
}
