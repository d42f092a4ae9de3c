// Package main provides CLI for database maintenance.
// Usage: dbctl migrate [up|down|status|redo]
//
//	dbctl ping
//	dbctl stats
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"retailops/internal/config"
	"retailops/internal/infrastructure/storage/postgres"
)

const migrationsDir = "db/migrations"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Println("DATABASE_URL environment variable is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "migrate":
		migrate(cfg.DatabaseURL)
	case "ping":
		ping(ctx, cfg.DatabaseURL)
	case "stats":
		stats(ctx, cfg.DatabaseURL)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`retailops database CLI

Usage:
  dbctl <command> [options]

Commands:
  migrate   Run goose migrations (up, down, status, redo; default up)
  ping      Check database connectivity
  stats     Print connection pool statistics
  help      Show this help

Environment:
  DATABASE_URL  PostgreSQL DSN (required)`)
}

func migrate(dsn string) {
	action := "up"
	if len(os.Args) > 2 {
		action = os.Args[2]
	}
	switch action {
	case "up", "down", "status", "redo":
	default:
		fmt.Printf("Unknown migrate action: %s\n", action)
		os.Exit(1)
	}

	fmt.Printf("Running migrations (%s)...\n", action)
	cmd := exec.Command("goose", "-dir", migrationsDir, "postgres", dsn, action)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Printf("  ✗ Failed: %v\n", err)
		fmt.Println("  Is goose installed? go install github.com/pressly/goose/v3/cmd/goose@latest")
		os.Exit(1)
	}
	fmt.Println("  ✓ Done")
}

func ping(ctx context.Context, dsn string) {
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		fmt.Printf("  ✗ %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()
	fmt.Println("  ✓ Database reachable")
}

func stats(ctx context.Context, dsn string) {
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		fmt.Printf("  ✗ %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	s := pool.Stat()
	fmt.Printf("Total: %d  Acquired: %d  Idle: %d  Max: %d\n",
		s.TotalConns(), s.AcquiredConns(), s.IdleConns(), s.MaxConns())
}
