// Package config loads process configuration from the environment. A .env file in
// the working directory is read first when present; real environment variables win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config is the resolved configuration shared by the server, worker and seed commands.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	StorageDriver string
	DatabaseURL   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	AvailabilityCacheTTL time.Duration
	MirrorSyncInterval   time.Duration
	RequestTimeout       time.Duration
}

// Development reports whether the process runs with development logging.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

// Load reads .env (if any) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppEnv:               getEnv("APP_ENV", "development"),
		Port:                 getEnv("APP_PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		StorageDriver:        getEnv("STORAGE_DRIVER", DriverMemory),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		JWTSecret:            getEnv("JWT_SECRET", "change-me-in-production"),
		AvailabilityCacheTTL: getEnvDuration("AVAILABILITY_CACHE_TTL", 30*time.Second),
		MirrorSyncInterval:   getEnvDuration("MIRROR_SYNC_INTERVAL", 5*time.Minute),
		RequestTimeout:       getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for storage driver %q", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want %s or %s)", c.StorageDriver, DriverMemory, DriverPostgres)
	}
	if c.AppEnv == "production" && c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
