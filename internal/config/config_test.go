package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "APP_PORT", "LOG_LEVEL", "STORAGE_DRIVER", "DATABASE_URL",
		"REDIS_ADDR", "REDIS_DB", "JWT_SECRET", "AVAILABILITY_CACHE_TTL", "MIRROR_SYNC_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.True(t, cfg.Development())
	assert.Equal(t, 30*time.Second, cfg.AvailabilityCacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.MirrorSyncInterval)
	assert.Empty(t, cfg.RedisAddr)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", DriverPostgres)
	t.Setenv("DATABASE_URL", "postgres://localhost/retail")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MIRROR_SYNC_INTERVAL", "90s")
	t.Setenv("AVAILABILITY_CACHE_TTL", "not-a-duration")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 90*time.Second, cfg.MirrorSyncInterval)
	assert.Equal(t, 30*time.Second, cfg.AvailabilityCacheTTL, "unparsable values fall back to the default")
}

func TestFromEnv_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", DriverPostgres)
	t.Setenv("DATABASE_URL", "")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestFromEnv_UnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnv_ProductionNeedsSecret(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.Development())
}
