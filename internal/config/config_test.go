package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "seatplan", cfg.Database.Database)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.False(t, cfg.MQTTEnabled)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)

	assert.Equal(t, TriggerModeHTTP, cfg.Placement.TriggerMode)
	assert.Equal(t, "seatplan:requests", cfg.Placement.RequestStream)
	assert.Equal(t, "seatplan:events", cfg.Placement.EventStream)
	assert.Equal(t, 10, cfg.Placement.BatchSize)
	assert.Equal(t, 3600, cfg.Placement.CacheTTL)
	assert.False(t, cfg.Placement.HasSeed)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "exams")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SEATPLAN_TRIGGER_MODE", "events")
	t.Setenv("SEATPLAN_BATCH_SIZE", "25")
	t.Setenv("SEATPLAN_CACHE_TTL", "60")
	t.Setenv("SEATPLAN_SEED", "-42")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "exams", cfg.Database.Database)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, TriggerModeEvents, cfg.Placement.TriggerMode)
	assert.Equal(t, 25, cfg.Placement.BatchSize)
	assert.Equal(t, 60, cfg.Placement.CacheTTL)
	assert.True(t, cfg.Placement.HasSeed)
	assert.Equal(t, int64(-42), cfg.Placement.Seed)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SEATPLAN_BATCH_SIZE", "zero")
	t.Setenv("SEATPLAN_CACHE_TTL", "-5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Placement.BatchSize)
	assert.Equal(t, 3600, cfg.Placement.CacheTTL)
}

func TestLoad_InvalidSeed(t *testing.T) {
	t.Setenv("SEATPLAN_SEED", "abc")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_EventsModeRequiresRedis(t *testing.T) {
	t.Setenv("SEATPLAN_TRIGGER_MODE", "events")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_UnknownTriggerMode(t *testing.T) {
	t.Setenv("SEATPLAN_TRIGGER_MODE", "polling")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported trigger mode")
}
