package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.Postgres.URL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "veilcredit.registry.events", cfg.Kafka.Topic)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VEILCREDIT_ADDR", ":9090")
	t.Setenv("POSTGRES_URL", "postgres://localhost:5432/veilcredit")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
	t.Setenv("CERTIFICATE_CACHE_TTL", "30s")
	t.Setenv("REDIS_POOL_SIZE", "25")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres://localhost:5432/veilcredit", cfg.Postgres.URL)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, 25, cfg.Redis.PoolSize)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("REDIS_POOL_SIZE", "lots")
	t.Setenv("CERTIFICATE_CACHE_TTL", "soon")

	cfg := FromEnv()

	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
}
