package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"CADASTRO_ADDR", "JWT_SIGNING_KEY", "TOKEN_TTL", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "VIACEP_URL", "POSTAL_CACHE_TTL"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.NotEmpty(t, cfg.JWTSigningKey)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Audit.Brokers)
	assert.Equal(t, DefaultViaCEPURL, cfg.Postal.BaseURL)
	assert.Equal(t, 24*time.Hour, cfg.Postal.CacheTTL)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CADASTRO_ADDR", ":9090")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("REDIS_POOL_SIZE", "not-a-number")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("POSTAL_CACHE_TTL", "1h")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Audit.Brokers)
	assert.Equal(t, time.Hour, cfg.Postal.CacheTTL)
}
