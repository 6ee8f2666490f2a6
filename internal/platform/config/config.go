package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	TokenIssuer   string
	TokenTTL      time.Duration
	LogLevel      string

	DatabaseURL string
	Redis       RedisConfig
	Postal      PostalConfig
	Audit       AuditConfig
}

// RedisConfig holds connection settings. An empty URL selects in-memory stores.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostalConfig points the CEP proxy at ViaCEP (or a compatible mirror).
type PostalConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// AuditConfig selects the Kafka audit sink. No brokers keeps audit in memory.
type AuditConfig struct {
	Brokers []string
	Topic   string
}

const (
	DefaultAddr        = ":8080"
	DefaultViaCEPURL   = "https://viacep.com.br"
	DefaultAuditTopic  = "cadastro.audit"
	DefaultTokenIssuer = "cadastro"
)

// LoadDotEnv reads .env when present. A missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load(".env")
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          envOr("CADASTRO_ADDR", DefaultAddr),
		JWTSigningKey: jwtSigningKey,
		TokenIssuer:   envOr("TOKEN_ISSUER", DefaultTokenIssuer),
		TokenTTL:      durationOr("TOKEN_TTL", time.Hour),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postal: PostalConfig{
			BaseURL:  envOr("VIACEP_URL", DefaultViaCEPURL),
			Timeout:  durationOr("VIACEP_TIMEOUT", 10*time.Second),
			CacheTTL: durationOr("POSTAL_CACHE_TTL", 24*time.Hour),
		},
		Audit: AuditConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("AUDIT_TOPIC", DefaultAuditTopic),
		},
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
