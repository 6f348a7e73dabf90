package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL          string
	ServerPort           string
	FrontendURL          string
	RedisURL             string
	RabbitMQURL          string
	RabbitMQPrefetch     int
	GlobalRateLimit      string
	PresetReloadInterval time.Duration
	OIDCIssuer           string
	OIDCAudience         string
	EnableHSTS           bool
	ServerDebugMode      bool
	WorkerDebugMode      bool
	OTELEnabled          bool
	OTELEndpoint         string
}

// Load loads configuration from environment variables. RabbitMQ is optional:
// without it, events are dispatched on an in-process bus.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:3000"),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:          getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:     getEnvInt("RABBITMQ_PREFETCH", 1),
		GlobalRateLimit:      getEnv("GLOBAL_RATE_LIMIT", "100-M"),
		PresetReloadInterval: getEnvDuration("PRESET_RELOAD_INTERVAL", time.Minute),
		OIDCIssuer:           getEnv("OIDC_ISSUER", ""),
		OIDCAudience:         getEnv("OIDC_AUDIENCE", ""),
		EnableHSTS:           getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode:      getEnvBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode:      getEnvBool("WORKER_DEBUG_MODE", false),
		OTELEnabled:          getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:         getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required (rate limiting and notification persistence)")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
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
