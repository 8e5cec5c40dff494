package config

import (
	"os"
	"strings"
)

// Config carries every tunable the server binary needs. All values come from
// the environment with local-development defaults.
type Config struct {
	HTTPAddr        string
	DatabasePath    string
	CheckoutLogPath string
	RedisAddr       string
	RabbitMQURL     string
	OrderExchange   string
	JWTSecret       string
	ServiceName     string
}

func Load() *Config {
	return &Config{
		HTTPAddr:        ":" + getEnv("PORT", "8080"),
		DatabasePath:    getEnv("DB_PATH", "./data/greengrocer.db"),
		CheckoutLogPath: getEnv("CHECKOUT_LOG_PATH", "./data/checkout.db"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		OrderExchange:   getEnv("ORDER_EXCHANGE", "orders_exchange"),
		JWTSecret:       getEnvFromFile("JWT_SECRET_FILE", "JWT_SECRET", "dev-secret"),
		ServiceName:     getEnv("OTEL_SERVICE_NAME", "greengrocer"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvFromFile reads a secret from a file path named by fileKey (the Docker
// secrets convention) and falls back to a plain env var.
func getEnvFromFile(fileKey, envKey, fallback string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return getEnv(envKey, fallback)
}
