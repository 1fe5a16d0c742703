package config

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv         string
	DBDriver       string
	DBDSN          string
	RedisAddr      string
	HTTPPort       int
	AllowedOrigins []string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	portStr := getEnv("HTTP_PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 8080
	}

	var origins []string
	if raw := getEnv("CORS_ALLOWED_ORIGINS", ""); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		DBDriver:       getEnv("DB_DRIVER", "sqlite3"),
		DBDSN:          getEnv("DB_DSN", "./data/school.db"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:       port,
		AllowedOrigins: origins,
	}
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
