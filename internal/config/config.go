package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	DatabaseDriver string // "sqlite3" or "postgres"
	DatabaseDSN    string
	AllowedOrigin  string

	JWTSecret string
	TokenTTL  time.Duration

	GeminiAPIKey     string
	GeminiModel      string
	GeneratorTimeout time.Duration
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "30m"))
	if err != nil {
		return nil, err
	}

	generatorTimeout, err := time.ParseDuration(getEnv("GENERATOR_TIMEOUT", "60s"))
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	return &Config{
		ServerPort:       port,
		DatabaseDriver:   getEnv("DATABASE_DRIVER", "sqlite3"),
		DatabaseDSN:      getEnv("DATABASE_DSN", "./xplainit.db"),
		AllowedOrigin:    getEnv("ALLOWED_ORIGIN", "http://localhost:8501"),
		JWTSecret:        secret,
		TokenTTL:         tokenTTL,
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeneratorTimeout: generatorTimeout,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
