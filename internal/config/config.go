package config

import (
	"os"
	"strconv"
	"strings"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// StoreConfig holds persistence configuration. An empty PostgresDSN
// selects the in-memory store (local development).
type StoreConfig struct {
	PostgresDSN string
	RedisURL    string
}

// EngineConfig holds the tunable engine parameters
type EngineConfig struct {
	MarginPct       float64
	MaxGamePayout   float64
	LearningRate    float64
	VolatilityDecay float64
}

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Engine EngineConfig
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("SERVER_ADDR", ":8090"),
			CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		},
		Store: StoreConfig{
			PostgresDSN: getEnv("POSTGRES_DSN", ""),
			RedisURL:    getEnv("REDIS_URL", ""),
		},
		Engine: EngineConfig{
			MarginPct:       getEnvFloat("ODDS_MARGIN_PCT", 0.15),
			MaxGamePayout:   getEnvFloat("MAX_GAME_PAYOUT", 10000.0),
			LearningRate:    getEnvFloat("RATING_LEARNING_RATE", 0.05),
			VolatilityDecay: getEnvFloat("VOLATILITY_DECAY", 0.98),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
