package config

import (
	"os"
	"strconv"
	"time"

	"panelsim/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	Oracle     OracleConfig
	Server     ServerConfig
	Simulation SimulationConfig
	Cache      CacheConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// OracleConfig holds response-oracle (LLM) settings
type OracleConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// SimulationConfig holds simulation engine settings
type SimulationConfig struct {
	// Concurrency bounds in-flight oracle calls; keeps external rate
	// limits honest
	Concurrency int

	// SampleCap bounds open-ended response samples in aggregates
	SampleCap int

	// StableBand is the +/- percent band treated as a stable trend
	StableBand int

	Seed int64
}

// CacheConfig holds aggregate cache settings
type CacheConfig struct {
	TTL time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Oracle: OracleConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			BaseURL:     getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
			MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 1024),
			Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.7),
			Timeout:     getEnvDurationOrDefault("ORACLE_TIMEOUT", 45*time.Second),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Simulation: SimulationConfig{
			Concurrency: getEnvIntOrDefault("SIM_CONCURRENCY", 8),
			SampleCap:   getEnvIntOrDefault("SAMPLE_CAP", 10),
			StableBand:  getEnvIntOrDefault("TREND_STABLE_BAND", 5),
			Seed:        int64(getEnvIntOrDefault("PANEL_SEED", 0)),
		},
		Cache: CacheConfig{
			TTL: getEnvDurationOrDefault("STATS_CACHE_TTL", 5*time.Minute),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if cfg.Oracle.APIKey == "" {
		return errors.ConfigInvalid("OPENAI_API_KEY is required")
	}
	if cfg.Simulation.Concurrency < 1 {
		return errors.ConfigInvalid("SIM_CONCURRENCY must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
