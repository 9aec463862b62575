package config

import (
	"os"
	"strconv"
	"time"

	"datalens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Realtime RealtimeConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	OpsPort string
	GinMode string
}

// DatabaseConfig holds database connection settings.
// An empty URL disables run persistence entirely.
type DatabaseConfig struct {
	URL string
}

// EngineConfig holds the knobs of the analysis engine.
//
// AccuracyScore and TimelinessScore are the fixed placeholder dimensions of
// the quality assessor: true accuracy needs ground truth the engine never
// sees. They live here so replacing them with a real computation is a
// config-boundary change, not a formula hunt.
type EngineConfig struct {
	StatMode          string  // "approximate" or "exact"
	ForecastHorizon   int     // forward points per field
	ForecastWorkers   int     // concurrent per-field forecast fits
	AccuracyScore     float64 // fixed quality dimension, 0-100
	TimelinessScore   float64 // fixed quality dimension, 0-100
	SummaryConfidence float64 // fixed executive-summary confidence, 0-1
}

// RealtimeConfig holds the streaming variant settings
type RealtimeConfig struct {
	Interval time.Duration // recompute cadence
	Capacity int           // ring buffer size per metric
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			OpsPort: getEnvOrDefault("OPS_PORT", "8081"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Engine: EngineConfig{
			StatMode:          getEnvOrDefault("STAT_MODE", "approximate"),
			ForecastHorizon:   getEnvIntOrDefault("FORECAST_HORIZON", 12),
			ForecastWorkers:   getEnvIntOrDefault("FORECAST_WORKERS", 4),
			AccuracyScore:     getEnvFloatOrDefault("QUALITY_ACCURACY_SCORE", 85),
			TimelinessScore:   getEnvFloatOrDefault("QUALITY_TIMELINESS_SCORE", 90),
			SummaryConfidence: getEnvFloatOrDefault("SUMMARY_CONFIDENCE", 0.85),
		},
		Realtime: RealtimeConfig{
			Interval: getEnvDurationOrDefault("REALTIME_INTERVAL", 5*time.Second),
			Capacity: getEnvIntOrDefault("REALTIME_CAPACITY", 500),
		},
	}

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validate(c *Config) error {
	if c.Engine.StatMode != "approximate" && c.Engine.StatMode != "exact" {
		return errors.ConfigInvalid("STAT_MODE must be 'approximate' or 'exact'")
	}
	if c.Engine.ForecastHorizon <= 0 {
		return errors.ConfigInvalid("FORECAST_HORIZON must be positive")
	}
	if c.Engine.ForecastWorkers <= 0 {
		return errors.ConfigInvalid("FORECAST_WORKERS must be positive")
	}
	if c.Engine.SummaryConfidence < 0 || c.Engine.SummaryConfidence > 1 {
		return errors.ConfigInvalid("SUMMARY_CONFIDENCE must be in [0,1]")
	}
	if c.Realtime.Capacity <= 0 {
		return errors.ConfigInvalid("REALTIME_CAPACITY must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
