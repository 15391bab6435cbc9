// Package config provides configuration loading and management.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	// Persistence configuration
	DatabaseURL string // PostgreSQL connection string (if set, uses PostgreSQL)
	SQLitePath  string // SQLite database path (default: ./research.db)

	// Server configuration (progress-polling stub only)
	Port      int    // HTTP server port (default: 8080)
	LogLevel  string // Logging level: debug, info, warn, error (default: info)
	LogFormat string // Log format: text, json (default: text)

	// Source registry
	SourcesFile string // Path to the YAML source-registry file (default: ./sources.yaml)

	// Kafka notification fan-out (optional, additive)
	KafkaBrokers string // Comma-separated broker list; empty disables the producer
	KafkaTopic   string // Topic for research.ancestor.finalized events

	// Re-research sweep scheduler (optional)
	SweepCron string // Cron expression for the stale-Flagged sweep (default: disabled)

	// Demo mode
	DemoMode bool // Run with pre-loaded sample data (ephemeral)
}

// Load reads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    getEnvOrDefault("SQLITE_PATH", "./research.db"),
		Port:          getEnvIntOrDefault("PORT", 8080),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     getEnvOrDefault("LOG_FORMAT", "text"),
		SourcesFile:   getEnvOrDefault("SOURCES_FILE", "./sources.yaml"),
		KafkaBrokers:  os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:    getEnvOrDefault("KAFKA_TOPIC", "research.ancestor.finalized"),
		SweepCron:     os.Getenv("SWEEP_CRON"),
		DemoMode:      getEnvBoolOrDefault("DEMO_MODE", false),
	}
	return cfg
}

// UsePostgreSQL returns true if PostgreSQL should be used.
func (c *Config) UsePostgreSQL() bool {
	return c.DatabaseURL != ""
}

// UseKafka returns true if the Kafka notification fan-out is enabled.
func (c *Config) UseKafka() bool {
	return c.KafkaBrokers != ""
}

// UseSweepScheduler returns true if the cron sweep is configured.
func (c *Config) UseSweepScheduler() bool {
	return c.SweepCron != ""
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBoolOrDefault returns the environment variable as bool or a default.
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultValue
}

// getEnvIntOrDefault returns the environment variable as int or a default.
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
