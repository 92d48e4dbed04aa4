package config

import (
	"os"
	"strconv"
	"time"

	"gosus/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Limits   LimitsConfig
	Analysis AnalysisConfig
	Log      LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// LimitsConfig bounds what a single process accepts and keeps around
type LimitsConfig struct {
	MaxUploadBytes        int64
	MaxConcurrentAnalyses int
	SessionTTL            time.Duration
}

// AnalysisConfig holds tunables for descriptive statistics. The
// significance level is fixed at 0.05 and deliberately absent here.
type AnalysisConfig struct {
	TukeyK float64
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

const (
	DefaultPort                  = "8080"
	DefaultMaxUploadBytes        = 1 << 20
	DefaultMaxConcurrentAnalyses = 4
	DefaultSessionTTL            = 30 * time.Minute
	DefaultTukeyK                = 1.5
)

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: DefaultPort},
		Limits: LimitsConfig{
			MaxUploadBytes:        DefaultMaxUploadBytes,
			MaxConcurrentAnalyses: DefaultMaxConcurrentAnalyses,
			SessionTTL:            DefaultSessionTTL,
		},
		Analysis: AnalysisConfig{TukeyK: DefaultTukeyK},
		Log:      LogConfig{Level: "INFO"},
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", DefaultPort),
		},
		Limits: LimitsConfig{
			MaxUploadBytes:        int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
			MaxConcurrentAnalyses: getEnvIntOrDefault("MAX_CONCURRENT_ANALYSES", DefaultMaxConcurrentAnalyses),
			SessionTTL:            getEnvDurationOrDefault("SESSION_TTL", DefaultSessionTTL),
		},
		Analysis: AnalysisConfig{
			TukeyK: getEnvFloatOrDefault("TUKEY_K", DefaultTukeyK),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Limits.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if config.Limits.MaxConcurrentAnalyses < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_ANALYSES must be at least 1")
	}
	if config.Limits.SessionTTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	if config.Analysis.TukeyK <= 0 {
		return errors.ConfigInvalid("TUKEY_K must be positive")
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
