// Package config loads daemon configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds daemon configuration.
type Config struct {
	DataDir string

	// Logging
	LogLevel  string
	LogFormat string

	// Forecasting
	MinimumSamples int
	Alpha          float64
	CrossingGate   float64
	MaxLookahead   time.Duration
	Lookback       time.Duration
	CacheTTL       time.Duration

	// Sampling and scheduling
	SampleInterval time.Duration
	SweepInterval  time.Duration
	Retention      time.Duration
	EntityID       string

	// Metrics endpoint
	MetricsAddr string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "localhost"
	}

	return Config{
		DataDir:        "/var/lib/foresight",
		LogLevel:       "info",
		LogFormat:      "auto",
		MinimumSamples: 20,
		Alpha:          0.3,
		CrossingGate:   0.5,
		MaxLookahead:   6 * time.Hour,
		Lookback:       24 * time.Hour,
		CacheTTL:       5 * time.Minute,
		SampleInterval: time.Minute,
		SweepInterval:  5 * time.Minute,
		Retention:      7 * 24 * time.Hour,
		EntityID:       hostname,
		MetricsAddr:    ":9115",
	}
}

// Load reads configuration from the environment, with optional .env file
// overrides from the data directory and the current directory.
func Load() Config {
	cfg := Defaults()

	if dir := os.Getenv("FORESIGHT_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	// Load .env file if it exists (for deployment overrides)
	envFile := filepath.Join(cfg.DataDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			log.Warn().Err(err).Str("file", envFile).Msg("Failed to load .env file")
		} else {
			log.Info().Str("file", envFile).Msg("Loaded .env file for deployment overrides")
		}
	}

	// Also try loading from current directory for development
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("Loaded configuration from .env in current directory")
	}

	// The data dir may itself be overridden by the .env file
	if dir := os.Getenv("FORESIGHT_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	if level := os.Getenv("FORESIGHT_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if format := os.Getenv("FORESIGHT_LOG_FORMAT"); format != "" {
		cfg.LogFormat = format
	}
	if entity := os.Getenv("FORESIGHT_ENTITY_ID"); entity != "" {
		cfg.EntityID = entity
	}
	if addr := os.Getenv("FORESIGHT_METRICS_ADDR"); addr != "" {
		cfg.MetricsAddr = addr
	}

	cfg.MinimumSamples = envInt("FORESIGHT_MINIMUM_SAMPLES", cfg.MinimumSamples)
	cfg.Alpha = envFloat("FORESIGHT_ALPHA", cfg.Alpha)
	cfg.CrossingGate = envFloat("FORESIGHT_CROSSING_GATE", cfg.CrossingGate)
	cfg.MaxLookahead = envDuration("FORESIGHT_MAX_LOOKAHEAD", cfg.MaxLookahead)
	cfg.Lookback = envDuration("FORESIGHT_LOOKBACK", cfg.Lookback)
	cfg.CacheTTL = envDuration("FORESIGHT_CACHE_TTL", cfg.CacheTTL)
	cfg.SampleInterval = envDuration("FORESIGHT_SAMPLE_INTERVAL", cfg.SampleInterval)
	cfg.SweepInterval = envDuration("FORESIGHT_SWEEP_INTERVAL", cfg.SweepInterval)
	cfg.Retention = envDuration("FORESIGHT_RETENTION", cfg.Retention)

	return cfg
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("Invalid integer env var, using default")
		return fallback
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("Invalid float env var, using default")
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("Invalid duration env var, using default")
		return fallback
	}
	return v
}
