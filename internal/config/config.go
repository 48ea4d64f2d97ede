package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fadedpez/tucojack/internal/logging"
	"github.com/joho/godotenv"
)

// History backends
const (
	HistoryMemory = "memory"
	HistorySQLite = "sqlite"
)

// MaxDeckCount is the largest shoe a table deals from
const MaxDeckCount = 8

// Config holds all configuration for the application
type Config struct {
	// Table rules
	StartingBankroll   int64
	BetStep            int64
	DeckCount          int
	ReplenishThreshold int

	// ShuffleSeed fixes the shoe order when non-zero
	ShuffleSeed int64

	// Round history storage, always memory-only
	HistoryBackend string

	// Logging
	LogLevel logging.Level
	LogFile  string

	// Environment
	Environment string // "development" or "production"
}

// Default returns the table configuration used when nothing is set
func Default() *Config {
	return &Config{
		StartingBankroll:   500,
		BetStep:            5,
		DeckCount:          4,
		ReplenishThreshold: 20,
		HistoryBackend:     HistoryMemory,
		LogLevel:           logging.INFO,
		Environment:        "development",
	}
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, falling back to defaults
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := Default()
	var err error

	if cfg.StartingBankroll, err = int64Env(getenv, "STARTING_BANKROLL", cfg.StartingBankroll); err != nil {
		return nil, err
	}
	if cfg.BetStep, err = int64Env(getenv, "BET_STEP", cfg.BetStep); err != nil {
		return nil, err
	}
	if cfg.ShuffleSeed, err = int64Env(getenv, "SHUFFLE_SEED", cfg.ShuffleSeed); err != nil {
		return nil, err
	}

	deckCount, err := int64Env(getenv, "DECK_COUNT", int64(cfg.DeckCount))
	if err != nil {
		return nil, err
	}
	if deckCount < 1 || deckCount > MaxDeckCount {
		return nil, fmt.Errorf("DECK_COUNT must be between 1 and %d", MaxDeckCount)
	}
	cfg.DeckCount = int(deckCount)

	threshold, err := int64Env(getenv, "REPLENISH_THRESHOLD", int64(cfg.ReplenishThreshold))
	if err != nil {
		return nil, err
	}
	cfg.ReplenishThreshold = int(threshold)

	if level := getenv("LOG_LEVEL"); level != "" {
		if cfg.LogLevel, err = logging.ParseLevel(level); err != nil {
			return nil, err
		}
	}

	cfg.HistoryBackend = strings.ToLower(getEnvWithDefault(getenv, "HISTORY_BACKEND", cfg.HistoryBackend))
	cfg.LogFile = getenv("LOG_FILE")
	cfg.Environment = getEnvWithDefault(getenv, "ENVIRONMENT", cfg.Environment)

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the table rules are playable
func (c *Config) Validate() error {
	if c.StartingBankroll <= 0 {
		return fmt.Errorf("STARTING_BANKROLL must be positive")
	}
	if c.BetStep <= 0 {
		return fmt.Errorf("BET_STEP must be positive")
	}
	if c.DeckCount < 1 || c.DeckCount > MaxDeckCount {
		return fmt.Errorf("DECK_COUNT must be between 1 and %d", MaxDeckCount)
	}
	if c.ReplenishThreshold < 0 {
		return fmt.Errorf("REPLENISH_THRESHOLD cannot be negative")
	}
	if c.ReplenishThreshold >= c.DeckCount*52 {
		return fmt.Errorf("REPLENISH_THRESHOLD must be smaller than the shoe")
	}
	switch c.HistoryBackend {
	case HistoryMemory, HistorySQLite:
	default:
		return fmt.Errorf("HISTORY_BACKEND must be %q or %q", HistoryMemory, HistorySQLite)
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LogFormat returns readable text logs in development and JSON lines elsewhere
func (c *Config) LogFormat() logging.Format {
	if c.IsDevelopment() {
		return logging.TextFormat
	}
	return logging.JSONFormat
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func int64Env(getenv func(string) string, key string, defaultValue int64) (int64, error) {
	value := getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
