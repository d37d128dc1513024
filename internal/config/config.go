// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string        // Base directory for the SQLite databases (always absolute)
	Port             int           // HTTP listen port
	LogLevel         string        // debug, info, warn, error
	DevMode          bool          // Pretty console logging, no response compression
	BenchmarkSymbol  string        // Market benchmark for beta/alpha (default ^GSPC)
	RiskFreeSymbol   string        // Treasury yield symbol for the risk-free rate (default ^TNX)
	RiskFreeFallback float64       // Annual risk-free rate used when the fetch fails
	LookbackPeriod   string        // Historical window for analysis (1mo, 3mo, 6mo, 1y, 2y, 5y, 10y)
	CacheTTL         time.Duration // How long fetched market data stays fresh
}

var validPeriods = map[string]bool{
	"1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "10y": true,
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FOLIOLENS_DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("FOLIOLENS_PORT", 8080),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		BenchmarkSymbol:  getEnv("BENCHMARK_SYMBOL", "^GSPC"),
		RiskFreeSymbol:   getEnv("RISK_FREE_SYMBOL", "^TNX"),
		RiskFreeFallback: getEnvAsFloat("RISK_FREE_FALLBACK", 0.04),
		LookbackPeriod:   getEnv("LOOKBACK_PERIOD", "1y"),
		CacheTTL:         time.Duration(getEnvAsInt("CACHE_TTL_MINUTES", 15)) * time.Minute,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and sane
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if !validPeriods[c.LookbackPeriod] {
		return fmt.Errorf("invalid lookback period: %s", c.LookbackPeriod)
	}

	if c.RiskFreeFallback < 0 || c.RiskFreeFallback > 1 {
		return fmt.Errorf("risk-free fallback must be a decimal rate, got %f", c.RiskFreeFallback)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
