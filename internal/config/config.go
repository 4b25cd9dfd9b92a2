// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	MarketDBPath  string
	CacheDBPath   string
	LogLevel      string
	ScanSchedule  string
	Port          int
	QuoteCacheTTL int // minutes
	DevMode       bool

	// Off-site backup settings; backups are disabled unless a bucket
	// is configured.
	BackupSchedule string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnvAsInt("PORT", 8080),
		DevMode:       getEnvAsBool("DEV_MODE", false),
		MarketDBPath:  getEnv("MARKET_DB_PATH", "./data/market.db"),
		CacheDBPath:   getEnv("CACHE_DB_PATH", "./data/cache.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ScanSchedule:  getEnv("SCAN_SCHEDULE", "0 * * * *"), // hourly
		QuoteCacheTTL: getEnvAsInt("QUOTE_CACHE_TTL_MINUTES", 5),

		BackupSchedule: getEnv("BACKUP_SCHEDULE", "30 2 * * *"), // nightly
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", "ap-southeast-2"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.MarketDBPath == "" {
		return fmt.Errorf("MARKET_DB_PATH is required")
	}
	if c.CacheDBPath == "" {
		return fmt.Errorf("CACHE_DB_PATH is required")
	}
	if c.BackupsEnabled() && (c.S3AccessKey == "" || c.S3SecretKey == "") {
		return fmt.Errorf("S3 credentials required when S3_BUCKET is set")
	}
	return nil
}

// BackupsEnabled reports whether off-site backups are configured
func (c *Config) BackupsEnabled() bool {
	return c.S3Bucket != ""
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
