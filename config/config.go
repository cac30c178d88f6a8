package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backends
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config represents the application configuration
type Config struct {
	// HTTP server
	Port string

	// Collection provider
	ProviderAPIKey    string
	ProviderBaseURL   string
	ProviderDatasetID string
	PollInterval      time.Duration
	PollMaxAttempts   int

	// Record store
	StoreBackend  string
	StoreCapacity int
	DataDir       string

	// Postgres configuration
	DatabaseURL      string
	DatabaseMaxConns int

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisKey             string
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr  string
	PageCacheTTL  time.Duration
	PageBlockTime time.Duration

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	pollInterval, _ := strconv.Atoi(getEnv("POLL_INTERVAL_SECONDS", "3"))
	pollMaxAttempts, _ := strconv.Atoi(getEnv("POLL_MAX_ATTEMPTS", "20"))
	storeCapacity, _ := strconv.Atoi(getEnv("STORE_CAPACITY", "100"))
	databaseMaxConns, _ := strconv.Atoi(getEnv("DATABASE_MAX_CONNS", "2"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	pageCacheTTL, _ := strconv.Atoi(getEnv("PAGE_CACHE_TTL_SECONDS", "300"))
	pageBlockTime, _ := strconv.Atoi(getEnv("PAGE_BLOCK_SECONDS", "60"))
	rateLimitRequests, _ := strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS", "100"))
	rateLimitWindow, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_MINUTES", "15"))

	return Config{
		Port:                 getEnv("PORT", "4000"),
		ProviderAPIKey:       os.Getenv("BRIGHTDATA_API_KEY"),
		ProviderBaseURL:      getEnv("BRIGHTDATA_BASE_URL", "https://api.brightdata.com"),
		ProviderDatasetID:    getEnv("BRIGHTDATA_DATASET_ID", "gd_l1villgoiiidt09ci"),
		PollInterval:         time.Duration(pollInterval) * time.Second,
		PollMaxAttempts:      pollMaxAttempts,
		StoreBackend:         getEnv("STORE_BACKEND", BackendFile),
		StoreCapacity:        storeCapacity,
		DataDir:              getEnv("DATA_DIR", "./data"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DatabaseMaxConns:     databaseMaxConns,
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisKey:             getEnv("REDIS_KEY", "scraped_data"),
		RedisStream:          os.Getenv("REDIS_STREAM"),
		RedisStreamMaxLength: redisStreamMaxLength,
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		PageCacheTTL:         time.Duration(pageCacheTTL) * time.Second,
		PageBlockTime:        time.Duration(pageBlockTime) * time.Second,
		RateLimitRequests:    rateLimitRequests,
		RateLimitWindow:      time.Duration(rateLimitWindow) * time.Minute,
		Environment:          getEnv("APP_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the service cannot run with
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be positive")
	}
	if c.PollMaxAttempts <= 0 {
		return fmt.Errorf("POLL_MAX_ATTEMPTS must be positive")
	}
	if c.StoreCapacity <= 0 {
		return fmt.Errorf("STORE_CAPACITY must be positive")
	}
	switch c.StoreBackend {
	case BackendFile, BackendSQLite:
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the %s backend", c.StoreBackend)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
