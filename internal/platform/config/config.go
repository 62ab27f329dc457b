// Package config loads process configuration from an optional .env file and
// the environment. Invalid values are logged and replaced by their defaults.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"dividend_backend/internal/platform/db"
	"dividend_backend/internal/platform/externalapi/twelvedata"
	"dividend_backend/internal/platform/redis"
)

const (
	CacheBackendFile   = "file"
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"

	HistoryBackendFile = "file"
	HistoryBackendDB   = "db"
)

// Config is the parsed process configuration.
type Config struct {
	DataDir string

	CacheBackend   string
	CacheBypass    bool
	PriceExpiry    time.Duration
	DividendExpiry time.Duration

	FetchConcurrency int
	FetchTimeout     time.Duration
	DividendLookback time.Duration
	APIRateLimit     int // calls per minute, 0 disables limiting

	ProjectionMonths int
	TrendDays        int

	HistoryBackend string
	PortfolioFile  string

	HTTPAddr  string
	LogLevel  string
	LogFormat string

	DB         db.Config
	Redis      redis.Config
	TwelveData twelvedata.Config
}

// CacheDir is where the file cache backend keeps its entries.
func (c Config) CacheDir() string { return filepath.Join(c.DataDir, "cache") }

// HistoryDir is where the file history backend keeps snapshots.
func (c Config) HistoryDir() string { return filepath.Join(c.DataDir, "history") }

// Load reads .env (if present) and then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not found; using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	cfg := Config{
		DataDir:          getEnv("DATA_DIR", "data"),
		CacheBackend:     oneOf("CACHE_BACKEND", CacheBackendFile, CacheBackendFile, CacheBackendRedis, CacheBackendMemory),
		CacheBypass:      getEnvAsBool("CACHE_BYPASS", false),
		PriceExpiry:      getEnvAsDuration("PRICE_CACHE_EXPIRY", 15*time.Minute),
		DividendExpiry:   getEnvAsDuration("DIVIDEND_CACHE_EXPIRY", 24*time.Hour),
		FetchConcurrency: getEnvAsInt("FETCH_CONCURRENCY", 4),
		FetchTimeout:     getEnvAsDuration("FETCH_TIMEOUT", 2*time.Minute),
		DividendLookback: getEnvAsDuration("DIVIDEND_LOOKBACK", 2*365*24*time.Hour),
		APIRateLimit:     getEnvAsInt("API_RATE_LIMIT", 8),
		ProjectionMonths: getEnvAsInt("PROJECTION_MONTHS", 12),
		TrendDays:        getEnvAsInt("TREND_DAYS", 90),
		HistoryBackend:   oneOf("HISTORY_BACKEND", HistoryBackendFile, HistoryBackendFile, HistoryBackendDB),
		PortfolioFile:    getEnv("PORTFOLIO_FILE", filepath.Join("data", "portfolio.csv")),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		DB:               db.LoadConfigFromEnv(),
		Redis:            redis.LoadConfigFromEnv(),
		TwelveData:       twelvedata.LoadConfig(),
	}
	if cfg.FetchConcurrency < 1 {
		slog.Warn("FETCH_CONCURRENCY must be positive, using default", "value", cfg.FetchConcurrency, "default", 4)
		cfg.FetchConcurrency = 4
	}
	if cfg.ProjectionMonths < 1 {
		slog.Warn("PROJECTION_MONTHS must be positive, using default", "value", cfg.ProjectionMonths, "default", 12)
		cfg.ProjectionMonths = 12
	}
	if cfg.TrendDays < 1 {
		slog.Warn("TREND_DAYS must be positive, using default", "value", cfg.TrendDays, "default", 90)
		cfg.TrendDays = 90
	}
	if cfg.HistoryBackend == HistoryBackendDB && cfg.DB.Driver == db.DriverSQLite && cfg.DB.DSN == "" {
		cfg.DB.DSN = filepath.Join(cfg.DataDir, "history.db")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func getEnvAsBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("invalid boolean, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func oneOf(key, fallback string, allowed ...string) string {
	raw := strings.ToLower(getEnv(key, fallback))
	for _, a := range allowed {
		if raw == a {
			return raw
		}
	}
	slog.Warn("unsupported value, using default", "key", key, "value", raw, "default", fallback)
	return fallback
}
