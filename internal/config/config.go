// Package config loads application configuration from environment variables
// and an optional .env file, plus an optional YAML sector-mapping override.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tuanng17/coinfolio/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Redis    RedisConfig
	Refresh  RefreshConfig
	Query    QueryConfig
	LogEnv   string

	// Sectors classifies asset symbols for sector allocation. Defaults to
	// the built-in table, optionally overlaid from SECTORS_FILE.
	Sectors models.SectorMap
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string
	Port string
}

// UpstreamConfig holds the external portfolio backend configuration.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RedisConfig holds snapshot cache storage configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns the host:port address of the Redis server.
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// RefreshConfig holds polling configuration.
type RefreshConfig struct {
	// Interval between background refreshes. The dashboard polls every
	// 30 seconds; a failed cycle simply waits for the next tick.
	Interval time.Duration
	// CacheTTL bounds how long a persisted snapshot is served as stale
	// data. Zero keeps cached payloads indefinitely.
	CacheTTL time.Duration
}

// QueryConfig holds natural-language query proxy configuration.
type QueryConfig struct {
	// RatePerMinute caps queries forwarded to the LLM backend.
	RatePerMinute int
	Burst         int
}

// Load reads configuration from the environment. A .env file is honored
// when present but never required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", ""),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_URL", "http://localhost:8000"),
			Timeout: getDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		Refresh: RefreshConfig{
			Interval: getDuration("REFRESH_INTERVAL", 30*time.Second),
			CacheTTL: getDuration("CACHE_TTL", 0),
		},
		Query: QueryConfig{
			RatePerMinute: getInt("QUERY_RATE_PER_MINUTE", 10),
			Burst:         getInt("QUERY_BURST", 3),
		},
		LogEnv:  getEnv("LOG_ENV", getEnv("APP_ENV", "")),
		Sectors: models.DefaultSectorMap(),
	}

	if file := os.Getenv("SECTORS_FILE"); file != "" {
		if err := overlaySectors(cfg.Sectors, file); err != nil {
			return nil, fmt.Errorf("failed to load sectors file: %w", err)
		}
	}

	return cfg, nil
}

// overlaySectors merges a YAML symbol->sector mapping over the built-in
// table. Entries in the file win; absent symbols keep their defaults.
func overlaySectors(sectors models.SectorMap, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	overlay := make(map[string]string)
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("invalid sector mapping in %s: %w", file, err)
	}

	for symbol, sector := range overlay {
		sectors[symbol] = sector
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
