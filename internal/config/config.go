package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

type Config struct {
	AppEnv   string
	Port     int
	Upstream UpstreamConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Social   SocialConfig
	Payments PaymentsConfig
	Filecoin FilecoinConfig
	Activity ActivityConfig
	Limits   RateLimitConfig
	// WarmupInterval of zero disables the metadata warm-up worker.
	WarmupInterval time.Duration
}

type UpstreamConfig struct {
	BaseURL      string
	PublicOrigin string
	FetchTimeout time.Duration
	// RateLimitRPS throttles calls to the backend. Zero disables it.
	RateLimitRPS float64
}

type CacheConfig struct {
	Backend          string
	BatchConcurrency int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SocialConfig struct {
	HubURL string
}

type PaymentsConfig struct {
	RPCURL string
}

type FilecoinConfig struct {
	Network string
	CDNBase string
}

type ActivityConfig struct {
	Driver string
	DSN    string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	appEnv := getEnv("APP_ENV", "development")
	defaultBase := "http://localhost:8080"
	if appEnv == "production" {
		defaultBase = "https://api.versions.app"
	}

	cfg := &Config{
		AppEnv: appEnv,
		Port:   getIntEnv("RELAY_PORT", 8080),
		Upstream: UpstreamConfig{
			BaseURL:      getEnv("VERSIONS_API_BASE", defaultBase),
			PublicOrigin: getEnv("PUBLIC_ORIGIN", "http://localhost:3000"),
			FetchTimeout: time.Duration(getIntEnv("FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
			RateLimitRPS: getFloatEnv("UPSTREAM_RATE_LIMIT_RPS", 0),
		},
		Cache: CacheConfig{
			Backend:          getEnv("CACHE_BACKEND", CacheBackendMemory),
			BatchConcurrency: getIntEnv("BATCH_CONCURRENCY", 8),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Social: SocialConfig{
			HubURL: getEnv("SOCIAL_HUB_URL", ""),
		},
		Payments: PaymentsConfig{
			RPCURL: getEnv("PAYMENTS_RPC_URL", ""),
		},
		Filecoin: FilecoinConfig{
			Network: getEnv("FILECOIN_NETWORK", "calibration"),
			CDNBase: getEnv("FILECOIN_CDN_BASE", "https://cdn.filecoin.io"),
		},
		Activity: ActivityConfig{
			Driver: getEnv("ACTIVITY_DB_DRIVER", DBDriverSQLite),
			DSN:    getEnv("ACTIVITY_DB_DSN", "file:relay.db"),
		},
		Limits: RateLimitConfig{
			RequestsPerSecond: getFloatEnv("RATE_LIMIT_RPS", 5),
			Burst:             getIntEnv("RATE_LIMIT_BURST", 20),
		},
		WarmupInterval: time.Duration(getIntEnv("WARMUP_INTERVAL_MINUTES", 30)) * time.Minute,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid RELAY_PORT %d", c.Port)
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("VERSIONS_API_BASE must not be empty")
	}
	if c.Upstream.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT_SECONDS must be positive")
	}
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	}
	switch c.Activity.Driver {
	case DBDriverSQLite, DBDriverPostgres:
	default:
		return fmt.Errorf("unknown ACTIVITY_DB_DRIVER %q", c.Activity.Driver)
	}
	if c.Cache.BatchConcurrency < 0 {
		return fmt.Errorf("BATCH_CONCURRENCY must not be negative")
	}
	if c.Upstream.RateLimitRPS < 0 {
		return fmt.Errorf("UPSTREAM_RATE_LIMIT_RPS must not be negative")
	}
	if c.WarmupInterval < 0 {
		return fmt.Errorf("WARMUP_INTERVAL_MINUTES must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Addr is the listen address for the relay server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
