// File: /config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	JWTSecret   string `yaml:"jwt_secret"`
	LogLevel    string `yaml:"log_level"`

	// Analytics cache
	CacheBackend       string        `yaml:"cache_backend"` // "memory" or "redis"
	RedisURL           string        `yaml:"redis_url"`
	FuelCacheTTL       time.Duration `yaml:"fuel_cache_ttl"`
	EfficiencyCacheTTL time.Duration `yaml:"efficiency_cache_ttl"`
	CostCacheTTL       time.Duration `yaml:"cost_cache_ttl"`
	CacheSweepInterval time.Duration `yaml:"cache_sweep_interval"`

	// DefaultTankCapacity is used for motorcycles without a declared tank size, in liters.
	DefaultTankCapacity float64 `yaml:"default_tank_capacity"`

	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int `yaml:"rate_limit_burst"`
}

// Load reads .env (when present), then an optional YAML file named by
// CONFIG_FILE, then environment variables. Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Could not read .env file")
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:                "8080",
		DatabaseURL:         "user:password@tcp(localhost:3306)/motofuel?charset=utf8mb4&parseTime=True&loc=Local",
		JWTSecret:           "your-secret-key",
		LogLevel:            "info",
		CacheBackend:        "memory",
		RedisURL:            "redis://localhost:6379/0",
		FuelCacheTTL:        5 * time.Minute,
		EfficiencyCacheTTL:  10 * time.Minute,
		CostCacheTTL:        10 * time.Minute,
		CacheSweepInterval:  time.Minute,
		DefaultTankCapacity: 15,
		RateLimitPerMinute:  120,
		RateLimitBurst:      20,
	}
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.CacheBackend = getEnv("CACHE_BACKEND", c.CacheBackend)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.FuelCacheTTL = getDuration("FUEL_CACHE_TTL", c.FuelCacheTTL)
	c.EfficiencyCacheTTL = getDuration("EFFICIENCY_CACHE_TTL", c.EfficiencyCacheTTL)
	c.CostCacheTTL = getDuration("COST_CACHE_TTL", c.CostCacheTTL)
	c.CacheSweepInterval = getDuration("CACHE_SWEEP_INTERVAL", c.CacheSweepInterval)
	c.DefaultTankCapacity = getFloat("DEFAULT_TANK_CAPACITY", c.DefaultTankCapacity)
	c.RateLimitPerMinute = getInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.RateLimitBurst = getInt("RATE_LIMIT_BURST", c.RateLimitBurst)
}

func (c *Config) Validate() error {
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.CacheBackend)
	}
	if c.DefaultTankCapacity <= 0 {
		return fmt.Errorf("DEFAULT_TANK_CAPACITY must be positive, got %v", c.DefaultTankCapacity)
	}
	for name, ttl := range map[string]time.Duration{
		"FUEL_CACHE_TTL":       c.FuelCacheTTL,
		"EFFICIENCY_CACHE_TTL": c.EfficiencyCacheTTL,
		"COST_CACHE_TTL":       c.CostCacheTTL,
	} {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, ttl)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.WithField("key", key).Warnf("Invalid duration %q, using %s", value, defaultValue)
		return defaultValue
	}
	return d
}

func getFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.WithField("key", key).Warnf("Invalid number %q, using %v", value, defaultValue)
		return defaultValue
	}
	return f
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.WithField("key", key).Warnf("Invalid integer %q, using %d", value, defaultValue)
		return defaultValue
	}
	return n
}
