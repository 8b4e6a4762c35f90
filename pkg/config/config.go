// ABOUTME: Configuration management for the application with environment variable support
// ABOUTME: Defines configuration structures for server, cache, model, rate limiting, pipeline and logging

package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	coreconfig "mockups-app-api/core/config"
	"mockups-app-api/core/ratelimit"
)

// Config holds all application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig

	// Cache contains cache configuration
	Cache CacheConfig

	// Model contains the vision/text model client configuration
	Model ModelConfig

	// RateLimit contains the adaptive model call limiter configuration
	RateLimit RateLimitConfig

	// Pipeline contains per-run budgets and thresholds
	Pipeline PipelineConfig

	// Workers contains the background generation pool configuration
	Workers WorkerConfig

	// Log contains logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string

	// RequestsPerSecond is the per-client request rate allowed by the API
	RequestsPerSecond float64

	// Burst is the per-client burst size
	Burst int

	// MaxBodyBytes caps request bodies (base64 screenshots are large)
	MaxBodyBytes int64
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (redis/memory)
	Type string

	// Redis contains Redis-specific configuration
	Redis RedisConfig

	// Memory contains in-memory cache configuration
	Memory MemoryConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int
}

// MemoryConfig holds in-memory cache configuration
type MemoryConfig struct {
	// CleanupInterval is how often expired entries are purged
	CleanupInterval time.Duration
}

// ModelConfig holds model client configuration
type ModelConfig struct {
	// APIKey authenticates against the model API; empty runs local fallbacks only
	APIKey string

	// BaseURL overrides the model API endpoint
	BaseURL string

	// VisionModel and TextModel name the models per call kind
	VisionModel string
	TextModel   string

	// Timeout bounds a single HTTP call
	Timeout time.Duration
}

// RateLimitConfig holds adaptive limiter settings in requests per minute
type RateLimitConfig struct {
	InitialRPM    int
	MinRPM        int
	MaxRPM        int
	Step          int
	MaxConcurrent int
}

// PipelineConfig holds per-run budgets and thresholds
type PipelineConfig struct {
	WallClockBudget     time.Duration
	MaxAPICalls         int
	SimilarityThreshold float64
	ShortTextTokens     int
	MaxPatches          int
	ContainsMatchCap    int
	CoverageThreshold   float64
	MaxRefineRetries    int
	DesignCacheTTL      time.Duration
}

// WorkerConfig holds background pool settings
type WorkerConfig struct {
	Count     int
	QueueSize int
}

// LogConfig holds logging settings
type LogConfig struct {
	// Level is a logrus level name
	Level string

	// File enables rotating file output when set
	File string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnvOrDefault("PORT", "8000"),
			RequestsPerSecond: getEnvAsFloatOrDefault("API_RPS", 2),
			Burst:             getEnvAsIntOrDefault("API_BURST", 4),
			MaxBodyBytes:      int64(getEnvAsIntOrDefault("MAX_BODY_BYTES", 25*1024*1024)),
		},
		Cache: CacheConfig{
			Type: getEnvOrDefault("CACHE_TYPE", "memory"),
			Redis: RedisConfig{
				Address:  getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
			},
			Memory: MemoryConfig{
				CleanupInterval: getEnvAsDurationOrDefault("MEMORY_CACHE_CLEANUP", 10*time.Minute),
			},
		},
		Model: ModelConfig{
			APIKey:      getEnvOrDefault("GEMINI_API_KEY", ""),
			BaseURL:     getEnvOrDefault("GEMINI_BASE_URL", ""),
			VisionModel: getEnvOrDefault("VISION_MODEL", coreconfig.DefaultVisionModel),
			TextModel:   getEnvOrDefault("TEXT_MODEL", coreconfig.DefaultTextModel),
			Timeout:     getEnvAsDurationOrDefault("MODEL_TIMEOUT", 90*time.Second),
		},
		RateLimit: RateLimitConfig{
			InitialRPM:    getEnvAsIntOrDefault("RPM_INITIAL", 15),
			MinRPM:        getEnvAsIntOrDefault("RPM_MIN", 5),
			MaxRPM:        getEnvAsIntOrDefault("RPM_MAX", 30),
			Step:          getEnvAsIntOrDefault("RPM_STEP", 5),
			MaxConcurrent: getEnvAsIntOrDefault("MAX_CONCURRENT", 3),
		},
		Pipeline: PipelineConfig{
			WallClockBudget:     getEnvAsDurationOrDefault("WALL_CLOCK_BUDGET", 120*time.Second),
			MaxAPICalls:         getEnvAsIntOrDefault("MAX_API_CALLS", 20),
			SimilarityThreshold: getEnvAsFloatOrDefault("SIMILARITY_THRESHOLD", 0.85),
			ShortTextTokens:     getEnvAsIntOrDefault("SHORT_TEXT_TOKENS", 10),
			MaxPatches:          getEnvAsIntOrDefault("MAX_PATCHES", 15),
			ContainsMatchCap:    getEnvAsIntOrDefault("CONTAINS_MATCH_CAP", 5),
			CoverageThreshold:   getEnvAsFloatOrDefault("COVERAGE_THRESHOLD", 0.8),
			MaxRefineRetries:    getEnvAsIntOrDefault("MAX_REFINE_RETRIES", 2),
			DesignCacheTTL:      getEnvAsDurationOrDefault("DESIGN_CACHE_TTL", 24*time.Hour),
		},
		Workers: WorkerConfig{
			Count:     getEnvAsIntOrDefault("WORKER_COUNT", 2),
			QueueSize: getEnvAsIntOrDefault("WORKER_QUEUE_SIZE", 16),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
			File:  getEnvOrDefault("LOG_FILE", ""),
		},
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault returns the environment variable as float64 or a default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault accepts Go durations ("90s") or plain seconds
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}

	if c.Cache.Type != "redis" && c.Cache.Type != "memory" {
		return errors.New("cache type must be 'redis' or 'memory'")
	}

	if c.Cache.Type == "redis" && c.Cache.Redis.Address == "" {
		return errors.New("redis address cannot be empty when using redis cache")
	}

	if c.RateLimit.MinRPM < 1 || c.RateLimit.MaxRPM < c.RateLimit.MinRPM {
		return errors.New("rate limit requires 1 <= RPM_MIN <= RPM_MAX")
	}

	if c.RateLimit.MaxConcurrent < 1 {
		return errors.New("max concurrent model calls must be at least 1")
	}

	if c.Pipeline.WallClockBudget <= 0 || c.Pipeline.MaxAPICalls < 1 {
		return errors.New("pipeline budget must allow time and at least one api call")
	}

	if c.Pipeline.SimilarityThreshold <= 0 || c.Pipeline.SimilarityThreshold > 1 {
		return errors.New("similarity threshold must be in (0, 1]")
	}

	if c.Pipeline.CoverageThreshold <= 0 || c.Pipeline.CoverageThreshold > 1 {
		return errors.New("coverage threshold must be in (0, 1]")
	}

	if c.Workers.Count < 1 || c.Workers.QueueSize < 1 {
		return errors.New("worker count and queue size must be at least 1")
	}

	return nil
}

// LimiterConfig converts the rate limit section into limiter settings
func (c RateLimitConfig) LimiterConfig() ratelimit.Config {
	return ratelimit.Config{
		InitialRPM:    c.InitialRPM,
		MinRPM:        c.MinRPM,
		MaxRPM:        c.MaxRPM,
		Step:          c.Step,
		MaxConcurrent: c.MaxConcurrent,
	}
}

// PipelineOptions converts the pipeline section into generator options
func (c *Config) PipelineOptions() []coreconfig.PipelineOption {
	p := c.Pipeline
	return []coreconfig.PipelineOption{
		coreconfig.WithBudget(p.WallClockBudget, p.MaxAPICalls),
		coreconfig.WithThresholds(p.SimilarityThreshold, p.ShortTextTokens),
		coreconfig.WithPatchLimits(p.MaxPatches, p.ContainsMatchCap),
		coreconfig.WithCoverageThreshold(p.CoverageThreshold),
		coreconfig.WithRefineRetries(p.MaxRefineRetries),
		coreconfig.WithDesignCacheTTL(p.DesignCacheTTL),
		coreconfig.WithModels(c.Model.VisionModel, c.Model.TextModel),
	}
}
