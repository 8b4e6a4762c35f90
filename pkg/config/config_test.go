package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "mockups-app-api/core/config"
)

// clearEnv blanks every variable LoadFromEnv reads so host settings cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "API_RPS", "API_BURST", "MAX_BODY_BYTES",
		"CACHE_TYPE", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "MEMORY_CACHE_CLEANUP",
		"GEMINI_API_KEY", "GEMINI_BASE_URL", "VISION_MODEL", "TEXT_MODEL", "MODEL_TIMEOUT",
		"RPM_INITIAL", "RPM_MIN", "RPM_MAX", "RPM_STEP", "MAX_CONCURRENT",
		"WALL_CLOCK_BUDGET", "MAX_API_CALLS", "SIMILARITY_THRESHOLD", "SHORT_TEXT_TOKENS",
		"MAX_PATCHES", "CONTAINS_MATCH_CAP", "COVERAGE_THRESHOLD", "MAX_REFINE_RETRIES", "DESIGN_CACHE_TTL",
		"WORKER_COUNT", "WORKER_QUEUE_SIZE", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 15, cfg.RateLimit.InitialRPM)
	assert.Equal(t, 5, cfg.RateLimit.MinRPM)
	assert.Equal(t, 30, cfg.RateLimit.MaxRPM)
	assert.Equal(t, 5, cfg.RateLimit.Step)
	assert.Equal(t, 3, cfg.RateLimit.MaxConcurrent)
	assert.Equal(t, 120*time.Second, cfg.Pipeline.WallClockBudget)
	assert.Equal(t, 20, cfg.Pipeline.MaxAPICalls)
	assert.InDelta(t, 0.85, cfg.Pipeline.SimilarityThreshold, 1e-9)
	assert.Equal(t, 10, cfg.Pipeline.ShortTextTokens)
	assert.Equal(t, 15, cfg.Pipeline.MaxPatches)
	assert.Equal(t, 5, cfg.Pipeline.ContainsMatchCap)
	assert.InDelta(t, 0.8, cfg.Pipeline.CoverageThreshold, 1e-9)
	assert.Equal(t, 2, cfg.Pipeline.MaxRefineRetries)
	assert.Equal(t, coreconfig.DefaultVisionModel, cfg.Model.VisionModel)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("CACHE_TYPE", "redis")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("WALL_CLOCK_BUDGET", "45s")
	t.Setenv("MODEL_TIMEOUT", "30")
	t.Setenv("SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("RPM_MAX", "60")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("MAX_API_CALLS", "not-a-number")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, 4, cfg.Cache.Redis.DB)
	assert.Equal(t, 45*time.Second, cfg.Pipeline.WallClockBudget)
	assert.Equal(t, 30*time.Second, cfg.Model.Timeout)
	assert.InDelta(t, 0.9, cfg.Pipeline.SimilarityThreshold, 1e-9)
	assert.Equal(t, 60, cfg.RateLimit.MaxRPM)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 20, cfg.Pipeline.MaxAPICalls)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty port", func(c *Config) { c.Server.Port = "" }, "port"},
		{"bad cache type", func(c *Config) { c.Cache.Type = "sqlite" }, "cache type"},
		{"redis without address", func(c *Config) { c.Cache.Type = "redis"; c.Cache.Redis.Address = "" }, "redis address"},
		{"inverted rpm", func(c *Config) { c.RateLimit.MinRPM = 40 }, "RPM_MIN"},
		{"no concurrency", func(c *Config) { c.RateLimit.MaxConcurrent = 0 }, "concurrent"},
		{"no calls", func(c *Config) { c.Pipeline.MaxAPICalls = 0 }, "budget"},
		{"similarity above one", func(c *Config) { c.Pipeline.SimilarityThreshold = 1.5 }, "similarity"},
		{"zero coverage", func(c *Config) { c.Pipeline.CoverageThreshold = 0 }, "coverage"},
		{"no workers", func(c *Config) { c.Workers.Count = 0 }, "worker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := LoadFromEnv()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPipelineOptions(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_PATCHES", "7")
	t.Setenv("MAX_REFINE_RETRIES", "0")
	t.Setenv("TEXT_MODEL", "text-z")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	pc := coreconfig.NewPipelineConfig(cfg.PipelineOptions()...)
	assert.Equal(t, 7, pc.MaxPatches)
	assert.Equal(t, 0, pc.MaxRefineRetries)
	assert.Equal(t, "text-z", pc.TextModel)
	assert.Equal(t, 24*time.Hour, pc.DesignCacheTTL)
}

func TestLimiterConfig(t *testing.T) {
	rl := RateLimitConfig{InitialRPM: 10, MinRPM: 2, MaxRPM: 20, Step: 3, MaxConcurrent: 1}
	lc := rl.LimiterConfig()
	assert.Equal(t, 10, lc.InitialRPM)
	assert.Equal(t, 3, lc.Step)
	assert.Equal(t, 1, lc.MaxConcurrent)
}
