// ABOUTME: Configuration options for the Mockups library client
// ABOUTME: Provides functional options pattern for flexible client configuration

package mockup

import (
	"time"

	coreconfig "mockups-app-api/core/config"
	"mockups-app-api/core/interfaces"
	"mockups-app-api/core/ratelimit"
	"mockups-app-api/core/workers"
	"mockups-app-api/pkg/featureflags"
)

// Option is a functional option for configuring the client
type Option func(*Config) error

// WithCache sets a custom cache implementation
func WithCache(cache interfaces.Cache) Option {
	return func(c *Config) error {
		c.Cache = cache
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client interfaces.HTTPClient) Option {
	return func(c *Config) error {
		c.HTTPClient = client
		return nil
	}
}

// WithLogger sets a custom logger
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithModel sets the vision/text model client directly
func WithModel(model interfaces.ModelClient) Option {
	return func(c *Config) error {
		c.Model = model
		return nil
	}
}

// WithAPIKey builds the default Gemini model client with key
func WithAPIKey(key string) Option {
	return func(c *Config) error {
		if key == "" {
			return NewError(ErrorTypeConfiguration, "api key must not be empty")
		}
		c.APIKey = key
		return nil
	}
}

// WithRateLimit sets the adaptive model call limiter configuration
func WithRateLimit(cfg ratelimit.Config) Option {
	return func(c *Config) error {
		c.RateLimit = cfg
		return nil
	}
}

// WithBudget bounds each run by wall-clock time and model calls
func WithBudget(wallClock time.Duration, maxCalls int) Option {
	return func(c *Config) error {
		if wallClock <= 0 || maxCalls <= 0 {
			return NewError(ErrorTypeConfiguration, "budget must be positive").
				WithContext("wall_clock", wallClock.String()).
				WithContext("max_calls", maxCalls)
		}
		c.PipelineOptions = append(c.PipelineOptions, coreconfig.WithBudget(wallClock, maxCalls))
		return nil
	}
}

// WithPipelineOptions passes raw pipeline options through
func WithPipelineOptions(opts ...coreconfig.PipelineOption) Option {
	return func(c *Config) error {
		c.PipelineOptions = append(c.PipelineOptions, opts...)
		return nil
	}
}

// WithFeatureFlags sets the manager consulted for optional phases
func WithFeatureFlags(manager featureflags.Manager) Option {
	return func(c *Config) error {
		c.Flags = manager
		return nil
	}
}

// WithWorkerConfig sets the worker pool configuration
func WithWorkerConfig(config workers.WorkerConfig) Option {
	return func(c *Config) error {
		c.WorkerConfig = config
		return nil
	}
}

// WithBackgroundProcessing enables or disables background processing
func WithBackgroundProcessing(enabled bool) Option {
	return func(c *Config) error {
		c.EnableBackgroundProcessing = enabled
		return nil
	}
}

// GenerateOption is a functional option for one generation call
type GenerateOption func(*GenerateOptions)

// GenerateOptions holds per-call settings
type GenerateOptions struct {
	PageURL  string
	Hints    *Hints
	Progress func(phase string, message string)
}

// WithPageURL resolves relative image links against url
func WithPageURL(url string) GenerateOption {
	return func(o *GenerateOptions) {
		o.PageURL = url
	}
}

// WithHints passes upstream detections to the run
func WithHints(h Hints) GenerateOption {
	return func(o *GenerateOptions) {
		o.Hints = &h
	}
}

// WithProgress receives the phase name and a short message as each phase starts
func WithProgress(fn func(phase string, message string)) GenerateOption {
	return func(o *GenerateOptions) {
		o.Progress = fn
	}
}

// defaultConfig returns the default client configuration
func defaultConfig() Config {
	return Config{
		RateLimit:                  ratelimit.DefaultConfig(),
		WorkerConfig:               workers.DefaultWorkerConfig(),
		EnableBackgroundProcessing: false,
	}
}
