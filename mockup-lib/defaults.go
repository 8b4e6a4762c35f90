// ABOUTME: Default implementations for library dependencies
// ABOUTME: Provides factory functions for creating default service implementations

package mockup

import (
	"time"

	"mockups-app-api/core/interfaces"
	"mockups-app-api/infrastructure/cache/memory"
	httpInfra "mockups-app-api/infrastructure/http/standard"
	logrusInfra "mockups-app-api/infrastructure/logger/logrus"
	"mockups-app-api/infrastructure/model/gemini"
)

// DefaultHTTPClient creates a default HTTP client sized for model calls
func DefaultHTTPClient() interfaces.HTTPClient {
	return httpInfra.NewStandardHTTPClient(90 * time.Second)
}

// DefaultMemoryCache creates a default in-memory cache
func DefaultMemoryCache() interfaces.Cache {
	return memory.NewMemoryCache()
}

// DefaultLogger creates a JSON logger writing to stdout at info level
func DefaultLogger() interfaces.Logger {
	return logrusInfra.NewLogger(logrusInfra.Config{Level: "info"})
}

// QuietLogger creates a logger that discards all output
func QuietLogger() interfaces.Logger {
	return interfaces.NopLogger{}
}

// DefaultModel creates the Gemini client used when only an API key is configured
func DefaultModel(httpClient interfaces.HTTPClient, apiKey string) (interfaces.ModelClient, error) {
	return gemini.NewClient(httpClient, apiKey)
}

// WithDefaultDependencies fills any dependency still unset with its default
func WithDefaultDependencies() Option {
	return func(c *Config) error {
		if c.HTTPClient == nil {
			c.HTTPClient = DefaultHTTPClient()
		}
		if c.Cache == nil {
			c.Cache = DefaultMemoryCache()
		}
		if c.Logger == nil {
			c.Logger = DefaultLogger()
		}
		return nil
	}
}

// WithQuietMode configures the client to suppress all log output
func WithQuietMode() Option {
	return func(c *Config) error {
		c.Logger = QuietLogger()
		return nil
	}
}
