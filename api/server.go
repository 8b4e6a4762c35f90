// ABOUTME: Huma API server configuration and setup
// ABOUTME: Provides OpenAPI documentation and request/response validation

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"mockups-app-api/api/middleware"
	"mockups-app-api/core/interfaces"
	"mockups-app-api/pkg/featureflags"
)

const (
	apiTitle       = "Mockups API"
	apiVersion     = "1.0.0"
	apiDescription = "API for turning page screenshots and markdown into editable HTML mockups"
)

// APIConfig holds configuration for the API
type APIConfig struct {
	Logger interfaces.Logger

	// RequestsPerSecond and Burst configure the per-client limiter; 0 disables it
	RequestsPerSecond float64
	Burst             int

	// MaxBodyBytes caps request bodies; 0 leaves huma's per-operation limit
	MaxBodyBytes int64

	// Flags is placed in every request context when set
	Flags featureflags.Manager
}

func corsOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}
}

func humaConfig() huma.Config {
	config := huma.DefaultConfig(apiTitle, apiVersion)
	config.Info.Description = apiDescription
	return config
}

// NewAPI creates and configures a new Huma API instance
func NewAPI() (huma.API, chi.Router) {
	router := chi.NewRouter()
	router.Use(cors.New(corsOptions()).Handler)

	// The OpenAPI document is served at /openapi.json and the docs UI at /docs
	api := humachi.New(router, humaConfig())

	return api, router
}

// NewAPIWithMiddleware creates a new API with middleware configured
func NewAPIWithMiddleware(cfg APIConfig) (huma.API, chi.Router) {
	router := chi.NewRouter()

	// CORS first so preflight requests skip limits
	router.Use(cors.New(corsOptions()).Handler)
	router.Use(chimw.Recoverer)

	if cfg.Logger != nil {
		router.Use(middleware.RequestLoggingMiddleware(cfg.Logger))
	}

	if cfg.Flags != nil {
		router.Use(middleware.FeatureFlagsMiddleware(cfg.Flags))
	}

	if cfg.RequestsPerSecond > 0 {
		limiter := middleware.NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst)
		router.Use(middleware.RateLimitMiddleware(limiter))
	}

	if cfg.MaxBodyBytes > 0 {
		router.Use(chimw.RequestSize(cfg.MaxBodyBytes))
	}

	api := humachi.New(router, humaConfig())

	return api, router
}
