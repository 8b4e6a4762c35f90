// ABOUTME: Main entry point for the Mockups API server
// ABOUTME: Wires together all components and starts the HTTP server

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mockups-app-api/api"
	"mockups-app-api/api/handlers"
	"mockups-app-api/api/middleware"
	"mockups-app-api/core/interfaces"
	"mockups-app-api/core/pipeline"
	"mockups-app-api/core/ratelimit"
	"mockups-app-api/infrastructure/cache/memory"
	"mockups-app-api/infrastructure/cache/redis"
	stdhttp "mockups-app-api/infrastructure/http/standard"
	logruslogger "mockups-app-api/infrastructure/logger/logrus"
	"mockups-app-api/infrastructure/model/gemini"
	"mockups-app-api/pkg/config"
	"mockups-app-api/pkg/featureflags"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logruslogger.NewLogger(logruslogger.Config{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	defer logger.Close()

	flags := featureflags.NewEnvManager("FEATURE_")
	ctx := featureflags.WithManager(context.Background(), flags)

	logger.Info("Starting Mockups API", map[string]interface{}{
		"port":       cfg.Server.Port,
		"cache_type": cfg.Cache.Type,
		"flags":      flags.GetAllFlags(),
	})

	cache := newCache(ctx, cfg, logger)

	httpClient := stdhttp.NewStandardHTTPClient(
		cfg.Model.Timeout,
		stdhttp.WithTransport(middleware.NewLoggingRoundTripper(http.DefaultTransport, logger)),
	)

	deps := interfaces.Dependencies{
		Cache:      cache,
		HTTPClient: httpClient,
		Logger:     logger,
	}

	if cfg.Model.APIKey != "" {
		opts := []gemini.Option{gemini.WithModel(cfg.Model.VisionModel)}
		if cfg.Model.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.Model.BaseURL))
		}
		model, err := gemini.NewClient(httpClient, cfg.Model.APIKey, opts...)
		if err != nil {
			log.Fatalf("Failed to create model client: %v", err)
		}
		deps.Model = model
	} else {
		logger.Warn("GEMINI_API_KEY not set, generation will use local fallbacks only", nil)
	}

	limiter := ratelimit.New(cfg.RateLimit.LimiterConfig(), logger)
	generator := pipeline.New(deps, limiter, cfg.PipelineOptions()...)

	apiConfig := api.APIConfig{
		Logger:       logger,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Flags:        flags,
	}
	if flags.IsEnabled(ctx, featureflags.RateLimitEnabled) {
		apiConfig.RequestsPerSecond = cfg.Server.RequestsPerSecond
		apiConfig.Burst = cfg.Server.Burst
	}
	humaAPI, router := api.NewAPIWithMiddleware(apiConfig)

	handlers.NewGenerateHandler(generator, logger).RegisterRoutes(humaAPI)
	handlers.NewSegmentHandler().RegisterRoutes(humaAPI)
	handlers.NewPatchHandler(logger, cfg.Pipeline.ContainsMatchCap).RegisterRoutes(humaAPI)

	// Generation may take the whole wall-clock budget
	writeTimeout := generator.Config().WallClockBudget + 30*time.Second

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", map[string]interface{}{
			"address":       srv.Addr,
			"write_timeout": writeTimeout.String(),
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if closer, ok := cache.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	logger.Info("Server stopped", nil)
}

// newCache builds the configured backend, falling back to memory when Redis is unreachable
func newCache(ctx context.Context, cfg *config.Config, logger interfaces.Logger) interfaces.Cache {
	if !featureflags.IsEnabled(ctx, featureflags.CacheEnabled) {
		logger.Info("Cache disabled by feature flag", nil)
		return nil
	}

	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := redis.NewRedisCache(cfg.Cache.Redis)
		if err != nil {
			logger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			return memory.NewMemoryCacheWithCleanup(cfg.Cache.Memory.CleanupInterval)
		}
		logger.Info("Using Redis cache", map[string]interface{}{
			"address": cfg.Cache.Redis.Address,
		})
		return redisCache
	default:
		logger.Info("Using memory cache", nil)
		return memory.NewMemoryCacheWithCleanup(cfg.Cache.Memory.CleanupInterval)
	}
}

func init() {
	fmt.Println(`
    __  ___            __                        ___    ____  ____
   /  |/  /___  _____/ /____  ______  _____   /   |  / __ \/  _/
  / /|_/ / __ \/ ___/ //_/ / / / __ \/ ___/  / /| | / /_/ // /
 / /  / / /_/ / /__/ ,< / /_/ / /_/ (__  )  / ___ |/ ____// /
/_/  /_/\____/\___/_/|_|\__,_/ .___/____/  /_/  |_/_/   /___/
                            /_/
	`)
}
