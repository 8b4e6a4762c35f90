// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package. These implementations handle external concerns
// such as caching, HTTP communication, logging and the model API.
//
// The infrastructure package is organized by technical concern:
//
// - cache/memory: In-memory cache backed by patrickmn/go-cache
// - cache/redis: Redis-based cache implementation
// - http/standard: Standard library HTTP client with retry logic
// - logger/logrus: Structured JSON logger with optional file rotation
// - model/gemini: Gemini generateContent client for vision and text calls
//
// # Cache Implementations
//
// Memory Cache Example:
//
//	cache := memory.NewMemoryCache()
//	err := cache.Set(ctx, "design:<sha256>", data, 24*time.Hour)
//	value, err := cache.Get(ctx, "design:<sha256>")
//
// Redis Cache Example:
//
//	cache, err := redis.NewRedisCache(config.RedisConfig{
//	    Address: "localhost:6379",
//	})
//
// # HTTP Client
//
// The HTTP client retries transient 5xx failures. A 429 is returned as-is so
// the model client can surface it as a rate-limit error:
//
//	client := standard.NewStandardHTTPClient(90 * time.Second)
//	resp, err := client.Post(ctx, url, bytes.NewReader(body))
//
// # Model Client
//
//	model, err := gemini.NewClient(client, apiKey, gemini.WithModel("gemini-2.0-flash"))
//	text, err := model.AnalyzeImage(ctx, png, prompt, interfaces.ModelOptions{})
//
// # Logger
//
//	logger := logrus.NewLogger(logrus.Config{Level: "info", File: "logs/mockups.log"})
//	logger.Info("Phase finished", map[string]interface{}{
//	    "run_id": runID,
//	    "phase":  "layout",
//	})
package infrastructure
