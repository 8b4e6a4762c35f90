// Package interfaces defines the core interfaces used throughout the application.
// These interfaces allow for dependency injection and make the code testable.
package interfaces

import (
	"context"
	"time"
)

// Cache defines the interface for cache operations.
// Implementations can be Redis, in-memory, or any other caching solution.
// A miss is reported as a NotFoundError.
//
// Example usage:
//
//	// Store an extracted design system for a day
//	err := cache.Set(ctx, "design:"+hash, encoded, 24*time.Hour)
//
//	// Retrieve it on the next run for the same screenshot
//	data, err := cache.Get(ctx, "design:"+hash)
//	if err != nil {
//		// cache miss, call the model
//	}
//
//	// Drop it
//	err = cache.Delete(ctx, "design:"+hash)
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns the cached data as []byte or an error if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the given key and TTL.
	// If ttl is 0, the value should be stored indefinitely.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	// Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error
}