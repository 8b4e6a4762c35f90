// ABOUTME: Pipeline configuration for service-level control of budgets, thresholds and optional phases
// ABOUTME: Provides functional options independent of HTTP request structures

package config

import "time"

const (
	// DefaultVisionModel is used for screenshot and crop calls
	DefaultVisionModel = "gemini-2.0-flash"

	// DefaultTextModel is used for text-only content injection
	DefaultTextModel = "gemini-2.0-flash"
)

// PipelineConfig controls one generation run
type PipelineConfig struct {
	// WallClockBudget is the hard ceiling shared by the whole run
	WallClockBudget time.Duration

	// MaxAPICalls caps model calls per run, retries included
	MaxAPICalls int

	// SimilarityThreshold is the minimum token similarity for accepted edits
	SimilarityThreshold float64

	// ShortTextTokens is the token count below which similarity is exact equality
	ShortTextTokens int

	// MaxPatches caps the patch pass regardless of what the model returns
	MaxPatches int

	// ContainsMatchCap is the most elements a contains-selector css_fix may touch
	ContainsMatchCap int

	// CoverageThreshold is the minimum page share model boxes must cover
	CoverageThreshold float64

	// MaxRefineRetries is the shared retry pool for rejected section refinements
	MaxRefineRetries int

	// RetryBackoff is the fixed sleep before retrying a rate-limited or failed call
	RetryBackoff time.Duration

	// DesignCacheTTL is how long extracted design systems stay cached
	DesignCacheTTL time.Duration

	// VisionModel and TextModel name the models used for image and text calls
	VisionModel string
	TextModel   string
}

// DefaultPipelineConfig returns the production configuration
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		WallClockBudget:     120 * time.Second,
		MaxAPICalls:         20,
		SimilarityThreshold: 0.85,
		ShortTextTokens:     10,
		MaxPatches:          15,
		ContainsMatchCap:    5,
		CoverageThreshold:   0.8,
		MaxRefineRetries:    2,
		RetryBackoff:        2 * time.Second,
		DesignCacheTTL:      24 * time.Hour,
		VisionModel:         DefaultVisionModel,
		TextModel:           DefaultTextModel,
	}
}

// PipelineOption is a functional option for configuring a run
type PipelineOption func(*PipelineConfig)

// WithBudget sets the wall-clock ceiling and API call cap
func WithBudget(wallClock time.Duration, maxCalls int) PipelineOption {
	return func(c *PipelineConfig) {
		if wallClock > 0 {
			c.WallClockBudget = wallClock
		}
		if maxCalls > 0 {
			c.MaxAPICalls = maxCalls
		}
	}
}

// WithThresholds sets the similarity threshold and short-text cutoff
func WithThresholds(similarity float64, shortTextTokens int) PipelineOption {
	return func(c *PipelineConfig) {
		if similarity > 0 {
			c.SimilarityThreshold = similarity
		}
		if shortTextTokens > 0 {
			c.ShortTextTokens = shortTextTokens
		}
	}
}

// WithPatchLimits sets the patch cap and the contains-selector match cap
func WithPatchLimits(maxPatches, containsMatchCap int) PipelineOption {
	return func(c *PipelineConfig) {
		if maxPatches > 0 {
			c.MaxPatches = maxPatches
		}
		if containsMatchCap > 0 {
			c.ContainsMatchCap = containsMatchCap
		}
	}
}

// WithCoverageThreshold sets the minimum box coverage
func WithCoverageThreshold(coverage float64) PipelineOption {
	return func(c *PipelineConfig) {
		if coverage > 0 && coverage <= 1 {
			c.CoverageThreshold = coverage
		}
	}
}

// WithRefineRetries sets the shared retry pool size for section refinement
func WithRefineRetries(n int) PipelineOption {
	return func(c *PipelineConfig) {
		if n >= 0 {
			c.MaxRefineRetries = n
		}
	}
}

// WithRetryBackoff sets the fixed retry sleep
func WithRetryBackoff(d time.Duration) PipelineOption {
	return func(c *PipelineConfig) {
		if d >= 0 {
			c.RetryBackoff = d
		}
	}
}

// WithDesignCacheTTL sets how long design systems stay cached
func WithDesignCacheTTL(ttl time.Duration) PipelineOption {
	return func(c *PipelineConfig) {
		if ttl > 0 {
			c.DesignCacheTTL = ttl
		}
	}
}

// WithModels sets the vision and text model names
func WithModels(vision, text string) PipelineOption {
	return func(c *PipelineConfig) {
		if vision != "" {
			c.VisionModel = vision
		}
		if text != "" {
			c.TextModel = text
		}
	}
}

// NewPipelineConfig creates a configuration with the given options
func NewPipelineConfig(opts ...PipelineOption) PipelineConfig {
	config := DefaultPipelineConfig()

	for _, opt := range opts {
		opt(&config)
	}

	return config
}
