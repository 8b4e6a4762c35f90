// ABOUTME: Contract for the external vision/text model consumed by the generation pipeline
// ABOUTME: Implementations must surface quota refusals as rate-limit errors

package interfaces

import "context"

// ModelOptions tunes a single model call
type ModelOptions struct {
	// Model overrides the implementation's default model name
	Model string

	// MaxOutputTokens caps the response length; 0 uses the implementation default
	MaxOutputTokens int

	// Temperature controls sampling; nil uses the implementation default
	Temperature *float64
}

// ModelClient performs vision and text-only analysis calls.
//
// Both methods return the raw model text. A quota refusal must be reported as
// an error for which errors.IsRateLimited returns true; any other failure is
// treated by callers as non-retryable.
type ModelClient interface {
	// AnalyzeImage sends an image (PNG/JPEG/WebP bytes) together with a prompt
	AnalyzeImage(ctx context.Context, image []byte, prompt string, opts ModelOptions) (string, error)

	// AnalyzeText sends context text together with a prompt
	AnalyzeText(ctx context.Context, contextText, prompt string, opts ModelOptions) (string, error)
}
