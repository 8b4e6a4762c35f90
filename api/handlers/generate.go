// ABOUTME: Generation handler running the five-phase mockup pipeline for one page
// ABOUTME: Accepts a base64 screenshot plus markdown and returns the mockup HTML with run metadata

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"mockups-app-api/api/dto/mappers"
	"mockups-app-api/api/dto/requests"
	"mockups-app-api/api/dto/responses"
	"mockups-app-api/api/middleware"
	"mockups-app-api/core/domain"
	"mockups-app-api/core/errors"
	"mockups-app-api/core/interfaces"
	"mockups-app-api/core/pipeline"
)

const (
	// GenerateMaxBodyBytes admits large base64 screenshots; the server middleware may cap lower
	GenerateMaxBodyBytes = 32 << 20

	generateBodyReadTimeout = 30 * time.Second
)

// MockupGenerator runs the pipeline; *pipeline.Generator satisfies it
type MockupGenerator interface {
	Generate(ctx context.Context, req domain.GenerateRequest, progress pipeline.ProgressFunc) *domain.PipelineResult
}

// GenerateHandler handles mockup generation
type GenerateHandler struct {
	generator MockupGenerator
	logger    interfaces.Logger
}

// NewGenerateHandler creates a new generation handler
func NewGenerateHandler(generator MockupGenerator, logger interfaces.Logger) *GenerateHandler {
	return &GenerateHandler{
		generator: generator,
		logger:    logger,
	}
}

// RegisterRoutes registers generation routes
func (h *GenerateHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "generateMockup",
		Method:      http.MethodPost,
		Path:        "/generate",
		Summary:     "Generate mockup",
		Description: "Builds a self-contained HTML mockup from a screenshot and page markdown. Budget exhaustion returns the best document so far with truncated set.",
		Tags:        []string{"Mockups"},

		MaxBodyBytes:    GenerateMaxBodyBytes,
		BodyReadTimeout: generateBodyReadTimeout,
	}, h.Generate)
}

// GenerateInput defines the input for mockup generation
type GenerateInput struct {
	Body requests.GenerateRequest
}

// GenerateOutput defines the output for mockup generation
type GenerateOutput struct {
	Body responses.GenerateResponse
}

// Generate handles the POST /generate endpoint
func (h *GenerateHandler) Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error) {
	if len(input.Body.Screenshot) == 0 {
		return nil, toHumaError(&errors.ValidationError{Field: "screenshot", Message: "screenshot is required"})
	}

	requestID := middleware.RequestIDFromContext(ctx)
	progress := func(phase domain.Phase, message string) {
		if h.logger == nil {
			return
		}
		h.logger.Debug("Generation progress", map[string]interface{}{
			"request_id": requestID,
			"phase":      phase.String(),
			"message":    message,
		})
	}

	result := h.generator.Generate(ctx, mappers.ToGenerateRequest(&input.Body), progress)
	if result == nil {
		return nil, huma.Error500InternalServerError("Generation produced no result")
	}

	output := &GenerateOutput{}
	output.Body = *mappers.ToGenerateResponse(result)
	return output, nil
}
