// ABOUTME: Segmentation handler previewing how markdown splits into positional sections
// ABOUTME: Runs the segmenter locally without any model calls

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"mockups-app-api/api/dto/mappers"
	"mockups-app-api/api/dto/requests"
	"mockups-app-api/api/dto/responses"
	"mockups-app-api/core/segmenter"
)

// SegmentHandler handles segmentation previews
type SegmentHandler struct{}

// NewSegmentHandler creates a new segmentation handler
func NewSegmentHandler() *SegmentHandler {
	return &SegmentHandler{}
}

// RegisterRoutes registers segmentation routes
func (h *SegmentHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "segmentMarkdown",
		Method:      http.MethodPost,
		Path:        "/segment",
		Summary:     "Segment markdown",
		Description: "Splits page markdown into at most eight ordered, labeled sections",
		Tags:        []string{"Mockups"},
	}, h.Segment)
}

// SegmentInput defines the input for segmentation
type SegmentInput struct {
	Body requests.SegmentRequest
}

// SegmentOutput defines the output for segmentation
type SegmentOutput struct {
	Body responses.SegmentResponse
}

// Segment handles the POST /segment endpoint
func (h *SegmentHandler) Segment(ctx context.Context, input *SegmentInput) (*SegmentOutput, error) {
	var hints *segmenter.Hints
	if input.Body.MaxSections > 0 {
		hints = &segmenter.Hints{MaxSections: input.Body.MaxSections}
	}

	output := &SegmentOutput{}
	output.Body = *mappers.ToSegmentResponse(segmenter.Segment(input.Body.Markdown, hints))
	return output, nil
}
