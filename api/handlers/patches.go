// ABOUTME: Patch handler exposing the restricted-grammar patch engine on its own
// ABOUTME: Reports per-patch outcomes so callers can see which patches were skipped and why

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"mockups-app-api/api/dto/mappers"
	"mockups-app-api/api/dto/requests"
	"mockups-app-api/api/dto/responses"
	"mockups-app-api/core/interfaces"
	"mockups-app-api/core/patch"
)

// PatchHandler handles standalone patch application
type PatchHandler struct {
	logger          interfaces.Logger
	defaultMatchCap int
}

// NewPatchHandler creates a new patch handler; matchCap <= 0 uses the engine default
func NewPatchHandler(logger interfaces.Logger, matchCap int) *PatchHandler {
	if matchCap <= 0 {
		matchCap = patch.DefaultContainsMatchCap
	}
	return &PatchHandler{
		logger:          logger,
		defaultMatchCap: matchCap,
	}
}

// RegisterRoutes registers patch routes
func (h *PatchHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "applyPatches",
		Method:      http.MethodPost,
		Path:        "/patches/apply",
		Summary:     "Apply patches",
		Description: "Applies css_fix, add_element and remove_element patches with the restricted selector grammar",
		Tags:        []string{"Patches"},
	}, h.ApplyPatches)
}

// ApplyPatchesInput defines the input for patch application
type ApplyPatchesInput struct {
	Body requests.ApplyPatchesRequest
}

// ApplyPatchesOutput defines the output for patch application
type ApplyPatchesOutput struct {
	Body responses.ApplyPatchesResponse
}

// ApplyPatches handles the POST /patches/apply endpoint
func (h *PatchHandler) ApplyPatches(ctx context.Context, input *ApplyPatchesInput) (*ApplyPatchesOutput, error) {
	matchCap := h.defaultMatchCap
	if input.Body.ContainsMatchCap > 0 {
		matchCap = input.Body.ContainsMatchCap
	}

	applier := patch.NewApplier(h.logger, patch.WithContainsMatchCap(matchCap))
	html, report := applier.Apply(input.Body.HTML, mappers.ToPatches(input.Body.Patches))

	output := &ApplyPatchesOutput{}
	output.Body = *mappers.ToApplyPatchesResponse(html, report)
	return output, nil
}
