// ABOUTME: Mappers for converting between domain models and API DTOs
// ABOUTME: Provides clean separation between the pipeline and the API layer

package mappers

import (
	"mockups-app-api/api/dto/requests"
	"mockups-app-api/api/dto/responses"
	"mockups-app-api/core/domain"
	"mockups-app-api/core/patch"
)

// ToGenerateRequest converts a request DTO to a domain pipeline request
func ToGenerateRequest(req *requests.GenerateRequest) domain.GenerateRequest {
	if req == nil {
		return domain.GenerateRequest{}
	}
	return domain.GenerateRequest{
		Screenshot: req.Screenshot,
		Markdown:   req.Markdown,
		PageURL:    req.PageURL,
		Hints:      ToElementHints(req.Hints),
	}
}

// ToElementHints converts hint DTOs; nil stays nil
func ToElementHints(h *requests.HintsRequest) *domain.ElementHints {
	if h == nil {
		return nil
	}
	hints := &domain.ElementHints{
		SectionNames: h.SectionNames,
		ImageURLs:    h.ImageURLs,
	}
	for _, o := range h.Overlays {
		hints.Overlays = append(hints.Overlays, domain.OverlayDescriptor{
			Type:        o.Type,
			CSSHint:     o.CSSHint,
			Description: o.Description,
		})
	}
	return hints
}

// ToGenerateResponse converts a pipeline result to its DTO
func ToGenerateResponse(res *domain.PipelineResult) *responses.GenerateResponse {
	if res == nil {
		return nil
	}
	return &responses.GenerateResponse{
		RunID:            res.RunID,
		HTML:             res.HTML,
		PhaseReached:     res.PhaseReached.String(),
		APICalls:         res.APICalls,
		ElapsedMS:        res.Elapsed.Milliseconds(),
		SectionsRefined:  res.SectionsRefined,
		SectionsRejected: res.SectionsRejected,
		PatchesApplied:   res.PatchesApplied,
		OverlaysRemoved:  res.OverlaysRemoved,
		Truncated:        res.Truncated,
	}
}

// ToSegmentResponse converts sections to their DTO
func ToSegmentResponse(sections []domain.Section) *responses.SegmentResponse {
	out := &responses.SegmentResponse{Sections: make([]responses.SectionResponse, 0, len(sections))}
	for _, s := range sections {
		out.Sections = append(out.Sections, responses.SectionResponse{
			ID:        s.ID,
			Name:      s.Name,
			Markdown:  s.Markdown,
			CharRatio: s.CharRatio,
		})
	}
	return out
}

// ToPatches converts patch DTOs; unknown kinds become PatchUnknown and are skipped by the engine
func ToPatches(in []requests.PatchRequest) []domain.Patch {
	out := make([]domain.Patch, 0, len(in))
	for _, p := range in {
		out = append(out, domain.Patch{
			Type:     domain.ParsePatchType(p.Type),
			Selector: p.Selector,
			Value:    p.Value,
		})
	}
	return out
}

// ToApplyPatchesResponse converts a patched document and its report
func ToApplyPatchesResponse(html string, report patch.Report) *responses.ApplyPatchesResponse {
	out := &responses.ApplyPatchesResponse{
		HTML:     html,
		Applied:  report.Applied,
		Skipped:  report.Skipped,
		Outcomes: make([]responses.PatchOutcomeResponse, 0, len(report.Outcomes)),
	}
	for _, o := range report.Outcomes {
		out.Outcomes = append(out.Outcomes, responses.PatchOutcomeResponse{
			Index:    o.Index,
			Type:     o.Type.String(),
			Selector: o.Selector,
			Applied:  o.Applied,
			Reason:   o.Reason,
		})
	}
	return out
}
