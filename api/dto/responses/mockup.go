// ABOUTME: Response DTOs for mockup generation, segmentation and patch endpoints
// ABOUTME: Keeps wire names stable independent of the domain model

package responses

// GenerateResponse is the result of one pipeline run
type GenerateResponse struct {
	RunID            string `json:"run_id" doc:"Identifier of the run, also found in logs and traces"`
	HTML             string `json:"html" doc:"Generated mockup document"`
	PhaseReached     string `json:"phase_reached" doc:"Last phase completed"`
	APICalls         int    `json:"api_calls" doc:"Model calls spent"`
	ElapsedMS        int64  `json:"elapsed_ms" doc:"Wall-clock time spent"`
	SectionsRefined  int    `json:"sections_refined"`
	SectionsRejected int    `json:"sections_rejected"`
	PatchesApplied   int    `json:"patches_applied"`
	OverlaysRemoved  int    `json:"overlays_removed"`
	Truncated        bool   `json:"truncated" doc:"True when the budget stopped the run early"`
}

// SectionResponse is one segmented slice of the markdown
type SectionResponse struct {
	ID        string  `json:"section_id"`
	Name      string  `json:"name"`
	Markdown  string  `json:"markdown"`
	CharRatio float64 `json:"char_ratio"`
}

// SegmentResponse lists sections in page order
type SegmentResponse struct {
	Sections []SectionResponse `json:"sections"`
}

// PatchOutcomeResponse describes what happened to one patch
type PatchOutcomeResponse struct {
	Index    int    `json:"index"`
	Type     string `json:"type"`
	Selector string `json:"selector"`
	Applied  bool   `json:"applied"`
	Reason   string `json:"reason,omitempty"`
}

// ApplyPatchesResponse is the patched document and a per-patch report
type ApplyPatchesResponse struct {
	HTML     string                 `json:"html"`
	Applied  int                    `json:"applied"`
	Skipped  int                    `json:"skipped"`
	Outcomes []PatchOutcomeResponse `json:"outcomes"`
}
