// ABOUTME: Pipeline request and result models for mockup generation runs
// ABOUTME: PipelineResult is built once at the end of a run and never mutated

package domain

import "time"

// Phase identifies how far a run progressed
type Phase int

const (
	PhaseNone Phase = iota - 1
	PhaseDesignSystem
	PhaseLayout
	PhaseContent
	PhaseRefinement
	PhasePatch
)

var phaseNames = map[Phase]string{
	PhaseNone:         "none",
	PhaseDesignSystem: "design_system",
	PhaseLayout:       "layout",
	PhaseContent:      "content",
	PhaseRefinement:   "refinement",
	PhasePatch:        "patch",
}

// String returns a short phase label for logs and spans
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// ElementHints carries optional detections from upstream stages
type ElementHints struct {
	// SectionNames lists section labels an upstream detector found, in page order
	SectionNames []string `json:"section_names,omitempty"`

	// ImageURLs lists known image URLs on the page
	ImageURLs []string `json:"image_urls,omitempty"`

	// Overlays lists popups already identified upstream
	Overlays []OverlayDescriptor `json:"overlays,omitempty"`
}

// GenerateRequest is the input of one pipeline run
type GenerateRequest struct {
	Screenshot []byte
	Markdown   string
	PageURL    string
	Hints      *ElementHints
}

// PipelineResult is the output of one pipeline run
type PipelineResult struct {
	RunID            string        `json:"run_id"`
	HTML             string        `json:"html"`
	PhaseReached     Phase         `json:"phase_reached"`
	APICalls         int           `json:"api_calls"`
	Elapsed          time.Duration `json:"elapsed"`
	SectionsRefined  int           `json:"sections_refined"`
	SectionsRejected int           `json:"sections_rejected"`
	PatchesApplied   int           `json:"patches_applied"`
	OverlaysRemoved  int           `json:"overlays_removed"`
	Truncated        bool          `json:"truncated"`
}
