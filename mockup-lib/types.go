// ABOUTME: Public types for the Mockups library API
// ABOUTME: Provides user-friendly types that wrap internal domain models

package mockup

import (
	"time"

	"mockups-app-api/core/domain"
	"mockups-app-api/core/patch"
)

// Result describes one finished generation run
type Result struct {
	RunID            string        `json:"run_id"`
	HTML             string        `json:"html"`
	PhaseReached     string        `json:"phase_reached"`
	APICalls         int           `json:"api_calls"`
	Elapsed          time.Duration `json:"elapsed"`
	SectionsRefined  int           `json:"sections_refined"`
	SectionsRejected int           `json:"sections_rejected"`
	PatchesApplied   int           `json:"patches_applied"`
	OverlaysRemoved  int           `json:"overlays_removed"`
	Truncated        bool          `json:"truncated"`
}

// Section is one positional slice of the page markdown
type Section struct {
	ID        string  `json:"section_id"`
	Name      string  `json:"name"`
	Markdown  string  `json:"markdown"`
	CharRatio float64 `json:"char_ratio"`
}

// Hints carries optional detections from earlier stages
type Hints struct {
	SectionNames []string  `json:"section_names,omitempty"`
	ImageURLs    []string  `json:"image_urls,omitempty"`
	Overlays     []Overlay `json:"overlays,omitempty"`
}

// Overlay identifies a popup or banner to remove from the result
type Overlay struct {
	Type        string `json:"type,omitempty"`
	CSSHint     string `json:"css_hint"`
	Description string `json:"description,omitempty"`
}

// Patch is one restricted-grammar edit; Type is css_fix, add_element or remove_element
type Patch struct {
	Type     string `json:"type"`
	Selector string `json:"selector"`
	Value    string `json:"value,omitempty"`
}

// PatchOutcome reports what happened to one patch
type PatchOutcome struct {
	Index    int    `json:"index"`
	Type     string `json:"type"`
	Selector string `json:"selector"`
	Applied  bool   `json:"applied"`
	Reason   string `json:"reason,omitempty"`
}

// PatchReport summarizes a patch batch
type PatchReport struct {
	Applied  int            `json:"applied"`
	Skipped  int            `json:"skipped"`
	Outcomes []PatchOutcome `json:"outcomes"`
}

// AsyncResult is delivered once for a background generation job
type AsyncResult struct {
	JobID  string
	Result *Result
	Err    error
}

func domainResultToPublic(r *domain.PipelineResult) *Result {
	if r == nil {
		return nil
	}
	return &Result{
		RunID:            r.RunID,
		HTML:             r.HTML,
		PhaseReached:     r.PhaseReached.String(),
		APICalls:         r.APICalls,
		Elapsed:          r.Elapsed,
		SectionsRefined:  r.SectionsRefined,
		SectionsRejected: r.SectionsRejected,
		PatchesApplied:   r.PatchesApplied,
		OverlaysRemoved:  r.OverlaysRemoved,
		Truncated:        r.Truncated,
	}
}

func domainSectionsToPublic(sections []domain.Section) []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = Section{ID: s.ID, Name: s.Name, Markdown: s.Markdown, CharRatio: s.CharRatio}
	}
	return out
}

func publicHintsToDomain(h *Hints) *domain.ElementHints {
	if h == nil {
		return nil
	}
	out := &domain.ElementHints{
		SectionNames: h.SectionNames,
		ImageURLs:    h.ImageURLs,
	}
	for _, o := range h.Overlays {
		out.Overlays = append(out.Overlays, domain.OverlayDescriptor{
			Type:        o.Type,
			CSSHint:     o.CSSHint,
			Description: o.Description,
		})
	}
	return out
}

func publicPatchesToDomain(patches []Patch) []domain.Patch {
	out := make([]domain.Patch, len(patches))
	for i, p := range patches {
		out[i] = domain.Patch{Type: domain.ParsePatchType(p.Type), Selector: p.Selector, Value: p.Value}
	}
	return out
}

func reportToPublic(r patch.Report) *PatchReport {
	out := &PatchReport{
		Applied:  r.Applied,
		Skipped:  r.Skipped,
		Outcomes: make([]PatchOutcome, len(r.Outcomes)),
	}
	for i, o := range r.Outcomes {
		out.Outcomes[i] = PatchOutcome{
			Index:    o.Index,
			Type:     o.Type.String(),
			Selector: o.Selector,
			Applied:  o.Applied,
			Reason:   o.Reason,
		}
	}
	return out
}
