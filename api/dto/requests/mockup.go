// ABOUTME: Request DTOs for mockup generation, segmentation and patch endpoints
// ABOUTME: Provides validation tags and default values for incoming requests

package requests

// GenerateRequest represents the request body for a full pipeline run
type GenerateRequest struct {
	// Screenshot is the full-page screenshot; JSON carries it base64-encoded
	Screenshot []byte `json:"screenshot" doc:"Base64-encoded PNG, JPEG or WebP full-page screenshot"`

	// Markdown is the page text extracted upstream
	Markdown string `json:"markdown" doc:"Page text as markdown"`

	// PageURL resolves relative image links
	PageURL string `json:"page_url,omitempty" doc:"Original page URL"`

	// Hints carries optional detections from upstream stages
	Hints *HintsRequest `json:"hints,omitempty" doc:"Optional upstream element hints"`
}

// HintsRequest mirrors domain.ElementHints with every field optional
type HintsRequest struct {
	SectionNames []string         `json:"section_names,omitempty" maxItems:"8" doc:"Section labels detected upstream, in page order"`
	ImageURLs    []string         `json:"image_urls,omitempty" maxItems:"50" doc:"Known image URLs on the page"`
	Overlays     []OverlayRequest `json:"overlays,omitempty" maxItems:"20" doc:"Popups already identified upstream"`
}

// OverlayRequest identifies one popup or banner to remove
type OverlayRequest struct {
	Type        string `json:"type,omitempty" doc:"Coarse kind such as cookie_banner"`
	CSSHint     string `json:"css_hint" minLength:"1" doc:"Class, id or class-like token locating the overlay"`
	Description string `json:"description,omitempty" doc:"Free text from the detector"`
}

// SegmentRequest represents the request body for a segmentation preview
type SegmentRequest struct {
	Markdown string `json:"markdown" doc:"Page text as markdown"`

	// MaxSections lowers the section cap; 0 keeps the default of 8
	MaxSections int `json:"max_sections,omitempty" minimum:"0" maximum:"8" doc:"Optional lower section cap"`
}

// ApplyPatchesRequest represents the request body for the standalone patch engine
type ApplyPatchesRequest struct {
	HTML    string         `json:"html" minLength:"1" doc:"Document to patch"`
	Patches []PatchRequest `json:"patches" maxItems:"50" doc:"Patches applied in order"`

	// ContainsMatchCap overrides the contains-selector css_fix cap
	ContainsMatchCap int `json:"contains_match_cap,omitempty" minimum:"0" doc:"Most elements a contains-selector css_fix may touch"`
}

// PatchRequest is one restricted-grammar patch
type PatchRequest struct {
	Type     string `json:"type" enum:"css_fix,add_element,remove_element" doc:"Patch kind"`
	Selector string `json:"selector" minLength:"1" doc:"Restricted CSS selector"`
	Value    string `json:"value,omitempty" doc:"Inline CSS for css_fix or a structural fragment for add_element"`
}
