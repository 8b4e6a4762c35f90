// ABOUTME: Patch domain model for the restricted-grammar HTML patch engine
// ABOUTME: Patch kinds form a closed set; unknown kinds decode to PatchUnknown and are skipped

package domain

import (
	"encoding/json"
	"strings"
)

// PatchType enumerates the supported patch kinds
type PatchType int

const (
	// PatchUnknown is any kind the engine does not support
	PatchUnknown PatchType = iota

	// PatchCSSFix merges inline CSS into every matching element
	PatchCSSFix

	// PatchAddElement inserts a structural fragment after the first match
	PatchAddElement

	// PatchRemoveElement removes exactly one matching element
	PatchRemoveElement
)

var patchTypeNames = map[PatchType]string{
	PatchCSSFix:        "css_fix",
	PatchAddElement:    "add_element",
	PatchRemoveElement: "remove_element",
}

// String returns the wire name of the patch type
func (t PatchType) String() string {
	if name, ok := patchTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParsePatchType maps a wire name to a PatchType
func ParsePatchType(s string) PatchType {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range patchTypeNames {
		if name == s {
			return t
		}
	}
	return PatchUnknown
}

// MarshalJSON encodes the patch type as its wire name
func (t PatchType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a wire name; unrecognised names become PatchUnknown
func (t *PatchType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParsePatchType(s)
	return nil
}

// Patch is a single edit requested by the patch pass
type Patch struct {
	Type     PatchType `json:"type"`
	Selector string    `json:"selector"`
	Value    string    `json:"value,omitempty"`
}
