// ABOUTME: Section and bounding-box domain models shared by the segmenter, cropper and pipeline
// ABOUTME: Sections are positional slices of page markdown; boxes locate them on the screenshot

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SectionIDPrefix is the prefix of every positional section identifier
const SectionIDPrefix = "sec_"

const (
	// SlotAttr marks an element as a named, protected content region
	SlotAttr = "data-slot"

	// SectionAttr carries the positional section id on a <section> block
	SectionAttr = "data-section"
)

// IsReservedAttr reports whether an attribute must never be edited by patches
func IsReservedAttr(name string) bool {
	name = strings.ToLower(name)
	return name == SlotAttr || name == SectionAttr
}

// Section is one labeled slice of the source markdown
type Section struct {
	// ID is the stable positional identifier ("sec_N")
	ID string `json:"section_id"`

	// Name is a short human label derived from the nearest heading; names may repeat
	Name string `json:"name"`

	// Markdown is the source text owned by this section
	Markdown string `json:"markdown"`

	// CharRatio is this section's share of all source characters
	CharRatio float64 `json:"char_ratio"`
}

// RawBox is a bounding box as reported by the model, before any normalization
type RawBox struct {
	Name   string  `json:"name"`
	YStart float64 `json:"y_start_pct"`
	YEnd   float64 `json:"y_end_pct"`
}

// NormalizedBox is a validated vertical band of the page, both bounds in [0,1]
type NormalizedBox struct {
	SectionID string  `json:"section_id"`
	Name      string  `json:"name"`
	YStart    float64 `json:"y_start_pct"`
	YEnd      float64 `json:"y_end_pct"`
}

// Height returns the fraction of the page covered by the box
func (b NormalizedBox) Height() float64 {
	return b.YEnd - b.YStart
}

// SectionID formats the positional identifier for index i
func SectionID(i int) string {
	return fmt.Sprintf("%s%d", SectionIDPrefix, i)
}

// SectionIndex parses a positional identifier back into its index
func SectionIndex(id string) (int, bool) {
	if !strings.HasPrefix(id, SectionIDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, SectionIDPrefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Placeholder returns the skeleton placeholder token for a section id
func Placeholder(sectionID string) string {
	return "{{" + sectionID + "}}"
}
