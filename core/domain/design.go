// ABOUTME: Design-system domain model extracted from the page screenshot in the first phase
// ABOUTME: Includes the hard-coded default used whenever extraction fails

package domain

import (
	"fmt"
	"strings"
)

// DesignSystem describes the visual language of the page being recreated
type DesignSystem struct {
	Colors     ColorPalette        `json:"colors"`
	Typography Typography          `json:"typography"`
	Spacing    Spacing             `json:"spacing"`
	Overlays   []OverlayDescriptor `json:"overlays"`
}

// ColorPalette holds CSS color values
type ColorPalette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

// Typography holds font choices
type Typography struct {
	HeadingFont string `json:"heading_font"`
	BodyFont    string `json:"body_font"`
	BaseSize    string `json:"base_size"`
	LineHeight  string `json:"line_height"`
}

// Spacing holds layout rhythm values
type Spacing struct {
	SectionPadding string `json:"section_padding"`
	ContentWidth   string `json:"content_width"`
	Gap            string `json:"gap"`
}

// OverlayDescriptor identifies a popup/overlay an upstream stage detected
type OverlayDescriptor struct {
	// Type is a coarse kind such as "cookie_banner" or "newsletter_modal"
	Type string `json:"type"`

	// CSSHint is a class, id or bare class-like token locating the overlay
	CSSHint string `json:"css_hint"`

	// Description is free text from the detector
	Description string `json:"description"`
}

// DefaultDesignSystem returns the fallback design system
func DefaultDesignSystem() DesignSystem {
	return DesignSystem{
		Colors: ColorPalette{
			Primary:    "#1a56db",
			Secondary:  "#374151",
			Accent:     "#f59e0b",
			Background: "#ffffff",
			Text:       "#111827",
		},
		Typography: Typography{
			HeadingFont: "Inter, Helvetica, Arial, sans-serif",
			BodyFont:    "Inter, Helvetica, Arial, sans-serif",
			BaseSize:    "16px",
			LineHeight:  "1.6",
		},
		Spacing: Spacing{
			SectionPadding: "64px 24px",
			ContentWidth:   "1100px",
			Gap:            "24px",
		},
	}
}

// Summary renders a compact one-paragraph description for prompts
func (d DesignSystem) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "colors: primary %s, secondary %s, accent %s, background %s, text %s. ",
		d.Colors.Primary, d.Colors.Secondary, d.Colors.Accent, d.Colors.Background, d.Colors.Text)
	fmt.Fprintf(&b, "fonts: headings %s, body %s, base size %s, line height %s. ",
		d.Typography.HeadingFont, d.Typography.BodyFont, d.Typography.BaseSize, d.Typography.LineHeight)
	fmt.Fprintf(&b, "spacing: section padding %s, content width %s, gap %s.",
		d.Spacing.SectionPadding, d.Spacing.ContentWidth, d.Spacing.Gap)
	return b.String()
}

// BaseCSS renders the design system as a stylesheet for synthesized skeletons
func (d DesignSystem) BaseCSS() string {
	return fmt.Sprintf(`body{margin:0;background:%s;color:%s;font-family:%s;font-size:%s;line-height:%s}
h1,h2,h3,h4,h5,h6{font-family:%s;color:%s}
a{color:%s}
.section{padding:%s}
.section > *{max-width:%s;margin-left:auto;margin-right:auto}
.cta,button{background:%s;color:#fff;border:0;padding:12px 24px;border-radius:6px}`,
		d.Colors.Background, d.Colors.Text, d.Typography.BodyFont, d.Typography.BaseSize, d.Typography.LineHeight,
		d.Typography.HeadingFont, d.Colors.Secondary,
		d.Colors.Primary,
		d.Spacing.SectionPadding,
		d.Spacing.ContentWidth,
		d.Colors.Accent)
}
