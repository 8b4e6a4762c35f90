// ABOUTME: Prompt builders for every model-backed phase
// ABOUTME: Each prompt pins the exact response shape the phase parser expects

package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"mockups-app-api/core/domain"
)

const (
	markdownPreviewChars = 1500
	sectionPreviewChars  = 160
)

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}

func designPrompt(markdown string, colors []string) string {
	var b strings.Builder
	b.WriteString("You are analysing a full-page screenshot of a landing page.\n")
	b.WriteString("Extract its design system. Respond with JSON only, shaped as:\n")
	b.WriteString(`{"colors":{"primary":"#hex","secondary":"#hex","accent":"#hex","background":"#hex","text":"#hex"},` +
		`"typography":{"heading_font":"","body_font":"","base_size":"16px","line_height":"1.6"},` +
		`"spacing":{"section_padding":"","content_width":"","gap":""},` +
		`"overlays":[{"type":"cookie_banner|newsletter_modal|chat_widget|other","css_hint":".class or #id","description":""}]}`)
	b.WriteString("\nList an overlay only when a popup, modal or banner covers page content.\n")
	if len(colors) > 0 {
		fmt.Fprintf(&b, "Dominant colours measured from the screenshot: %s.\n", strings.Join(colors, ", "))
	}
	b.WriteString("\nPage text preview:\n")
	b.WriteString(truncateRunes(markdown, markdownPreviewChars))
	return b.String()
}

func layoutPrompt(sections []domain.Section, design domain.DesignSystem, hints *domain.ElementHints) string {
	var b strings.Builder
	b.WriteString("You are rebuilding the landing page in the screenshot as static HTML.\n")
	fmt.Fprintf(&b, "The page text was split into %d sections, top to bottom:\n", len(sections))
	for _, s := range sections {
		fmt.Fprintf(&b, "- %s (%s): %s\n", s.ID, s.Name, truncateRunes(strings.Join(strings.Fields(s.Markdown), " "), sectionPreviewChars))
	}
	if hints != nil && len(hints.SectionNames) > 0 {
		fmt.Fprintf(&b, "An upstream detector saw these sections: %s.\n", strings.Join(hints.SectionNames, ", "))
	}
	fmt.Fprintf(&b, "Design system: %s\n\n", design.Summary())
	b.WriteString("Return JSON only, shaped as:\n")
	b.WriteString(`{"sections":[{"name":"hero","y_start_pct":0.0,"y_end_pct":0.18}],"skeleton_html":"<!DOCTYPE html>..."}`)
	b.WriteString("\nRules:\n")
	b.WriteString("- y_start_pct and y_end_pct are fractions of the full page height between 0 and 1.\n")
	fmt.Fprintf(&b, "- skeleton_html is a complete document with inline <style>. Each section is <section %s=\"sec_N\"> containing exactly the text placeholder {{sec_N}}.\n", domain.SectionAttr)
	b.WriteString("- Do not write any page copy into the skeleton; layout, wrappers and styling only.\n")
	return b.String()
}

func contentPrompt(skeleton string, sections []domain.Section) (string, string) {
	var ctx strings.Builder
	ctx.WriteString("SKELETON:\n")
	ctx.WriteString(skeleton)
	ctx.WriteString("\n\nSECTION TEXT:\n")
	for _, s := range sections {
		fmt.Fprintf(&ctx, "### %s\n%s\n\n", domain.Placeholder(s.ID), s.Markdown)
	}

	var p strings.Builder
	p.WriteString("Fill every {{sec_N}} placeholder in the skeleton with that section's text as semantic HTML.\n")
	p.WriteString("Copy the source text verbatim: no rewording, no additions, no omissions.\n")
	fmt.Fprintf(&p, "Mark every replaceable text element with a %s attribute named headline, subheadline, heading-N, body-N or cta-N. ", domain.SlotAttr)
	p.WriteString("Numbers count across the whole page and never restart per section.\n")
	fmt.Fprintf(&p, "Keep every <section %s> element and its attribute unchanged.\n", domain.SectionAttr)
	p.WriteString("Return the complete HTML document only.")
	return ctx.String(), p.String()
}

func refinePrompt(id, fragment string, design domain.DesignSystem, imageURLs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The image is a crop of one landing-page section (%s). Below is its current HTML.\n", id)
	b.WriteString("Refine layout and styling so the HTML matches the crop visually.\n")
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- Return only the <section %s=\"%s\"> element.\n", domain.SectionAttr, id)
	fmt.Fprintf(&b, "- Keep every %s attribute and its value; never rename or remove one.\n", domain.SlotAttr)
	b.WriteString("- Do not change any visible text.\n")
	fmt.Fprintf(&b, "Design system: %s\n", design.Summary())
	if len(imageURLs) > 0 {
		fmt.Fprintf(&b, "Known image URLs you may use: %s\n", strings.Join(imageURLs, " "))
	}
	b.WriteString("\nCURRENT HTML:\n")
	b.WriteString(fragment)
	return b.String()
}

func patchPrompt(doc string, design domain.DesignSystem, maxPatches int) string {
	var b strings.Builder
	b.WriteString("Compare the screenshot with the HTML below and list targeted fixes.\n")
	fmt.Fprintf(&b, "Return a JSON array of at most %d patches, each {\"type\":\"css_fix|add_element|remove_element\",\"selector\":\"...\",\"value\":\"...\"}.\n", maxPatches)
	b.WriteString("Selectors may only be: tag, .class, #id, tag.class, [attr='v'], [attr*='v'], tag[attr='v'], tag[attr*='v'], or comma-separated lists of those.\n")
	b.WriteString("css_fix value is inline CSS. add_element value is a purely structural fragment without text. remove_element removes exactly one element.\n")
	fmt.Fprintf(&b, "Never target text content and never touch %s or %s attributes.\n", domain.SlotAttr, domain.SectionAttr)
	fmt.Fprintf(&b, "Design system: %s\n\nHTML:\n", design.Summary())
	b.WriteString(doc)
	return b.String()
}
