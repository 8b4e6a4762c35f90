// ABOUTME: Skeleton handling: section block lookup, placeholder renumbering and local fill
// ABOUTME: Keeps section blocks and {{sec_N}} placeholders aligned with the reconciled boxes

package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"mockups-app-api/core/domain"
	"mockups-app-api/core/htmlscan"
)

var (
	placeholderRe = regexp.MustCompile(`\{\{\s*(` + domain.SectionIDPrefix + `\d+)\s*\}\}`)
	classUnsafeRe = regexp.MustCompile(`[^a-z0-9-]+`)
)

// sectionBlocks returns the outermost <section data-section> elements in order
func sectionBlocks(doc string) []*htmlscan.Element {
	var blocks []*htmlscan.Element
	for _, el := range htmlscan.Scan(doc) {
		if el.Tag != "section" {
			continue
		}
		if _, ok := el.Attr(domain.SectionAttr); !ok {
			continue
		}
		if len(blocks) > 0 && blocks[len(blocks)-1].Contains(el) {
			continue
		}
		blocks = append(blocks, el)
	}
	return blocks
}

// findSection locates the block carrying the given section id
func findSection(doc, id string) *htmlscan.Element {
	for _, el := range sectionBlocks(doc) {
		if v, _ := el.Attr(domain.SectionAttr); v == id {
			return el
		}
	}
	return nil
}

// sectionHTML returns the markup of one section block
func sectionHTML(doc, id string) (string, bool) {
	el := findSection(doc, id)
	if el == nil {
		return "", false
	}
	return doc[el.Start:el.End], true
}

// replaceSection swaps the block carrying id for fragment
func replaceSection(doc, id, fragment string) (string, bool) {
	el := findSection(doc, id)
	if el == nil {
		return doc, false
	}
	return htmlscan.Splice(doc, el.Start, el.End, fragment), true
}

// sectionShell is an empty section block holding only its placeholder
func sectionShell(box domain.NormalizedBox) string {
	return fmt.Sprintf(`<section %s="%s" class="section section-%s">%s</section>`,
		domain.SectionAttr, box.SectionID, classSafe(box.Name), domain.Placeholder(box.SectionID))
}

// synthesizeSkeleton builds a complete document with one shell per box
func synthesizeSkeleton(boxes []domain.NormalizedBox, design domain.DesignSystem) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<title>Mockup</title>\n<style>\n")
	b.WriteString(design.BaseCSS())
	b.WriteString("\n</style>\n</head>\n<body>\n")
	for _, box := range boxes {
		b.WriteString(sectionShell(box))
		b.WriteString("\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// rewriteSkeleton renumbers a model skeleton so its section blocks are exactly
// sec_0..sec_{n-1}, each holding its own placeholder. Extra blocks are dropped
// and missing ones are appended after the last kept block.
func rewriteSkeleton(skeleton string, boxes []domain.NormalizedBox) (string, error) {
	blocks := sectionBlocks(skeleton)
	if len(blocks) == 0 {
		return "", fmt.Errorf("skeleton has no %s blocks", domain.SectionAttr)
	}

	kept := min(len(blocks), len(boxes))
	var b strings.Builder
	b.WriteString(skeleton[:blocks[0].Start])
	for i := 0; i < kept; i++ {
		if i > 0 {
			b.WriteString(skeleton[blocks[i-1].End:blocks[i].Start])
		}
		b.WriteString(renumberBlock(skeleton, blocks[i], boxes[i].SectionID))
	}
	for i := kept; i < len(boxes); i++ {
		b.WriteString("\n")
		b.WriteString(sectionShell(boxes[i]))
	}
	b.WriteString(skeleton[blocks[len(blocks)-1].End:])

	return b.String(), nil
}

// renumberBlock sets the block's section id and points its placeholder at it
func renumberBlock(doc string, el *htmlscan.Element, id string) string {
	open := htmlscan.SetAttr(doc[el.Start:el.OpenEnd], domain.SectionAttr, id)
	body := doc[el.OpenEnd:el.End]

	seen := false
	body = placeholderRe.ReplaceAllStringFunc(body, func(string) string {
		if seen {
			return ""
		}
		seen = true
		return domain.Placeholder(id)
	})
	if !seen {
		if i := strings.LastIndex(strings.ToLower(body), "</section"); i >= 0 {
			body = body[:i] + domain.Placeholder(id) + body[i:]
		} else {
			body += domain.Placeholder(id)
		}
	}
	return open + body
}

// fillLocally replaces each placeholder with its section's rendered markdown.
// Without any per-section placeholder the whole rendering goes into the first
// placeholder, or before </body> when there is none.
func fillLocally(doc string, sections []domain.Section) string {
	rendered := make(map[string]string, len(sections))
	var all []string
	for _, s := range sections {
		r := renderMarkdown(s.Markdown)
		rendered[s.ID] = r
		all = append(all, r)
	}
	whole := strings.Join(all, "\n")

	matches := placeholderRe.FindAllStringSubmatch(doc, -1)
	known := false
	for _, m := range matches {
		if _, ok := rendered[m[1]]; ok {
			known = true
			break
		}
	}

	switch {
	case known:
		return placeholderRe.ReplaceAllStringFunc(doc, func(tok string) string {
			id := placeholderRe.FindStringSubmatch(tok)[1]
			return rendered[id]
		})
	case len(matches) > 0:
		first := true
		return placeholderRe.ReplaceAllStringFunc(doc, func(string) string {
			if first {
				first = false
				return whole
			}
			return ""
		})
	default:
		if i := strings.LastIndex(strings.ToLower(doc), "</body>"); i >= 0 {
			return doc[:i] + whole + "\n" + doc[i:]
		}
		return doc + whole
	}
}

// localDraft fills a skeleton without the model and labels enough slots to
// keep the document editable
func localDraft(skeleton string, sections []domain.Section) string {
	doc, _ := ensureMinimumSlots(fillLocally(skeleton, sections), minSlots)
	return doc
}

// fillMissing renders any placeholders the model left behind
func fillMissing(doc string, sections []domain.Section) string {
	if !placeholderRe.MatchString(doc) {
		return doc
	}
	return fillLocally(doc, sections)
}

func classSafe(name string) string {
	s := strings.Trim(classUnsafeRe.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "block"
	}
	return s
}
