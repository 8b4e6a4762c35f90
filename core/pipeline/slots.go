// ABOUTME: Deterministic slot safety net run after content injection
// ABOUTME: Labels the first unlabeled headings, paragraphs and links until a minimum slot count holds

package pipeline

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"mockups-app-api/core/domain"
	"mockups-app-api/core/htmlscan"
)

// minSlots is the fewest slots a baseline may carry
const minSlots = 3

var numberedSlotRe = regexp.MustCompile(`^([a-z]+)-(\d+)$`)

// slotPrefix maps taggable elements to their slot naming family
func slotPrefix(tag string) string {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading"
	case "p":
		return "body"
	case "a", "button":
		return "cta"
	}
	return ""
}

// ensureMinimumSlots adds slot attributes to unlabeled text elements in
// document order until at least want slots exist. Numbering continues from
// the highest existing number per family and is global across sections.
func ensureMinimumSlots(doc string, want int) (string, int) {
	elements := htmlscan.Scan(doc)

	taken := make(map[string]bool)
	next := map[string]int{"heading": 1, "body": 1, "cta": 1}
	for _, el := range elements {
		v, ok := el.Attr(domain.SlotAttr)
		if !ok || v == "" {
			continue
		}
		taken[v] = true
		if m := numberedSlotRe.FindStringSubmatch(v); m != nil {
			if n, err := strconv.Atoi(m[2]); err == nil && n >= next[m[1]] {
				next[m[1]] = n + 1
			}
		}
	}
	existing := len(taken)
	if existing >= want {
		return doc, 0
	}

	type edit struct {
		el   *htmlscan.Element
		name string
	}
	var edits []edit
	for _, el := range elements {
		if existing+len(edits) >= want {
			break
		}
		prefix := slotPrefix(el.Tag)
		if prefix == "" {
			continue
		}
		if _, ok := el.Attr(domain.SlotAttr); ok {
			continue
		}

		name := ""
		if el.Tag == "h1" && !taken["headline"] {
			name = "headline"
		} else {
			for name == "" || taken[name] {
				name = fmt.Sprintf("%s-%d", prefix, next[prefix])
				next[prefix]++
			}
		}
		taken[name] = true
		edits = append(edits, edit{el: el, name: name})
	}

	// Apply from the back so earlier offsets stay valid
	sort.Slice(edits, func(i, j int) bool { return edits[i].el.Start > edits[j].el.Start })
	for _, e := range edits {
		tag := htmlscan.SetAttr(doc[e.el.Start:e.el.OpenEnd], domain.SlotAttr, e.name)
		doc = htmlscan.Splice(doc, e.el.Start, e.el.OpenEnd, tag)
	}
	return doc, len(edits)
}
