// ABOUTME: Conservative overlay removal driven only by upstream overlay detections
// ABOUTME: Never guesses; refuses navigation, conversion elements and protected content

package popup

import (
	"regexp"
	"strings"

	"mockups-app-api/core/domain"
	"mockups-app-api/core/htmlscan"
	"mockups-app-api/core/interfaces"
)

var (
	protectedTags = map[string]bool{
		"nav":    true,
		"header": true,
		"footer": true,
	}

	// protectedClassParts are substrings of class attributes that mark conversion or navigation UI
	protectedClassParts = []string{"cta", "buy", "order", "cart", "checkout", "nav", "header", "footer"}

	bareTokenRe = regexp.MustCompile(`^[A-Za-z_][-A-Za-z0-9_]*$`)
)

// Result summarizes a filter pass
type Result struct {
	Removed int
	Refused int
	Missed  int
}

// Filter removes overlays previously identified by an upstream detector.
// With no descriptors the input is returned unchanged.
func Filter(html string, overlays []domain.OverlayDescriptor, logger interfaces.Logger) (string, Result) {
	var res Result
	if len(overlays) == 0 {
		return html, res
	}
	if logger == nil {
		logger = interfaces.NopLogger{}
	}

	for _, ov := range overlays {
		sel, ok := hintSelector(ov.CSSHint)
		if !ok {
			logger.Debug("Overlay hint unusable", map[string]interface{}{
				"type": ov.Type,
				"hint": ov.CSSHint,
			})
			res.Missed++
			continue
		}

		elements := htmlscan.Scan(html)
		target := sel.MatchFirst(elements)
		if target == nil {
			res.Missed++
			continue
		}

		if reason := refusal(target, elements); reason != "" {
			logger.Info("Overlay removal refused", map[string]interface{}{
				"type":   ov.Type,
				"hint":   ov.CSSHint,
				"reason": reason,
			})
			res.Refused++
			continue
		}

		html = htmlscan.Splice(html, target.Start, target.End, "")
		res.Removed++
		logger.Info("Overlay removed", map[string]interface{}{
			"type": ov.Type,
			"hint": ov.CSSHint,
		})
	}
	return html, res
}

// hintSelector turns a detector hint into a selector. Words written in
// selector syntax win over bare words, which are treated as class names.
func hintSelector(hint string) (htmlscan.Selector, bool) {
	fields := strings.Fields(hint)
	for _, field := range fields {
		if !strings.ContainsAny(field, ".#[") {
			continue
		}
		if sel, err := htmlscan.ParseSelector(field); err == nil {
			return sel, true
		}
	}
	for _, field := range fields {
		if !bareTokenRe.MatchString(field) {
			continue
		}
		if sel, err := htmlscan.ParseSelector("." + field); err == nil {
			return sel, true
		}
	}
	return htmlscan.Selector{}, false
}

func refusal(target *htmlscan.Element, elements []*htmlscan.Element) string {
	if protectedTags[target.Tag] {
		return "protected tag " + target.Tag
	}
	class, _ := target.Attr("class")
	class = strings.ToLower(class)
	for _, part := range protectedClassParts {
		if strings.Contains(class, part) {
			return "protected class " + part
		}
	}
	for _, el := range elements {
		if el != target && !target.Contains(el) {
			continue
		}
		for _, attr := range el.Attrs {
			if domain.IsReservedAttr(attr.Key) {
				return "holds " + attr.Key
			}
		}
	}
	return ""
}
