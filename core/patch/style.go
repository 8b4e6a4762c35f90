// ABOUTME: Inline style merging for css_fix patches
// ABOUTME: Only the style attribute of a start tag is rewritten

package patch

import (
	"strings"

	"mockups-app-api/core/htmlscan"
)

// mergeStyle appends css to the tag's inline style, or adds a style attribute.
// existing is the already-unescaped current style value.
func mergeStyle(tag, existing, css string) string {
	css = strings.TrimSpace(css)
	merged := css
	if cur := strings.TrimRight(strings.TrimSpace(existing), "; "); cur != "" {
		merged = cur + "; " + css
	}
	return htmlscan.SetAttr(tag, "style", merged)
}
