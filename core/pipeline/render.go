// ABOUTME: Local markdown rendering used whenever content injection cannot use the model
// ABOUTME: Built on goldmark with raw HTML disabled so source text cannot inject markup

package pipeline

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
)

// renderMarkdown converts section markdown to HTML, escaping it as a
// paragraph if the converter fails
func renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "<p>" + html.EscapeString(strings.TrimSpace(md)) + "</p>"
	}
	return strings.TrimSpace(buf.String())
}
