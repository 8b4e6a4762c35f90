// ABOUTME: HTML text utilities for extracting visible text and word tokens
// ABOUTME: Shared by invariant capture and the local fallback renderers

package html

import (
	"strings"

	"golang.org/x/net/html"
)

// invisibleElements never contribute visible text
var invisibleElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// voidElements have no closing tag
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement reports whether tag never has a closing tag
func IsVoidElement(tag string) bool {
	return voidElements[strings.ToLower(tag)]
}

// VisibleText returns the text content of n, skipping script and style
// subtrees. Text nodes are separated by a single space so adjacent elements
// never glue words together.
func VisibleText(n *html.Node) string {
	var b strings.Builder
	collectText(n, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func collectText(n *html.Node, b *strings.Builder) {
	if n == nil {
		return
	}
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if invisibleElements[n.Data] {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// Tokenize lowercases text and splits it on whitespace
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	if fields == nil {
		return []string{}
	}
	return fields
}

// HasVisibleText reports whether an HTML fragment renders any non-whitespace text
func HasVisibleText(fragment string) bool {
	z := html.NewTokenizer(strings.NewReader(fragment))
	skipDepth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken:
			name, _ := z.TagName()
			if invisibleElements[string(name)] {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if invisibleElements[string(name)] && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 && strings.TrimSpace(string(z.Text())) != "" {
				return true
			}
		}
	}
}
