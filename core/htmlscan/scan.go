// ABOUTME: Byte-offset element scanner over raw HTML built on the x/net/html tokenizer
// ABOUTME: Finds each element's matching close tag with same-tag nesting and void-element rules

package htmlscan

import (
	"strings"

	"golang.org/x/net/html"

	htmlutil "mockups-app-api/pkg/utils/html"
)

// Attr is a single attribute as written on a start tag
type Attr struct {
	Key string
	Val string
}

// Element is one element located in the source HTML by byte offsets.
//
// Source[Start:OpenEnd] is the start tag, Source[Start:End] is the whole
// element including its closing tag (if any).
type Element struct {
	Tag     string
	Attrs   []Attr
	Start   int
	OpenEnd int
	End     int
	Depth   int
	Closed  bool
}

// Attr returns the value of the named attribute
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Classes returns the whitespace-separated class list
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the element carries the given class
func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// Contains reports whether other lies entirely inside e
func (e *Element) Contains(other *Element) bool {
	return other.Start >= e.Start && other.End <= e.End && other != e
}

// Scan locates every element of src in document order.
//
// A close tag is matched to the nearest open element with the same tag name;
// elements left open above it are closed implicitly where the close tag
// begins. Void elements and self-closing tags end at their own start tag.
// Elements still open at end of input end at len(src).
func Scan(src string) []*Element {
	z := html.NewTokenizer(strings.NewReader(src))
	var (
		elements []*Element
		stack    []*Element
		offset   int
	)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := len(z.Raw())
		start := offset
		offset += raw

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			el := &Element{
				Tag:     string(name),
				Start:   start,
				OpenEnd: offset,
				Depth:   len(stack),
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				el.Attrs = append(el.Attrs, Attr{Key: string(key), Val: string(val)})
			}
			elements = append(elements, el)
			if tt == html.SelfClosingTagToken || htmlutil.IsVoidElement(el.Tag) {
				el.End = offset
				el.Closed = true
				continue
			}
			stack = append(stack, el)

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].Tag != tag {
					continue
				}
				for _, open := range stack[i+1:] {
					open.End = start
				}
				stack[i].End = offset
				stack[i].Closed = true
				stack = stack[:i]
				break
			}
		}
	}
	for _, open := range stack {
		open.End = len(src)
	}
	return elements
}

// FindByAttr returns the first element whose attribute key equals val
func FindByAttr(elements []*Element, key, val string) *Element {
	for _, el := range elements {
		if v, ok := el.Attr(key); ok && v == val {
			return el
		}
	}
	return nil
}

// Splice replaces src[start:end] with replacement
func Splice(src string, start, end int, replacement string) string {
	return src[:start] + replacement + src[end:]
}
