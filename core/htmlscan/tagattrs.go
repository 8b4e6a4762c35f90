// ABOUTME: Attribute lexing and rewriting on raw start tags
// ABOUTME: Edits one attribute in place so every other byte of the tag survives

package htmlscan

import (
	"html"
	"strings"
)

// AttrSpan locates one attribute inside a raw start tag. Tag[Start:End] is
// the whole `key="value"` text.
type AttrSpan struct {
	Key        string
	Start, End int
}

// StartTagAttrs lexes the attributes of a raw start tag such as
// `<div class="a" data-slot='x' hidden>`. Quoted values may contain any
// character, including '>' and attribute-like text.
func StartTagAttrs(tag string) []AttrSpan {
	i := 1
	for i < len(tag) && !isTagSpace(tag[i]) && tag[i] != '>' && tag[i] != '/' {
		i++
	}

	var spans []AttrSpan
	for i < len(tag) {
		for i < len(tag) && (isTagSpace(tag[i]) || tag[i] == '/') {
			i++
		}
		if i >= len(tag) || tag[i] == '>' {
			break
		}

		start := i
		for i < len(tag) && !isTagSpace(tag[i]) && tag[i] != '=' && tag[i] != '>' && tag[i] != '/' {
			i++
		}
		key := strings.ToLower(tag[start:i])
		end := i

		j := i
		for j < len(tag) && isTagSpace(tag[j]) {
			j++
		}
		if j < len(tag) && tag[j] == '=' {
			j++
			for j < len(tag) && isTagSpace(tag[j]) {
				j++
			}
			if j < len(tag) && (tag[j] == '"' || tag[j] == '\'') {
				quote := tag[j]
				j++
				for j < len(tag) && tag[j] != quote {
					j++
				}
				if j < len(tag) {
					j++
				}
			} else {
				for j < len(tag) && !isTagSpace(tag[j]) && tag[j] != '>' {
					j++
				}
			}
			end = j
			i = j
		}

		if key == "" {
			i++
			continue
		}
		spans = append(spans, AttrSpan{Key: key, Start: start, End: end})
	}
	return spans
}

// SetAttr sets key to the unescaped value on a raw start tag, replacing an
// existing attribute in place or appending a new one before the tag end
func SetAttr(tag, key, value string) string {
	key = strings.ToLower(key)
	attr := key + `="` + html.EscapeString(value) + `"`

	for _, span := range StartTagAttrs(tag) {
		if span.Key == key {
			return tag[:span.Start] + attr + tag[span.End:]
		}
	}

	insertAt := len(tag)
	if strings.HasSuffix(tag, "/>") {
		insertAt = len(tag) - 2
	} else if strings.HasSuffix(tag, ">") {
		insertAt = len(tag) - 1
	}
	for insertAt > 0 && isTagSpace(tag[insertAt-1]) {
		insertAt--
	}
	return tag[:insertAt] + " " + attr + tag[insertAt:]
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
