// ABOUTME: Restricted CSS selector grammar used by the patch engine and popup filter
// ABOUTME: Only simple tag/class/id/attribute forms are legal; anything else is rejected

package htmlscan

import (
	"fmt"
	"regexp"
	"strings"

	coreerrors "mockups-app-api/core/errors"
)

// AttrOp is the attribute comparison of a selector
type AttrOp int

const (
	AttrNone AttrOp = iota
	AttrEquals
	AttrContains
)

// Selector is a parsed simple selector
type Selector struct {
	Raw       string
	Tag       string
	Class     string
	ID        string
	AttrName  string
	AttrValue string
	AttrOp    AttrOp
}

const (
	identPattern = `[A-Za-z_][-A-Za-z0-9_]*`
	tagPattern   = `[A-Za-z][A-Za-z0-9]*`
	attrPattern  = `\[([A-Za-z_:][-A-Za-z0-9_:.]*)\s*(\*?=)\s*(?:'([^']*)'|"([^"]*)")\]`
)

var (
	attrOnlyRe = regexp.MustCompile(`^` + attrPattern + `$`)
	classRe    = regexp.MustCompile(`^\.(` + identPattern + `)$`)
	idRe       = regexp.MustCompile(`^#(` + identPattern + `)$`)
	tagRe      = regexp.MustCompile(`^(` + tagPattern + `)$`)
	tagClassRe = regexp.MustCompile(`^(` + tagPattern + `)\.(` + identPattern + `)$`)
	tagAttrRe  = regexp.MustCompile(`^(` + tagPattern + `)` + attrPattern + `$`)
)

// ParseSelector parses one simple selector. Legal forms are [attr='v'],
// [attr*='v'], .class, #id, tag, tag.class, tag[attr='v'] and tag[attr*='v'].
func ParseSelector(s string) (Selector, error) {
	raw := strings.TrimSpace(s)
	sel := Selector{Raw: raw}
	if raw == "" {
		return sel, &coreerrors.ValidationError{Field: "selector", Message: "empty selector"}
	}

	if m := attrOnlyRe.FindStringSubmatch(raw); m != nil {
		setAttr(&sel, m[1], m[2], m[3]+m[4])
		return sel, nil
	}
	if m := classRe.FindStringSubmatch(raw); m != nil {
		sel.Class = m[1]
		return sel, nil
	}
	if m := idRe.FindStringSubmatch(raw); m != nil {
		sel.ID = m[1]
		return sel, nil
	}
	if m := tagRe.FindStringSubmatch(raw); m != nil {
		sel.Tag = strings.ToLower(m[1])
		return sel, nil
	}
	if m := tagClassRe.FindStringSubmatch(raw); m != nil {
		sel.Tag = strings.ToLower(m[1])
		sel.Class = m[2]
		return sel, nil
	}
	if m := tagAttrRe.FindStringSubmatch(raw); m != nil {
		sel.Tag = strings.ToLower(m[1])
		setAttr(&sel, m[2], m[3], m[4]+m[5])
		return sel, nil
	}

	return sel, &coreerrors.ValidationError{
		Field:   "selector",
		Message: fmt.Sprintf("unsupported selector form %q", raw),
	}
}

func setAttr(sel *Selector, name, op, value string) {
	sel.AttrName = strings.ToLower(name)
	sel.AttrValue = value
	if op == "*=" {
		sel.AttrOp = AttrContains
	} else {
		sel.AttrOp = AttrEquals
	}
}

// SplitSelectorList splits a comma-separated selector list, ignoring commas
// inside quoted attribute values
func SplitSelectorList(s string) []string {
	var (
		parts []string
		cur   strings.Builder
		quote rune
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ',':
			if part := strings.TrimSpace(cur.String()); part != "" {
				parts = append(parts, part)
			}
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	if part := strings.TrimSpace(cur.String()); part != "" {
		parts = append(parts, part)
	}
	return parts
}

// Matches reports whether el satisfies the selector
func (s Selector) Matches(el *Element) bool {
	if s.Tag != "" && el.Tag != s.Tag {
		return false
	}
	if s.Class != "" && !el.HasClass(s.Class) {
		return false
	}
	if s.ID != "" {
		if id, ok := el.Attr("id"); !ok || id != s.ID {
			return false
		}
	}
	if s.AttrOp != AttrNone {
		v, ok := el.Attr(s.AttrName)
		if !ok {
			return false
		}
		if s.AttrOp == AttrEquals && v != s.AttrValue {
			return false
		}
		if s.AttrOp == AttrContains && !strings.Contains(v, s.AttrValue) {
			return false
		}
	}
	return true
}

// MatchAll returns every element satisfying the selector, in document order
func (s Selector) MatchAll(elements []*Element) []*Element {
	var out []*Element
	for _, el := range elements {
		if s.Matches(el) {
			out = append(out, el)
		}
	}
	return out
}

// MatchFirst returns the first element satisfying the selector, or nil
func (s Selector) MatchFirst(elements []*Element) *Element {
	for _, el := range elements {
		if s.Matches(el) {
			return el
		}
	}
	return nil
}
