// ABOUTME: Restricted-grammar HTML patch engine applying css_fix, add_element and remove_element
// ABOUTME: Each patch is isolated; bad or unsafe patches are skipped and logged, never fatal

package patch

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"mockups-app-api/core/domain"
	coreerrors "mockups-app-api/core/errors"
	"mockups-app-api/core/htmlscan"
	"mockups-app-api/core/interfaces"
	htmlutil "mockups-app-api/pkg/utils/html"
)

// DefaultContainsMatchCap is the most elements a contains-selector css_fix may touch
const DefaultContainsMatchCap = 5

// Outcome describes what happened to one patch
type Outcome struct {
	Index    int              `json:"index"`
	Type     domain.PatchType `json:"type"`
	Selector string           `json:"selector"`
	Applied  bool             `json:"applied"`
	Reason   string           `json:"reason,omitempty"`
}

// Report summarizes a batch
type Report struct {
	Applied  int       `json:"applied"`
	Skipped  int       `json:"skipped"`
	Outcomes []Outcome `json:"outcomes"`
}

// Applier applies patch batches to HTML documents
type Applier struct {
	logger           interfaces.Logger
	containsMatchCap int
}

// Option configures an Applier
type Option func(*Applier)

// WithContainsMatchCap overrides DefaultContainsMatchCap
func WithContainsMatchCap(n int) Option {
	return func(a *Applier) {
		if n > 0 {
			a.containsMatchCap = n
		}
	}
}

// NewApplier creates a patch applier
func NewApplier(logger interfaces.Logger, opts ...Option) *Applier {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	a := &Applier{logger: logger, containsMatchCap: DefaultContainsMatchCap}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply runs the patches in order and returns the edited HTML and a report.
// A patch counts as applied when at least one of its comma-separated
// sub-selectors applied.
func (a *Applier) Apply(doc string, patches []domain.Patch) (string, Report) {
	report := Report{Outcomes: make([]Outcome, 0, len(patches))}

	for i, p := range patches {
		out := Outcome{Index: i, Type: p.Type, Selector: p.Selector}

		next, err := a.applyOne(doc, p)
		if err != nil {
			out.Reason = err.Error()
			report.Skipped++
			a.logger.Debug("Patch skipped", map[string]interface{}{
				"index":    i,
				"type":     p.Type.String(),
				"selector": p.Selector,
				"reason":   out.Reason,
			})
		} else {
			doc = next
			out.Applied = true
			report.Applied++
		}
		report.Outcomes = append(report.Outcomes, out)
	}

	a.logger.Info("Patch batch applied", map[string]interface{}{
		"applied": report.Applied,
		"skipped": report.Skipped,
	})
	return doc, report
}

// applyOne applies a single patch, turning panics into errors
func (a *Applier) applyOne(doc string, p domain.Patch) (result string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result, err = doc, fmt.Errorf("patch panicked: %v", rec)
		}
	}()

	switch p.Type {
	case domain.PatchCSSFix:
		return a.cssFix(doc, p)
	case domain.PatchAddElement:
		return a.addElement(doc, p)
	case domain.PatchRemoveElement:
		return a.removeElement(doc, p)
	default:
		return doc, &coreerrors.ValidationError{Field: "type", Message: "unsupported patch type"}
	}
}

// eachSelector parses every sub-selector, logging the ones the grammar rejects
func (a *Applier) eachSelector(list string, fn func(sel htmlscan.Selector) (bool, error)) (bool, error) {
	parts := htmlscan.SplitSelectorList(list)
	if len(parts) == 0 {
		return false, &coreerrors.ValidationError{Field: "selector", Message: "empty selector"}
	}

	applied := false
	for _, part := range parts {
		sel, err := htmlscan.ParseSelector(part)
		if err != nil {
			a.logger.Debug("Sub-selector rejected", map[string]interface{}{
				"selector": part,
				"error":    err.Error(),
			})
			continue
		}
		ok, err := fn(sel)
		if err != nil {
			return false, err
		}
		if ok {
			applied = true
		}
	}
	return applied, nil
}

func (a *Applier) cssFix(doc string, p domain.Patch) (string, error) {
	if strings.TrimSpace(p.Value) == "" {
		return doc, &coreerrors.ValidationError{Field: "value", Message: "css_fix requires css text"}
	}

	original := doc
	applied, err := a.eachSelector(p.Selector, func(sel htmlscan.Selector) (bool, error) {
		matches := sel.MatchAll(htmlscan.Scan(doc))
		if sel.AttrOp == htmlscan.AttrContains && len(matches) > a.containsMatchCap {
			return false, fmt.Errorf("contains selector %q matched %d elements (cap %d)", sel.Raw, len(matches), a.containsMatchCap)
		}
		if len(matches) == 0 {
			return false, nil
		}

		// Rewrite from the back so earlier offsets stay valid
		for i := len(matches) - 1; i >= 0; i-- {
			el := matches[i]
			existing, _ := el.Attr("style")
			tag := mergeStyle(doc[el.Start:el.OpenEnd], existing, p.Value)
			doc = htmlscan.Splice(doc, el.Start, el.OpenEnd, tag)
		}
		return true, nil
	})
	if err != nil {
		return original, err
	}
	if !applied {
		return original, &coreerrors.NotFoundError{Resource: "element", ID: p.Selector}
	}
	return doc, nil
}

func (a *Applier) addElement(doc string, p domain.Patch) (string, error) {
	fragment := strings.TrimSpace(p.Value)
	if fragment == "" {
		return doc, &coreerrors.ValidationError{Field: "value", Message: "add_element requires a fragment"}
	}
	if htmlutil.HasVisibleText(fragment) {
		return doc, &coreerrors.ValidationError{Field: "value", Message: "fragment contains visible text"}
	}
	if !isBalanced(fragment) {
		return doc, &coreerrors.ValidationError{Field: "value", Message: "fragment is not a balanced structural element"}
	}
	for _, el := range htmlscan.Scan(fragment) {
		for _, attr := range el.Attrs {
			if domain.IsReservedAttr(attr.Key) {
				return doc, &coreerrors.ValidationError{Field: "value", Message: "fragment carries reserved attribute " + attr.Key}
			}
		}
	}

	inserted := false
	_, err := a.eachSelector(p.Selector, func(sel htmlscan.Selector) (bool, error) {
		if inserted {
			return false, nil
		}
		target := sel.MatchFirst(htmlscan.Scan(doc))
		if target == nil {
			return false, nil
		}
		doc = htmlscan.Splice(doc, target.End, target.End, fragment)
		inserted = true
		return true, nil
	})
	if err != nil {
		return doc, err
	}
	if !inserted {
		return doc, &coreerrors.NotFoundError{Resource: "element", ID: p.Selector}
	}
	return doc, nil
}

func (a *Applier) removeElement(doc string, p domain.Patch) (string, error) {
	applied, err := a.eachSelector(p.Selector, func(sel htmlscan.Selector) (bool, error) {
		elements := htmlscan.Scan(doc)
		matches := sel.MatchAll(elements)
		if len(matches) != 1 {
			a.logger.Debug("Remove target ambiguous or missing", map[string]interface{}{
				"selector": sel.Raw,
				"matches":  len(matches),
			})
			return false, nil
		}

		target := matches[0]
		if carriesReserved(target, elements) {
			a.logger.Debug("Remove target holds protected content", map[string]interface{}{
				"selector": sel.Raw,
			})
			return false, nil
		}
		doc = htmlscan.Splice(doc, target.Start, target.End, "")
		return true, nil
	})
	if err != nil {
		return doc, err
	}
	if !applied {
		return doc, &coreerrors.NotFoundError{Resource: "element", ID: p.Selector}
	}
	return doc, nil
}

// carriesReserved reports whether target or anything inside it has a slot or section attribute
func carriesReserved(target *htmlscan.Element, elements []*htmlscan.Element) bool {
	for _, el := range elements {
		if el != target && !target.Contains(el) {
			continue
		}
		for _, attr := range el.Attrs {
			if domain.IsReservedAttr(attr.Key) {
				return true
			}
		}
	}
	return false
}

// rawTextTags swallow following markup when left unclosed
var rawTextTags = map[string]bool{
	"script":    true,
	"style":     true,
	"textarea":  true,
	"title":     true,
	"iframe":    true,
	"noscript":  true,
	"xmp":       true,
	"plaintext": true,
}

// isBalanced reports whether every start tag in fragment is closed in order,
// with no comments, doctypes or raw-text elements
func isBalanced(fragment string) bool {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var stack []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return len(stack) == 0
		case html.CommentToken, html.DoctypeToken:
			return false
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if rawTextTags[tag] {
				return false
			}
			if !htmlutil.IsVoidElement(tag) {
				stack = append(stack, tag)
			}
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if rawTextTags[string(name)] {
				return false
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if len(stack) == 0 || stack[len(stack)-1] != string(name) {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
}
