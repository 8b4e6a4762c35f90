// ABOUTME: Slot and text invariants captured after content injection
// ABOUTME: Checks later mutations for slot loss and text drift against the baseline

package invariants

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mockups-app-api/core/domain"
	htmlutil "mockups-app-api/pkg/utils/html"
)

const (
	// DefaultSimilarityThreshold is the minimum token similarity for a passing check
	DefaultSimilarityThreshold = 0.85

	// DefaultShortTextTokens is the token count below which similarity is exact equality
	DefaultShortTextTokens = 10
)

// Thresholds tunes the drift checks
type Thresholds struct {
	Similarity      float64
	ShortTextTokens int
}

// DefaultThresholds returns the production thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		Similarity:      DefaultSimilarityThreshold,
		ShortTextTokens: DefaultShortTextTokens,
	}
}

// SlotSet is a set of slot names
type SlotSet map[string]struct{}

// Has reports whether name is in the set
func (s SlotSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the slot names in lexical order
func (s SlotSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Missing returns names present in s but absent from other, sorted
func (s SlotSet) Missing(other SlotSet) []string {
	var out []string
	for name := range s {
		if !other.Has(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// SectionInvariant is the baseline for one <section> block
type SectionInvariant struct {
	Slots     SlotSet
	Tokens    []string
	CharCount int
}

// Baseline is the snapshot every later mutation is checked against
type Baseline struct {
	GlobalSlots  SlotSet
	GlobalTokens []string
	SectionCount int
	Sections     map[string]SectionInvariant
}

// Report is the outcome of a drift check
type Report struct {
	Passed     bool
	SlotLoss   []string
	Similarity float64
	Issues     []string
}

// Capture parses html once and records slots and tokens globally and per section
func Capture(html string) (*Baseline, error) {
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	b := &Baseline{
		GlobalSlots:  collectSlots(doc.Selection),
		GlobalTokens: tokens(doc.Selection),
		Sections:     make(map[string]SectionInvariant),
	}

	sections := sectionBlocks(doc)
	b.SectionCount = sections.Length()
	sections.Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr(domain.SectionAttr)
		if _, seen := b.Sections[id]; seen {
			return
		}
		text := visibleText(s)
		b.Sections[id] = SectionInvariant{
			Slots:     collectSlots(s),
			Tokens:    htmlutil.Tokenize(text),
			CharCount: len([]rune(text)),
		}
	})

	return b, nil
}

// CheckSection compares a candidate fragment for one section against its baseline
func (b *Baseline) CheckSection(sectionID, fragment string, th Thresholds) Report {
	base, ok := b.Sections[sectionID]
	if !ok {
		return Report{Issues: []string{fmt.Sprintf("no baseline for section %s", sectionID)}}
	}

	doc, err := parse(fragment)
	if err != nil {
		return Report{Issues: []string{fmt.Sprintf("unparseable fragment: %v", err)}}
	}

	return compare(base.Slots, base.Tokens, collectSlots(doc.Selection), tokens(doc.Selection), th)
}

// CheckGlobal compares a full document against the baseline. A changed section
// count is listed as an issue but does not fail the check.
func (b *Baseline) CheckGlobal(html string, th Thresholds) Report {
	doc, err := parse(html)
	if err != nil {
		return Report{Issues: []string{fmt.Sprintf("unparseable document: %v", err)}}
	}

	r := compare(b.GlobalSlots, b.GlobalTokens, collectSlots(doc.Selection), tokens(doc.Selection), th)
	if n := sectionBlocks(doc).Length(); n != b.SectionCount {
		r.Issues = append(r.Issues, fmt.Sprintf("section count changed from %d to %d", b.SectionCount, n))
	}
	return r
}

// Similarity scores two token lists in [0,1]. When both lists are shorter than
// shortTokens the score is 1 for identical text and 0 otherwise; longer lists
// use multiset Jaccard.
func Similarity(baseline, candidate []string, shortTokens int) float64 {
	if len(baseline) < shortTokens && len(candidate) < shortTokens {
		if strings.Join(baseline, " ") == strings.Join(candidate, " ") {
			return 1
		}
		return 0
	}

	counts := make(map[string][2]int)
	for _, t := range baseline {
		c := counts[t]
		c[0]++
		counts[t] = c
	}
	for _, t := range candidate {
		c := counts[t]
		c[1]++
		counts[t] = c
	}

	inter, union := 0, 0
	for _, c := range counts {
		inter += min(c[0], c[1])
		union += max(c[0], c[1])
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// ExtractSlots returns every slot name in html
func ExtractSlots(html string) (SlotSet, error) {
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}
	return collectSlots(doc.Selection), nil
}

func compare(baseSlots SlotSet, baseTokens []string, slots SlotSet, toks []string, th Thresholds) Report {
	if th.Similarity <= 0 {
		th.Similarity = DefaultSimilarityThreshold
	}
	if th.ShortTextTokens <= 0 {
		th.ShortTextTokens = DefaultShortTextTokens
	}

	r := Report{
		SlotLoss:   baseSlots.Missing(slots),
		Similarity: Similarity(baseTokens, toks, th.ShortTextTokens),
	}
	if len(r.SlotLoss) > 0 {
		r.Issues = append(r.Issues, fmt.Sprintf("lost slots: %s", strings.Join(r.SlotLoss, ", ")))
	}
	if r.Similarity < th.Similarity {
		r.Issues = append(r.Issues, fmt.Sprintf("text similarity %.3f below %.2f", r.Similarity, th.Similarity))
	}
	r.Passed = len(r.SlotLoss) == 0 && r.Similarity >= th.Similarity
	return r
}

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

func sectionBlocks(doc *goquery.Document) *goquery.Selection {
	return doc.Find("section[" + domain.SectionAttr + "]")
}

func collectSlots(s *goquery.Selection) SlotSet {
	set := make(SlotSet)
	collect := func(_ int, el *goquery.Selection) {
		if v, ok := el.Attr(domain.SlotAttr); ok && v != "" {
			set[v] = struct{}{}
		}
	}
	s.Each(collect)
	s.Find("[" + domain.SlotAttr + "]").Each(collect)
	return set
}

func visibleText(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		if t := htmlutil.VisibleText(n); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func tokens(s *goquery.Selection) []string {
	return htmlutil.Tokenize(visibleText(s))
}
