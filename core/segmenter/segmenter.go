// ABOUTME: Markdown segmenter splitting page text into positional, labeled sections
// ABOUTME: Merges tiny chunks and caps the section count so layout reconciliation stays tractable

package segmenter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"mockups-app-api/core/domain"
)

const (
	// DefaultMaxSections caps the number of sections returned
	DefaultMaxSections = 8

	// DefaultMinChunkChars is the size below which a chunk is merged into a neighbour
	DefaultMinChunkChars = 200

	heroName     = "hero"
	fallbackName = "section"
	maxNameWords = 4
	maxNameLen   = 32
)

var (
	headingRe = regexp.MustCompile(`^\s{0,3}(#{1,6})\s+(.+?)\s*#*\s*$`)
	fenceRe   = regexp.MustCompile("^\\s{0,3}(```|~~~)")
	nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)
	mdMarkRe  = regexp.MustCompile(`[*_` + "`" + `\[\]()!]`)
)

// Hints adjusts segmentation for a specific page
type Hints struct {
	// MaxSections overrides DefaultMaxSections when between 1 and DefaultMaxSections
	MaxSections int
}

// HintsFromElements derives segmenter hints from upstream element detections
func HintsFromElements(h *domain.ElementHints) *Hints {
	if h == nil || len(h.SectionNames) == 0 {
		return nil
	}
	return &Hints{MaxSections: len(h.SectionNames)}
}

type chunk struct {
	name string
	text string
}

func (c chunk) size() int {
	return utf8.RuneCountInString(c.text)
}

// Segment splits markdown into at most eight ordered sections.
//
// Chunks start at headings; text before the first heading is named "hero".
// Chunks under 200 characters merge backward (or forward when first), then
// the adjacent pair with the smallest combined size is merged until the cap
// holds. IDs are sec_0..sec_{k-1} in document order.
func Segment(markdown string, hints *Hints) []domain.Section {
	maxSections := DefaultMaxSections
	if hints != nil && hints.MaxSections > 0 && hints.MaxSections < DefaultMaxSections {
		maxSections = hints.MaxSections
	}

	if strings.TrimSpace(markdown) == "" {
		return []domain.Section{{
			ID:        domain.SectionID(0),
			Name:      heroName,
			Markdown:  "",
			CharRatio: 1.0,
		}}
	}

	chunks := splitByHeadings(markdown)
	chunks = mergeSmall(chunks, DefaultMinChunkChars)
	for len(chunks) > maxSections {
		chunks = mergeSmallestPair(chunks)
	}

	return toSections(chunks)
}

// splitByHeadings cuts markdown at ATX headings outside fenced code blocks
func splitByHeadings(markdown string) []chunk {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")

	var (
		chunks  []chunk
		cur     = chunk{name: heroName}
		buf     []string
		inFence bool
	)
	flush := func() {
		cur.text = strings.TrimSpace(strings.Join(buf, "\n"))
		if cur.text != "" {
			chunks = append(chunks, cur)
		}
		buf = nil
	}

	for _, line := range lines {
		if fenceRe.MatchString(line) {
			inFence = !inFence
		}
		if !inFence {
			if m := headingRe.FindStringSubmatch(line); m != nil {
				flush()
				cur = chunk{name: slugify(m[2])}
			}
		}
		buf = append(buf, line)
	}
	flush()

	return chunks
}

// mergeSmall folds undersized chunks into the previous result, or forward
// into the next chunk when nothing precedes them
func mergeSmall(chunks []chunk, minChars int) []chunk {
	var (
		out     []chunk
		pending *chunk
	)
	for _, c := range chunks {
		if pending != nil {
			c = chunk{name: pending.name, text: pending.text + "\n\n" + c.text}
			pending = nil
		}
		if c.size() < minChars {
			if len(out) > 0 {
				last := &out[len(out)-1]
				last.text = last.text + "\n\n" + c.text
				continue
			}
			held := c
			pending = &held
			continue
		}
		out = append(out, c)
	}
	if pending != nil {
		out = append(out, *pending)
	}
	return out
}

// mergeSmallestPair merges the adjacent pair with the smallest combined size
func mergeSmallestPair(chunks []chunk) []chunk {
	if len(chunks) < 2 {
		return chunks
	}
	best := 0
	bestSize := chunks[0].size() + chunks[1].size()
	for i := 1; i < len(chunks)-1; i++ {
		if s := chunks[i].size() + chunks[i+1].size(); s < bestSize {
			best, bestSize = i, s
		}
	}

	merged := chunk{
		name: chunks[best].name,
		text: chunks[best].text + "\n\n" + chunks[best+1].text,
	}
	out := make([]chunk, 0, len(chunks)-1)
	out = append(out, chunks[:best]...)
	out = append(out, merged)
	out = append(out, chunks[best+2:]...)
	return out
}

func toSections(chunks []chunk) []domain.Section {
	total := 0
	for _, c := range chunks {
		total += c.size()
	}

	sections := make([]domain.Section, len(chunks))
	for i, c := range chunks {
		ratio := 1.0 / float64(len(chunks))
		if total > 0 {
			ratio = float64(c.size()) / float64(total)
		}
		sections[i] = domain.Section{
			ID:        domain.SectionID(i),
			Name:      c.name,
			Markdown:  c.text,
			CharRatio: ratio,
		}
	}
	return sections
}

// slugify turns heading text into a short lowercase label
func slugify(heading string) string {
	text := mdMarkRe.ReplaceAllString(heading, "")
	text = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	words := strings.Fields(text)
	if len(words) > maxNameWords {
		words = words[:maxNameWords]
	}
	slug := nonSlugRe.ReplaceAllString(strings.Join(words, "-"), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxNameLen {
		slug = strings.TrimRight(slug[:maxNameLen], "-")
	}
	if slug == "" {
		return fallbackName
	}
	return slug
}
