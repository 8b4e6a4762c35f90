package segmenter

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockups-app-api/core/domain"
)

func paragraph(words int) string {
	return strings.TrimSpace(strings.Repeat("lorem ipsum ", words/2))
}

func assertWellFormed(t *testing.T, sections []domain.Section) {
	t.Helper()
	require.GreaterOrEqual(t, len(sections), 1)
	require.LessOrEqual(t, len(sections), DefaultMaxSections)

	sum := 0.0
	for i, s := range sections {
		assert.Equal(t, fmt.Sprintf("sec_%d", i), s.ID)
		assert.NotEmpty(t, s.Name)
		sum += s.CharRatio
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSegment_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   \n\t  "} {
		sections := Segment(input, nil)

		require.Len(t, sections, 1)
		assert.Equal(t, "sec_0", sections[0].ID)
		assert.Equal(t, 1.0, sections[0].CharRatio)
	}
}

func TestSegment_HeroAndHeadings(t *testing.T) {
	md := paragraph(60) + "\n\n## Why Choose Us?\n\n" + paragraph(80) + "\n\n## Pricing & Plans\n\n" + paragraph(80)

	sections := Segment(md, nil)

	assertWellFormed(t, sections)
	require.Len(t, sections, 3)
	assert.Equal(t, "hero", sections[0].Name)
	assert.Equal(t, "why-choose-us", sections[1].Name)
	assert.Equal(t, "pricing-plans", sections[2].Name)
	assert.True(t, strings.HasPrefix(sections[1].Markdown, "## Why Choose Us?"))
}

func TestSegment_SmallChunksMergeBackward(t *testing.T) {
	md := "# Big Offer\n\n" + paragraph(80) + "\n\n## Tiny\n\nshort\n\n## Details\n\n" + paragraph(80)

	sections := Segment(md, nil)

	assertWellFormed(t, sections)
	require.Len(t, sections, 2)
	assert.Equal(t, "big-offer", sections[0].Name)
	assert.Contains(t, sections[0].Markdown, "## Tiny")
	assert.Equal(t, "details", sections[1].Name)
}

func TestSegment_LeadingSmallChunkMergesForward(t *testing.T) {
	md := "Welcome!\n\n## Main Story\n\n" + paragraph(80)

	sections := Segment(md, nil)

	require.Len(t, sections, 1)
	assert.Equal(t, "hero", sections[0].Name)
	assert.Contains(t, sections[0].Markdown, "Welcome!")
	assert.Contains(t, sections[0].Markdown, "## Main Story")
}

func TestSegment_SingleSmallChunkReturnsAsIs(t *testing.T) {
	sections := Segment("Just one line.", nil)

	require.Len(t, sections, 1)
	assert.Equal(t, "Just one line.", sections[0].Markdown)
	assert.Equal(t, 1.0, sections[0].CharRatio)
}

func TestSegment_CapsAtEightSections(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "## Heading %d\n\n%s\n\n", i, paragraph(60+i*4))
	}

	sections := Segment(b.String(), nil)

	assertWellFormed(t, sections)
	assert.Len(t, sections, DefaultMaxSections)
	assert.Contains(t, sections[0].Markdown, "Heading 0")
	assert.Contains(t, sections[len(sections)-1].Markdown, "Heading 19")
}

func TestSegment_HintsLowerTheCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, "## Part %d\n\n%s\n\n", i, paragraph(80))
	}

	sections := Segment(b.String(), &Hints{MaxSections: 3})

	assertWellFormed(t, sections)
	assert.Len(t, sections, 3)
}

func TestSegment_IgnoresHeadingsInCodeFences(t *testing.T) {
	md := "# Install\n\n" + paragraph(60) + "\n\n```sh\n# not a heading\necho hi\n```\n\n" + paragraph(40)

	sections := Segment(md, nil)

	require.Len(t, sections, 1)
	assert.Equal(t, "install", sections[0].Name)
}

func TestSegment_RatiosFollowSizes(t *testing.T) {
	md := "# A\n\n" + paragraph(100) + "\n\n# B\n\n" + paragraph(300)

	sections := Segment(md, nil)

	require.Len(t, sections, 2)
	assert.Less(t, sections[0].CharRatio, sections[1].CharRatio)
	assert.False(t, math.IsNaN(sections[0].CharRatio))
}

func TestSegment_CountAlwaysWithinBounds(t *testing.T) {
	inputs := []string{
		"#",
		"# only heading",
		strings.Repeat("# h\n", 50),
		strings.Repeat("x", 5000),
		strings.Repeat("## a\n\n"+paragraph(90)+"\n\n", 12),
	}
	for _, md := range inputs {
		assertWellFormed(t, Segment(md, nil))
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "get-started-today-with", slugify("**Get** started today with our [app](x)"))
	assert.Equal(t, "section", slugify("!!!"))
	assert.Equal(t, "faq", slugify("FAQ"))
}

func TestHintsFromElements(t *testing.T) {
	assert.Nil(t, HintsFromElements(nil))
	assert.Nil(t, HintsFromElements(&domain.ElementHints{}))
	assert.Equal(t, 2, HintsFromElements(&domain.ElementHints{SectionNames: []string{"hero", "faq"}}).MaxSections)
}
