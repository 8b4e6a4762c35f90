package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockups-app-api/core/domain"
)

func boxesFor(names ...string) []domain.NormalizedBox {
	boxes := make([]domain.NormalizedBox, len(names))
	step := 1.0 / float64(len(names))
	for i, n := range names {
		boxes[i] = domain.NormalizedBox{
			SectionID: domain.SectionID(i),
			Name:      n,
			YStart:    float64(i) * step,
			YEnd:      float64(i+1) * step,
		}
	}
	return boxes
}

func TestSynthesizeSkeleton(t *testing.T) {
	doc := synthesizeSkeleton(boxesFor("hero", "Pricing Plans"), domain.DefaultDesignSystem())

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, `<section data-section="sec_0" class="section section-hero">{{sec_0}}</section>`)
	assert.Contains(t, doc, `class="section section-pricing-plans">{{sec_1}}</section>`)
	assert.Contains(t, doc, "#1a56db")
	assert.Len(t, sectionBlocks(doc), 2)
}

func TestRewriteSkeleton_Renumbers(t *testing.T) {
	skeleton := `<html><body><nav>menu</nav>` +
		`<section data-section="top" class="a">{{sec_4}} {{sec_4}}</section>` +
		`<section data-section="sec_9"><div>{{sec_1}}</div></section>` +
		`<footer>bye</footer></body></html>`

	out, err := rewriteSkeleton(skeleton, boxesFor("hero", "features"))
	require.NoError(t, err)

	blocks := sectionBlocks(out)
	require.Len(t, blocks, 2)
	for i, el := range blocks {
		id, _ := el.Attr(domain.SectionAttr)
		assert.Equal(t, domain.SectionID(i), id)
	}
	assert.Equal(t, 1, strings.Count(out, "{{sec_0}}"))
	assert.Equal(t, 1, strings.Count(out, "{{sec_1}}"))
	assert.NotContains(t, out, "{{sec_4}}")
	assert.Contains(t, out, "<nav>menu</nav>")
	assert.Contains(t, out, "<footer>bye</footer>")
}

func TestRewriteSkeleton_DropsExtrasAndAppendsMissing(t *testing.T) {
	two := `<body><section data-section="sec_0">{{sec_0}}</section><section data-section="sec_1">{{sec_1}}</section></body>`

	out, err := rewriteSkeleton(two, boxesFor("a"))
	require.NoError(t, err)
	assert.Len(t, sectionBlocks(out), 1)
	assert.NotContains(t, out, "sec_1")

	out, err = rewriteSkeleton(two, boxesFor("a", "b", "c"))
	require.NoError(t, err)
	assert.Len(t, sectionBlocks(out), 3)
	assert.Contains(t, out, "{{sec_2}}")
	assert.True(t, strings.HasSuffix(out, "</body>"))
}

func TestRewriteSkeleton_MissingPlaceholderInserted(t *testing.T) {
	out, err := rewriteSkeleton(`<section data-section="x"><div class="wrap"></div></section>`, boxesFor("a"))
	require.NoError(t, err)
	assert.Equal(t, `<section data-section="sec_0"><div class="wrap"></div>{{sec_0}}</section>`, out)
}

func TestRewriteSkeleton_NoBlocks(t *testing.T) {
	_, err := rewriteSkeleton("<div>{{sec_0}}</div>", boxesFor("a"))
	assert.Error(t, err)
}

func TestFillLocally(t *testing.T) {
	sections := []domain.Section{
		{ID: "sec_0", Markdown: "# Hello"},
		{ID: "sec_1", Markdown: "Some *text*"},
	}

	t.Run("per section placeholders", func(t *testing.T) {
		out := fillLocally("<div>{{sec_0}}</div><div>{{ sec_1 }}</div>", sections)
		assert.Equal(t, "<div><h1>Hello</h1></div><div><p>Some <em>text</em></p></div>", out)
	})

	t.Run("unknown placeholders collapse into the first", func(t *testing.T) {
		out := fillLocally("<div>{{sec_7}}</div><div>{{sec_8}}</div>", sections)
		assert.Equal(t, "<div><h1>Hello</h1>\n<p>Some <em>text</em></p></div><div></div>", out)
	})

	t.Run("no placeholder appends before body end", func(t *testing.T) {
		out := fillLocally("<body><main></main></body>", sections)
		assert.Equal(t, "<body><main></main><h1>Hello</h1>\n<p>Some <em>text</em></p>\n</body>", out)
	})
}

func TestFillLocally_EscapesRawHTML(t *testing.T) {
	out := fillLocally("{{sec_0}}", []domain.Section{{ID: "sec_0", Markdown: "<script>alert(1)</script>"}})
	assert.NotContains(t, out, "<script>")
}

func TestReplaceSection(t *testing.T) {
	doc := `<body><section data-section="sec_0">a</section><section data-section="sec_1">b</section></body>`

	out, ok := replaceSection(doc, "sec_1", `<section data-section="sec_1" class="x">b</section>`)
	require.True(t, ok)
	assert.Contains(t, out, `class="x"`)

	frag, ok := sectionHTML(out, "sec_0")
	require.True(t, ok)
	assert.Equal(t, `<section data-section="sec_0">a</section>`, frag)

	_, ok = replaceSection(doc, "sec_5", "")
	assert.False(t, ok)
}

func TestSectionBlocks_OutermostOnly(t *testing.T) {
	doc := `<section data-section="sec_0"><section data-section="inner">x</section></section><section data-section="sec_1">y</section>`
	blocks := sectionBlocks(doc)
	require.Len(t, blocks, 2)
	id, _ := blocks[1].Attr(domain.SectionAttr)
	assert.Equal(t, "sec_1", id)
}

func TestClassSafe(t *testing.T) {
	assert.Equal(t, "pricing-plans", classSafe("Pricing Plans!"))
	assert.Equal(t, "block", classSafe("***"))
}
