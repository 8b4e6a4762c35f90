package popup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mockups-app-api/core/domain"
)

const page = `<body><header class="top"><nav class="menu"></nav></header>
<section data-section="sec_0"><h1 data-slot="headline">Hi</h1></section>
<div class="cookie-banner"><div><button>Accept</button></div></div>
<div id="newsletter" class="modal"><p>Join</p></div>
<div class="sticky-cta-bar"><a>Buy</a></div>
<footer class="modal-footer"></footer>
</body>`

func TestFilter_NoDescriptorsIsIdentity(t *testing.T) {
	out, res := Filter(page, nil, nil)

	assert.Equal(t, page, out)
	assert.Equal(t, Result{}, res)
}

func TestFilter_RemovesByClassIDAndBareToken(t *testing.T) {
	out, res := Filter(page, []domain.OverlayDescriptor{
		{Type: "cookie_banner", CSSHint: "cookie-banner"},
		{Type: "newsletter_modal", CSSHint: "#newsletter"},
	}, nil)

	assert.Equal(t, 2, res.Removed)
	assert.NotContains(t, out, "cookie-banner")
	assert.NotContains(t, out, "Accept")
	assert.NotContains(t, out, "newsletter")
	assert.Contains(t, out, `data-slot="headline"`)
}

func TestFilter_RefusesProtectedTargets(t *testing.T) {
	overlays := []domain.OverlayDescriptor{
		{Type: "bar", CSSHint: ".sticky-cta-bar"},
		{Type: "header", CSSHint: ".top"},
		{Type: "footer", CSSHint: "footer.modal-footer"},
		{Type: "hero", CSSHint: "[data-section='sec_0']"},
		{Type: "slot", CSSHint: "[data-slot='headline']"},
	}

	out, res := Filter(page, overlays, nil)

	assert.Equal(t, page, out)
	assert.Equal(t, 5, res.Refused)
}

func TestFilter_UnusableOrMissingHints(t *testing.T) {
	out, res := Filter(page, []domain.OverlayDescriptor{
		{Type: "modal", CSSHint: "position: fixed;"},
		{Type: "modal", CSSHint: ""},
		{Type: "modal", CSSHint: ".does-not-exist"},
	}, nil)

	assert.Equal(t, page, out)
	assert.Equal(t, 3, res.Missed)
}

func TestFilter_MultiWordHintUsesFirstUsableWord(t *testing.T) {
	out, res := Filter(page, []domain.OverlayDescriptor{
		{Type: "modal", CSSHint: "div > .modal"},
	}, nil)

	assert.Equal(t, 1, res.Removed)
	assert.NotContains(t, out, "Join")
}
