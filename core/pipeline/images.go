// ABOUTME: Image URL harvesting from page markdown and upstream hints
// ABOUTME: Relative links are resolved against the page URL so refinements can reference real assets

package pipeline

import (
	"net/url"
	"regexp"
	"strings"

	"mockups-app-api/core/domain"
)

const maxImageURLs = 12

var mdImageRe = regexp.MustCompile(`!\[[^\]]*\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)

// harvestImageURLs collects absolute image URLs, hints first, without duplicates
func harvestImageURLs(markdown, pageURL string, hints *domain.ElementHints) []string {
	base, _ := url.Parse(pageURL)

	seen := make(map[string]bool)
	var out []string
	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "data:") || len(out) >= maxImageURLs {
			return
		}
		u, err := url.Parse(raw)
		if err != nil {
			return
		}
		if !u.IsAbs() {
			if base == nil || !base.IsAbs() {
				return
			}
			u = base.ResolveReference(u)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return
		}
		abs := u.String()
		if seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, abs)
	}

	if hints != nil {
		for _, u := range hints.ImageURLs {
			add(u)
		}
	}
	for _, m := range mdImageRe.FindAllStringSubmatch(markdown, -1) {
		add(m[1])
	}
	return out
}
