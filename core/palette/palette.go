// ABOUTME: Dominant colour extraction from page screenshots
// ABOUTME: Uses K-means clustering to hint the design-system prompt with real page colours

package palette

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/EdlinOrg/prominentcolor"
)

// DefaultColors is the number of colours returned by Extract
const DefaultColors = 3

// Extract returns up to k dominant colours of img as "#rrggbb" strings, most
// prominent first
func Extract(img image.Image, k int) (colors []string, err error) {
	// prominentcolor panics on some degenerate inputs
	defer func() {
		if rec := recover(); rec != nil {
			colors, err = nil, fmt.Errorf("palette extraction panicked: %v", rec)
		}
	}()

	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("image has empty bounds")
	}
	if k <= 0 {
		k = DefaultColors
	}

	bounds := img.Bounds()
	nrgba := image.NewNRGBA(bounds)
	draw.Draw(nrgba, bounds, img, bounds.Min, draw.Src)

	items, err := prominentcolor.KmeansWithAll(
		k,
		nrgba,
		prominentcolor.ArgumentNoCropping,
		prominentcolor.DefaultSize,
		prominentcolor.GetDefaultMasks(),
	)
	// Retry without background masks when the page is mostly white or black
	if err != nil || len(items) == 0 {
		items, err = prominentcolor.KmeansWithAll(
			k,
			nrgba,
			prominentcolor.ArgumentNoCropping,
			prominentcolor.DefaultSize,
			nil,
		)
		if err != nil || len(items) == 0 {
			return nil, fmt.Errorf("no colors extracted from image")
		}
	}

	colors = make([]string, 0, len(items))
	for _, item := range items {
		colors = append(colors, Hex(uint8(item.Color.R), uint8(item.Color.G), uint8(item.Color.B)))
	}
	return colors, nil
}

// Hex formats an RGB triple as a CSS hex colour
func Hex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
