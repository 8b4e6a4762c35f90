// ABOUTME: Screenshot cropping for per-section vision calls
// ABOUTME: Crops a page band, re-encodes it and degrades quality or size until under the byte cap

package cropper

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP screenshots

	"mockups-app-api/core/domain"
	coreerrors "mockups-app-api/core/errors"
)

const (
	// DefaultMaxBytes is the encoded size cap for a crop
	DefaultMaxBytes = 2 * 1024 * 1024

	// DefaultPadding expands a crop by this share of page height on each side
	DefaultPadding = 0.05

	// MinCropHeight is the smallest crop height in pixels
	MinCropHeight = 10

	minDownscaleSide = 16
	downscaleFactor  = 0.75
	pixelEpsilon     = 1e-6
)

var jpegQualities = []int{85, 70, 55}

// CropOptions controls padding and size capping
type CropOptions struct {
	Pad      bool
	Padding  float64
	MaxBytes int
}

// DefaultCropOptions returns padded crops capped at 2MB
func DefaultCropOptions() CropOptions {
	return CropOptions{Pad: true, Padding: DefaultPadding, MaxBytes: DefaultMaxBytes}
}

// Crop is an encoded section image
type Crop struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
}

// Decode parses a screenshot in PNG, JPEG, GIF or WebP format
func Decode(screenshot []byte) (image.Image, error) {
	if len(screenshot) == 0 {
		return nil, &coreerrors.ValidationError{Field: "screenshot", Message: "is empty"}
	}
	img, _, err := image.Decode(bytes.NewReader(screenshot))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, &coreerrors.ValidationError{Field: "screenshot", Message: "has empty bounds"}
	}
	return img, nil
}

// CropBytes decodes the screenshot and crops it to box
func CropBytes(screenshot []byte, box domain.NormalizedBox, opts CropOptions) (*Crop, error) {
	img, err := Decode(screenshot)
	if err != nil {
		return nil, err
	}
	return CropImage(img, box, opts)
}

// CropImage crops a decoded page image to the vertical band described by box
func CropImage(img image.Image, box domain.NormalizedBox, opts CropOptions) (*Crop, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}

	rect := cropRect(img.Bounds(), box, opts)
	band := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(band, band.Bounds(), img, rect.Min, draw.Src)

	return encodeCapped(band, opts.MaxBytes)
}

// cropRect maps a box onto pixel rows, honoring padding and the minimum height
func cropRect(bounds image.Rectangle, box domain.NormalizedBox, opts CropOptions) image.Rectangle {
	start, end := clamp01(box.YStart), clamp01(box.YEnd)
	if start > end {
		start, end = end, start
	}
	if opts.Pad {
		pad := opts.Padding
		if pad <= 0 {
			pad = DefaultPadding
		}
		start = clamp01(start - pad)
		end = clamp01(end + pad)
	}

	h := bounds.Dy()
	y0 := int(math.Floor(start*float64(h) + pixelEpsilon))
	y1 := int(math.Ceil(end*float64(h) - pixelEpsilon))

	minHeight := MinCropHeight
	if minHeight > h {
		minHeight = h
	}
	if y1-y0 < minHeight {
		y1 = y0 + minHeight
		if y1 > h {
			y1 = h
			y0 = h - minHeight
		}
	}

	return image.Rect(bounds.Min.X, bounds.Min.Y+y0, bounds.Max.X, bounds.Min.Y+y1)
}

// encodeCapped tries PNG, then JPEG at falling quality, then downscaled JPEG
func encodeCapped(img image.Image, maxBytes int) (*Crop, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode crop: %w", err)
	}
	b := img.Bounds()
	if buf.Len() <= maxBytes {
		return &Crop{Data: buf.Bytes(), MIMEType: "image/png", Width: b.Dx(), Height: b.Dy()}, nil
	}

	for _, q := range jpegQualities {
		data, err := encodeJPEG(img, q)
		if err != nil {
			return nil, err
		}
		if len(data) <= maxBytes {
			return &Crop{Data: data, MIMEType: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
		}
	}

	current := img
	quality := jpegQualities[len(jpegQualities)-1]
	for {
		cb := current.Bounds()
		w := int(float64(cb.Dx()) * downscaleFactor)
		h := int(float64(cb.Dy()) * downscaleFactor)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), current, cb, draw.Src, nil)

		data, err := encodeJPEG(scaled, quality)
		if err != nil {
			return nil, err
		}
		if len(data) <= maxBytes || (w <= minDownscaleSide && h <= minDownscaleSide) {
			return &Crop{Data: data, MIMEType: "image/jpeg", Width: w, Height: h}, nil
		}
		current = scaled
	}
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode crop as jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
