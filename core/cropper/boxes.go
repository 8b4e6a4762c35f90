// ABOUTME: Bounding-box normalization and reconciliation for page sections
// ABOUTME: Turns model boxes or segmenter ratios into a sorted, gap-free partition of page height

package cropper

import (
	"math"
	"sort"

	"mockups-app-api/core/domain"
)

const (
	// DefaultMinCoverage is the share of page height a normalized box set must cover
	DefaultMinCoverage = 0.8

	// DefaultMaxCountDiff is the largest model/segmenter count gap that is reconciled
	// instead of discarded
	DefaultMaxCountDiff = 2

	edgeSnap = 0.02
	gapClose = 0.01
)

// BoxSource records where a reconciled box set came from
type BoxSource string

const (
	// SourceModel means the layout model's boxes survived normalization
	SourceModel BoxSource = "model"

	// SourceRatios means boxes were rebuilt from segmenter character ratios
	SourceRatios BoxSource = "ratios"
)

// NormalizeBoxes validates raw model boxes. It returns nil when fewer than two
// boxes survive or the surviving boxes cover less than minCoverage of the page.
// Survivors are renumbered sec_0..sec_{k-1}.
func NormalizeBoxes(raw []domain.RawBox, minCoverage float64) []domain.NormalizedBox {
	if minCoverage <= 0 {
		minCoverage = DefaultMinCoverage
	}

	boxes := make([]domain.NormalizedBox, 0, len(raw))
	for _, r := range raw {
		start, end := clamp01(r.YStart), clamp01(r.YEnd)
		if start > end {
			start, end = end, start
		}
		if start >= end {
			continue
		}
		boxes = append(boxes, domain.NormalizedBox{Name: r.Name, YStart: start, YEnd: end})
	}

	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].YStart < boxes[j].YStart
	})

	// Trim overlaps by pulling the earlier box's end back
	out := make([]domain.NormalizedBox, 0, len(boxes))
	for _, b := range boxes {
		for len(out) > 0 {
			last := &out[len(out)-1]
			if last.YEnd <= b.YStart {
				break
			}
			last.YEnd = b.YStart
			if last.YEnd > last.YStart {
				break
			}
			out = out[:len(out)-1]
		}
		out = append(out, b)
	}

	if len(out) < 2 {
		return nil
	}

	if out[0].YStart <= edgeSnap {
		out[0].YStart = 0
	}
	if last := &out[len(out)-1]; last.YEnd >= 1-edgeSnap {
		last.YEnd = 1
	}

	for i := 0; i < len(out)-1; i++ {
		if out[i+1].YStart-out[i].YEnd > gapClose {
			out[i].YEnd = out[i+1].YStart
		}
	}

	if Coverage(out) < minCoverage {
		return nil
	}

	renumber(out)
	return out
}

// BoxesFromRatios converts section character ratios into a cumulative partition
// of [0,1], one box per section
func BoxesFromRatios(sections []domain.Section) []domain.NormalizedBox {
	if len(sections) == 0 {
		return nil
	}

	total := 0.0
	for _, s := range sections {
		if s.CharRatio > 0 {
			total += s.CharRatio
		}
	}

	boxes := make([]domain.NormalizedBox, len(sections))
	cursor := 0.0
	for i, s := range sections {
		share := 1.0 / float64(len(sections))
		if total > 0 {
			share = math.Max(s.CharRatio, 0) / total
		}
		end := cursor + share
		if i == len(sections)-1 {
			end = 1
		}
		boxes[i] = domain.NormalizedBox{
			SectionID: domain.SectionID(i),
			Name:      s.Name,
			YStart:    cursor,
			YEnd:      end,
		}
		cursor = end
	}
	return boxes
}

// Reconcile forces model boxes onto the segmenter's section count.
//
// Model boxes are discarded for ratio boxes when the counts differ by more than
// DefaultMaxCountDiff or when normalization rejects them. Otherwise the smallest
// adjacent pair is merged (model has more) or the tallest box halved (model has
// fewer) until the counts match. The result always has len(sections) boxes.
func Reconcile(raw []domain.RawBox, sections []domain.Section, minCoverage float64) ([]domain.NormalizedBox, BoxSource) {
	want := len(sections)
	if want == 0 {
		return nil, SourceRatios
	}
	if len(raw) == 0 || absInt(len(raw)-want) > DefaultMaxCountDiff {
		return BoxesFromRatios(sections), SourceRatios
	}

	boxes := NormalizeBoxes(raw, minCoverage)
	if boxes == nil || absInt(len(boxes)-want) > DefaultMaxCountDiff {
		return BoxesFromRatios(sections), SourceRatios
	}

	for len(boxes) > want {
		boxes = mergeSmallestPair(boxes)
	}
	for len(boxes) < want {
		boxes = splitLargest(boxes)
	}

	for i := range boxes {
		if boxes[i].Name == "" {
			boxes[i].Name = sections[i].Name
		}
	}
	renumber(boxes)
	return boxes, SourceModel
}

// Coverage returns the total height covered by the boxes
func Coverage(boxes []domain.NormalizedBox) float64 {
	total := 0.0
	for _, b := range boxes {
		total += b.Height()
	}
	return total
}

func mergeSmallestPair(boxes []domain.NormalizedBox) []domain.NormalizedBox {
	if len(boxes) < 2 {
		return boxes
	}
	best := 0
	bestHeight := boxes[0].Height() + boxes[1].Height()
	for i := 1; i < len(boxes)-1; i++ {
		if h := boxes[i].Height() + boxes[i+1].Height(); h < bestHeight {
			best, bestHeight = i, h
		}
	}

	merged := boxes[best]
	merged.YEnd = boxes[best+1].YEnd

	out := make([]domain.NormalizedBox, 0, len(boxes)-1)
	out = append(out, boxes[:best]...)
	out = append(out, merged)
	out = append(out, boxes[best+2:]...)
	return out
}

func splitLargest(boxes []domain.NormalizedBox) []domain.NormalizedBox {
	if len(boxes) == 0 {
		return boxes
	}
	largest := 0
	for i := range boxes {
		if boxes[i].Height() > boxes[largest].Height() {
			largest = i
		}
	}

	top := boxes[largest]
	mid := top.YStart + top.Height()/2
	bottom := top
	top.YEnd = mid
	bottom.YStart = mid

	out := make([]domain.NormalizedBox, 0, len(boxes)+1)
	out = append(out, boxes[:largest]...)
	out = append(out, top, bottom)
	out = append(out, boxes[largest+1:]...)
	return out
}

func renumber(boxes []domain.NormalizedBox) {
	for i := range boxes {
		boxes[i].SectionID = domain.SectionID(i)
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
