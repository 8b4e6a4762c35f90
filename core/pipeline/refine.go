// ABOUTME: Per-section refinement phase: parallel vision calls on cropped section images
// ABOUTME: Candidates are accepted only when slots and text survive; rejects keep the original block

package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mockups-app-api/core/cropper"
	"mockups-app-api/core/domain"
	coreerrors "mockups-app-api/core/errors"
)

// retryPool is the run-wide allowance of extra refinement attempts
type retryPool struct {
	mu   sync.Mutex
	left int
}

func (p *retryPool) take() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.left <= 0 {
		return false
	}
	p.left--
	return true
}

type refineOutcome struct {
	id        string
	fragment  string
	attempted bool
	accepted  bool
}

// refineSections refines every section block against its crop in parallel
func (g *Generator) refineSections(ctx context.Context, r *run) {
	if r.baseline == nil {
		g.logger.Warn("No content baseline, skipping refinement", map[string]interface{}{"run_id": r.id})
		return
	}
	img := r.image()
	if img == nil {
		g.logger.Warn("Screenshot not decodable, skipping refinement", map[string]interface{}{"run_id": r.id})
		return
	}

	pool := &retryPool{left: g.cfg.MaxRefineRetries}
	outcomes := make([]refineOutcome, len(r.boxes))
	var wg sync.WaitGroup

	for i, box := range r.boxes {
		fragment, ok := sectionHTML(r.html, box.SectionID)
		if !ok {
			g.logger.Warn("Section block missing, not refining", map[string]interface{}{
				"run_id":     r.id,
				"section_id": box.SectionID,
			})
			continue
		}
		crop, err := cropper.CropImage(img, box, cropper.DefaultCropOptions())
		if err != nil {
			g.logger.Warn("Failed to crop section", map[string]interface{}{
				"run_id":     r.id,
				"section_id": box.SectionID,
				"error":      err.Error(),
			})
			continue
		}

		wg.Add(1)
		go func(i int, box domain.NormalizedBox, fragment string, crop *cropper.Crop) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					g.logger.Error("Section refinement panicked", map[string]interface{}{
						"run_id":     r.id,
						"section_id": box.SectionID,
						"error":      fmt.Sprint(rec),
					})
					outcomes[i] = refineOutcome{id: box.SectionID, attempted: true}
				}
			}()
			outcomes[i] = g.refineOne(ctx, r, box, fragment, crop.Data, pool)
		}(i, box, fragment, crop)
	}
	wg.Wait()

	doc := r.html
	for _, o := range outcomes {
		if !o.attempted {
			continue
		}
		if !o.accepted {
			r.result.SectionsRejected++
			continue
		}
		if next, ok := replaceSection(doc, o.id, o.fragment); ok {
			doc = next
			r.result.SectionsRefined++
		}
	}
	r.html = doc
}

// refineOne runs the call, validate, retry loop for a single section
func (g *Generator) refineOne(ctx context.Context, r *run, box domain.NormalizedBox, fragment string, image []byte, pool *retryPool) refineOutcome {
	ctx, span := g.tracer.Start(ctx, "pipeline.refine_section", trace.WithAttributes(
		attribute.String("section_id", box.SectionID),
		attribute.String("section_name", box.Name),
	))
	defer span.End()

	outcome := refineOutcome{id: box.SectionID, attempted: true}
	prompt := refinePrompt(box.SectionID, fragment, r.design, r.imageURLs)
	fields := func(extra map[string]interface{}) map[string]interface{} {
		f := map[string]interface{}{"run_id": r.id, "section_id": box.SectionID}
		for k, v := range extra {
			f[k] = v
		}
		return f
	}

	for attempt := 0; ; attempt++ {
		if attempt > 0 && !pool.take() {
			break
		}
		span.SetAttributes(attribute.Int("attempts", attempt+1))

		out, err := g.callModel(ctx, r, "refine", g.vision(image, prompt))
		if err != nil {
			g.logger.Warn("Section refinement call failed", fields(map[string]interface{}{
				"attempt": attempt + 1,
				"error":   err.Error(),
			}))
			if coreerrors.IsBudgetExceeded(err) || ctx.Err() != nil {
				break
			}
			continue
		}

		candidate, err := candidateSection(out, box.SectionID)
		if err != nil {
			g.logger.Warn("Section candidate unusable", fields(map[string]interface{}{
				"attempt": attempt + 1,
				"error":   err.Error(),
			}))
			continue
		}

		report := r.baseline.CheckSection(box.SectionID, candidate, g.thresholds())
		span.SetAttributes(attribute.Float64("similarity", report.Similarity))
		if report.Passed {
			outcome.accepted = true
			outcome.fragment = candidate
			return outcome
		}
		g.logger.Warn("Section candidate rejected", fields(map[string]interface{}{
			"attempt":    attempt + 1,
			"similarity": report.Similarity,
			"slot_loss":  report.SlotLoss,
			"issues":     report.Issues,
		}))
	}

	span.SetAttributes(attribute.Bool("rejected", true))
	return outcome
}

// candidateSection pulls the block carrying id out of a model response
func candidateSection(text, id string) (string, error) {
	doc, err := extractHTML(text)
	if err != nil {
		return "", err
	}
	fragment, ok := sectionHTML(doc, id)
	if !ok {
		return "", fmt.Errorf("response has no section block %s", id)
	}
	return fragment, nil
}
