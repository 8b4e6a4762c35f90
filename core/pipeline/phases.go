// ABOUTME: Design-system, layout and content phases of the generation pipeline
// ABOUTME: Each phase leaves run.html at the best output reachable so far

package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"dario.cat/mergo"

	"mockups-app-api/core/cropper"
	"mockups-app-api/core/domain"
	coreerrors "mockups-app-api/core/errors"
	"mockups-app-api/core/invariants"
	"mockups-app-api/core/palette"
	"mockups-app-api/pkg/featureflags"
)

const designAttempts = 2

// layoutResponse is the JSON shape returned by the layout call
type layoutResponse struct {
	Sections []domain.RawBox `json:"sections"`
	Skeleton string          `json:"skeleton_html"`
}

func designCacheKey(screenshot []byte) string {
	sum := sha256.Sum256(screenshot)
	return "design:" + hex.EncodeToString(sum[:])
}

// extractDesign fills run.design from the screenshot, falling back to the default
func (g *Generator) extractDesign(ctx context.Context, r *run) {
	useCache := g.deps.Cache != nil && featureflags.IsEnabled(ctx, featureflags.DesignCache) && len(r.req.Screenshot) > 0
	key := designCacheKey(r.req.Screenshot)

	if useCache {
		if data, err := g.deps.Cache.Get(ctx, key); err == nil {
			var cached domain.DesignSystem
			if err := json.Unmarshal(data, &cached); err == nil {
				r.design = cached
				g.logger.Debug("Design system cache hit", map[string]interface{}{"run_id": r.id})
				return
			}
		}
	}

	var colors []string
	if img := r.image(); img != nil {
		if c, err := palette.Extract(img, palette.DefaultColors); err == nil {
			colors = c
		}
	}
	prompt := designPrompt(r.req.Markdown, colors)

	for attempt := 0; attempt < designAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, g.cfg.RetryBackoff); err != nil {
				break
			}
		}

		out, err := g.invoke(ctx, r, g.vision(r.fullImage(), prompt))
		if err == nil {
			var design domain.DesignSystem
			if design, err = parseDesign(out); err == nil {
				r.design = design
				if useCache {
					g.storeDesign(ctx, key, design)
				}
				return
			}
		}

		g.logger.Warn("Design system extraction failed", map[string]interface{}{
			"run_id":  r.id,
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
		if coreerrors.IsBudgetExceeded(err) {
			break
		}
	}

	r.design = domain.DefaultDesignSystem()
	g.logger.Info("Using default design system", map[string]interface{}{"run_id": r.id})
}

func (g *Generator) storeDesign(ctx context.Context, key string, design domain.DesignSystem) {
	data, err := json.Marshal(design)
	if err != nil {
		return
	}
	if err := g.deps.Cache.Set(ctx, key, data, g.cfg.DesignCacheTTL); err != nil {
		g.logger.Warn("Failed to cache design system", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// parseDesign decodes a model design system and fills blanks from the default
func parseDesign(text string) (domain.DesignSystem, error) {
	var design domain.DesignSystem
	if err := decodeJSON(text, &design); err != nil {
		return domain.DesignSystem{}, err
	}
	if design.Colors == (domain.ColorPalette{}) && design.Typography == (domain.Typography{}) {
		return domain.DesignSystem{}, fmt.Errorf("design system has neither colors nor typography")
	}
	if err := mergo.Merge(&design, domain.DefaultDesignSystem()); err != nil {
		return domain.DesignSystem{}, err
	}
	return design, nil
}

// buildLayout reconciles model boxes with the sections and prepares the skeleton
func (g *Generator) buildLayout(ctx context.Context, r *run) {
	prompt := layoutPrompt(r.sections, r.design, r.req.Hints)
	out, err := g.callModel(ctx, r, "layout", g.vision(r.fullImage(), prompt))

	var resp layoutResponse
	if err == nil {
		err = decodeJSON(out, &resp)
	}
	if err != nil {
		g.logger.Warn("Layout call failed, synthesizing skeleton", map[string]interface{}{
			"run_id": r.id,
			"error":  err.Error(),
		})
		r.boxes = cropper.BoxesFromRatios(r.sections)
		r.skeleton = synthesizeSkeleton(r.boxes, r.design)
		r.html = localDraft(r.skeleton, r.sections)
		return
	}

	boxes, source := cropper.Reconcile(scalePercent(resp.Sections), r.sections, g.cfg.CoverageThreshold)
	skeleton, err := rewriteSkeleton(resp.Skeleton, boxes)
	if err != nil {
		g.logger.Warn("Model skeleton unusable, synthesizing", map[string]interface{}{
			"run_id": r.id,
			"error":  err.Error(),
		})
		skeleton = synthesizeSkeleton(boxes, r.design)
	}

	r.boxes = boxes
	r.skeleton = skeleton
	r.html = localDraft(skeleton, r.sections)

	g.logger.Info("Layout reconciled", map[string]interface{}{
		"run_id":     r.id,
		"boxes":      len(boxes),
		"box_source": string(source),
		"model_rows": len(resp.Sections),
	})
}

// scalePercent converts 0-100 percentages to fractions when any bound exceeds 1
func scalePercent(raw []domain.RawBox) []domain.RawBox {
	percent := false
	for _, b := range raw {
		if b.YStart > 1 || b.YEnd > 1 {
			percent = true
			break
		}
	}
	if !percent {
		return raw
	}
	out := make([]domain.RawBox, len(raw))
	for i, b := range raw {
		out[i] = domain.RawBox{Name: b.Name, YStart: b.YStart / 100, YEnd: b.YEnd / 100}
	}
	return out
}

// injectContent fills the skeleton with section text and captures the baseline
func (g *Generator) injectContent(ctx context.Context, r *run) {
	contextText, prompt := contentPrompt(r.skeleton, r.sections)
	out, err := g.callModel(ctx, r, "content", g.text(contextText, prompt))

	var doc string
	if err == nil {
		doc, err = extractHTML(out)
	}
	if err == nil && len(sectionBlocks(doc)) == 0 {
		err = fmt.Errorf("content html has no %s blocks", domain.SectionAttr)
	}
	if err != nil {
		g.logger.Warn("Content call failed, filling skeleton locally", map[string]interface{}{
			"run_id": r.id,
			"error":  err.Error(),
		})
		doc = fillLocally(r.skeleton, r.sections)
	} else {
		doc = fillMissing(doc, r.sections)
	}

	doc, added := ensureMinimumSlots(doc, minSlots)
	if added > 0 {
		g.logger.Debug("Added slot markers", map[string]interface{}{
			"run_id": r.id,
			"added":  added,
		})
	}

	r.html = doc
	started := time.Now()
	baseline, err := invariants.Capture(doc)
	if err != nil {
		g.logger.Error("Failed to capture content baseline", map[string]interface{}{
			"run_id": r.id,
			"error":  err.Error(),
		})
		return
	}
	r.baseline = baseline
	g.logger.Debug("Captured content baseline", map[string]interface{}{
		"run_id":      r.id,
		"slots":       len(baseline.GlobalSlots),
		"sections":    baseline.SectionCount,
		"duration_ms": time.Since(started).Milliseconds(),
	})
}
