// ABOUTME: Patch phase: asks the model for targeted fixes and applies them with the patch engine
// ABOUTME: The patched document is kept only when global slots and text still match the baseline

package pipeline

import (
	"context"
	"fmt"

	"mockups-app-api/core/domain"
)

// patchEnvelope accepts {"patches":[...]} responses
type patchEnvelope struct {
	Patches []domain.Patch `json:"patches"`
}

func parsePatches(text string) ([]domain.Patch, error) {
	var list []domain.Patch
	if err := decodeJSON(text, &list); err == nil {
		return list, nil
	}
	var env patchEnvelope
	if err := decodeJSON(text, &env); err != nil {
		return nil, fmt.Errorf("patch response is neither an array nor an envelope: %w", err)
	}
	return env.Patches, nil
}

// patchPass applies model-suggested patches, reverting the batch on drift
func (g *Generator) patchPass(ctx context.Context, r *run) {
	if r.baseline == nil {
		g.logger.Warn("No content baseline, skipping patch pass", map[string]interface{}{"run_id": r.id})
		return
	}

	prompt := patchPrompt(r.html, r.design, g.cfg.MaxPatches)
	out, err := g.callModel(ctx, r, "patch", g.vision(r.fullImage(), prompt))
	var patches []domain.Patch
	if err == nil {
		patches, err = parsePatches(out)
	}
	if err != nil {
		g.logger.Warn("Patch call failed, keeping document", map[string]interface{}{
			"run_id": r.id,
			"error":  err.Error(),
		})
		return
	}
	if len(patches) > g.cfg.MaxPatches {
		patches = patches[:g.cfg.MaxPatches]
	}
	if len(patches) == 0 {
		return
	}

	patched, report := g.applier.Apply(r.html, patches)
	check := r.baseline.CheckGlobal(patched, g.thresholds())
	if !check.Passed {
		g.logger.Warn("Patched document drifted, reverting batch", map[string]interface{}{
			"run_id":     r.id,
			"similarity": check.Similarity,
			"slot_loss":  check.SlotLoss,
			"issues":     check.Issues,
		})
		return
	}

	r.html = patched
	r.result.PatchesApplied = report.Applied
	g.logger.Info("Patches applied", map[string]interface{}{
		"run_id":  r.id,
		"applied": report.Applied,
		"skipped": report.Skipped,
	})
}
