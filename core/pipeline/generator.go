// ABOUTME: Pipeline orchestrator composing the five generation phases into one budgeted run
// ABOUTME: Every failure degrades to a local fallback; Generate always returns usable HTML

package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mockups-app-api/core/config"
	"mockups-app-api/core/cropper"
	"mockups-app-api/core/domain"
	coreerrors "mockups-app-api/core/errors"
	"mockups-app-api/core/interfaces"
	"mockups-app-api/core/invariants"
	"mockups-app-api/core/patch"
	"mockups-app-api/core/popup"
	"mockups-app-api/core/ratelimit"
	"mockups-app-api/core/segmenter"
	"mockups-app-api/pkg/featureflags"
)

const tracerName = "mockups.core.pipeline"

// ProgressFunc receives the phase number and a short message at the start of
// each phase. Panics inside it are swallowed.
type ProgressFunc func(phase domain.Phase, message string)

// Generator runs mockup generation pipelines
type Generator struct {
	deps    interfaces.Dependencies
	logger  interfaces.Logger
	limiter *ratelimit.Limiter
	cfg     config.PipelineConfig
	applier *patch.Applier
	tracer  trace.Tracer
}

// New creates a generator. A nil limiter gets the default limiter settings.
// The limiter should be shared by every generator talking to the same model.
func New(deps interfaces.Dependencies, limiter *ratelimit.Limiter, opts ...config.PipelineOption) *Generator {
	logger := deps.Logger
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.DefaultConfig(), logger)
	}
	cfg := config.NewPipelineConfig(opts...)

	return &Generator{
		deps:    deps,
		logger:  logger,
		limiter: limiter,
		cfg:     cfg,
		applier: patch.NewApplier(logger, patch.WithContainsMatchCap(cfg.ContainsMatchCap)),
		tracer:  otel.Tracer(tracerName),
	}
}

// Config returns the generator's effective configuration
func (g *Generator) Config() config.PipelineConfig {
	return g.cfg
}

// run is the mutable state of one generation
type run struct {
	id       string
	req      domain.GenerateRequest
	budget   *budget
	progress ProgressFunc

	sections  []domain.Section
	boxes     []domain.NormalizedBox
	design    domain.DesignSystem
	skeleton  string
	html      string
	baseline  *invariants.Baseline
	imageURLs []string

	decodeOnce sync.Once
	img        image.Image
	fullOnce   sync.Once
	full       []byte

	result domain.PipelineResult
}

// image decodes the screenshot once; nil when it cannot be decoded
func (r *run) image() image.Image {
	r.decodeOnce.Do(func() {
		img, err := cropper.Decode(r.req.Screenshot)
		if err == nil {
			r.img = img
		}
	})
	return r.img
}

// fullImage is the whole screenshot re-encoded under the crop size cap
func (r *run) fullImage() []byte {
	r.fullOnce.Do(func() {
		r.full = r.req.Screenshot
		img := r.image()
		if img == nil || len(r.full) <= cropper.DefaultMaxBytes {
			return
		}
		whole := domain.NormalizedBox{YStart: 0, YEnd: 1}
		if c, err := cropper.CropImage(img, whole, cropper.CropOptions{MaxBytes: cropper.DefaultMaxBytes}); err == nil {
			r.full = c.Data
		}
	})
	return r.full
}

func (r *run) report(phase domain.Phase, message string) {
	if r.progress == nil {
		return
	}
	defer func() { _ = recover() }()
	r.progress(phase, message)
}

type phaseStep struct {
	phase   domain.Phase
	message string
	flag    featureflags.FeatureFlag
	fn      func(ctx context.Context, r *run)
}

// Generate runs every phase and returns the best HTML produced within budget.
// It never returns an error: each failure falls back to a local default.
func (g *Generator) Generate(ctx context.Context, req domain.GenerateRequest, progress ProgressFunc) *domain.PipelineResult {
	r := &run{
		id:       uuid.NewString(),
		req:      req,
		budget:   newBudget(g.cfg.WallClockBudget, g.cfg.MaxAPICalls, nil),
		progress: progress,
	}

	ctx, span := g.tracer.Start(ctx, "pipeline.generate", trace.WithAttributes(
		attribute.String("run_id", r.id),
		attribute.Int("markdown_chars", len(req.Markdown)),
	))
	defer span.End()

	// Local starting point so even a run that never reaches the model returns HTML
	r.sections = segmenter.Segment(req.Markdown, segmenter.HintsFromElements(req.Hints))
	r.boxes = cropper.BoxesFromRatios(r.sections)
	r.design = domain.DefaultDesignSystem()
	r.skeleton = synthesizeSkeleton(r.boxes, r.design)
	r.html = localDraft(r.skeleton, r.sections)
	r.imageURLs = harvestImageURLs(req.Markdown, req.PageURL, req.Hints)
	r.result.PhaseReached = domain.PhaseNone

	g.logger.Info("Generation started", map[string]interface{}{
		"run_id":   r.id,
		"sections": len(r.sections),
		"page_url": req.PageURL,
	})

	steps := []phaseStep{
		{domain.PhaseDesignSystem, "Extracting design system", "", g.extractDesign},
		{domain.PhaseLayout, "Building layout skeleton", "", g.buildLayout},
		{domain.PhaseContent, "Injecting page content", "", g.injectContent},
		{domain.PhaseRefinement, "Refining sections", featureflags.SectionRefinement, g.refineSections},
		{domain.PhasePatch, "Applying targeted patches", featureflags.PatchPass, g.patchPass},
	}
	for _, step := range steps {
		if reason := r.budget.exhausted(); reason != "" {
			r.result.Truncated = true
			g.logger.Warn("Budget exhausted, returning best output", map[string]interface{}{
				"run_id":     r.id,
				"next_phase": step.phase.String(),
				"reason":     reason,
			})
			break
		}
		if step.flag != "" && !featureflags.IsEnabled(ctx, step.flag) {
			g.logger.Debug("Phase disabled", map[string]interface{}{
				"run_id": r.id,
				"phase":  step.phase.String(),
			})
			continue
		}

		r.report(step.phase, step.message)
		g.runPhase(ctx, r, step)
		r.result.PhaseReached = step.phase
	}

	if featureflags.IsEnabled(ctx, featureflags.PopupFilter) {
		overlays := append([]domain.OverlayDescriptor{}, r.design.Overlays...)
		if req.Hints != nil {
			overlays = append(overlays, req.Hints.Overlays...)
		}
		html, res := popup.Filter(r.html, overlays, g.logger)
		r.html = html
		r.result.OverlaysRemoved = res.Removed
	}

	r.result.RunID = r.id
	r.result.HTML = r.html
	r.result.APICalls = r.budget.used()
	r.result.Elapsed = r.budget.elapsed()

	span.SetAttributes(
		attribute.String("phase_reached", r.result.PhaseReached.String()),
		attribute.Int("api_calls", r.result.APICalls),
		attribute.Bool("truncated", r.result.Truncated),
	)
	g.logger.Info("Generation finished", map[string]interface{}{
		"run_id":            r.id,
		"phase_reached":     r.result.PhaseReached.String(),
		"api_calls":         r.result.APICalls,
		"elapsed_ms":        r.result.Elapsed.Milliseconds(),
		"sections_refined":  r.result.SectionsRefined,
		"sections_rejected": r.result.SectionsRejected,
		"patches_applied":   r.result.PatchesApplied,
		"overlays_removed":  r.result.OverlaysRemoved,
		"truncated":         r.result.Truncated,
	})

	result := r.result
	return &result
}

// GenerateHTML runs the pipeline and returns only the final HTML
func (g *Generator) GenerateHTML(ctx context.Context, screenshot []byte, markdown, pageURL string, hints *domain.ElementHints) string {
	return g.Generate(ctx, domain.GenerateRequest{
		Screenshot: screenshot,
		Markdown:   markdown,
		PageURL:    pageURL,
		Hints:      hints,
	}, nil).HTML
}

// runPhase wraps a phase in a span and keeps panics inside the phase boundary
func (g *Generator) runPhase(ctx context.Context, r *run, step phaseStep) {
	ctx, span := g.tracer.Start(ctx, "pipeline.phase."+step.phase.String(),
		trace.WithAttributes(attribute.Int("phase", int(step.phase))))
	defer span.End()

	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("phase panicked: %v", rec)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			g.logger.Error("Phase aborted, keeping previous output", map[string]interface{}{
				"run_id": r.id,
				"phase":  step.phase.String(),
				"error":  err.Error(),
			})
		}
	}()

	g.logger.Info("Phase started", map[string]interface{}{
		"run_id": r.id,
		"phase":  step.phase.String(),
	})
	step.fn(ctx, r)
	g.logger.Info("Phase finished", map[string]interface{}{
		"run_id":      r.id,
		"phase":       step.phase.String(),
		"duration_ms": time.Since(started).Milliseconds(),
		"api_calls":   r.budget.used(),
	})
}

func (g *Generator) thresholds() invariants.Thresholds {
	return invariants.Thresholds{
		Similarity:      g.cfg.SimilarityThreshold,
		ShortTextTokens: g.cfg.ShortTextTokens,
	}
}

// modelCall is one outbound request to the model
type modelCall func(ctx context.Context) (string, error)

func (g *Generator) vision(image []byte, prompt string) modelCall {
	return func(ctx context.Context) (string, error) {
		if g.deps.Model == nil {
			return "", fmt.Errorf("model client not configured")
		}
		return g.deps.Model.AnalyzeImage(ctx, image, prompt, interfaces.ModelOptions{Model: g.cfg.VisionModel})
	}
}

func (g *Generator) text(contextText, prompt string) modelCall {
	return func(ctx context.Context) (string, error) {
		if g.deps.Model == nil {
			return "", fmt.Errorf("model client not configured")
		}
		return g.deps.Model.AnalyzeText(ctx, contextText, prompt, interfaces.ModelOptions{Model: g.cfg.TextModel})
	}
}

// invoke spends one budgeted call through the shared limiter. Waiting for a
// limiter slot stops at the wall-clock ceiling; a dispatched call runs to completion.
func (g *Generator) invoke(ctx context.Context, r *run, call modelCall) (string, error) {
	if err := r.budget.reserve(); err != nil {
		return "", err
	}

	waitCtx, cancel := r.budget.bound(ctx)
	defer cancel()
	if err := g.limiter.Acquire(waitCtx); err != nil {
		return "", r.budget.overran(ctx, err)
	}

	var out string
	err := g.limiter.RunAcquired(ctx, func(ctx context.Context) error {
		var err error
		out, err = call(ctx)
		return err
	})
	return out, err
}

// callModel invokes once and, on a rate-limit refusal only, sleeps the fixed
// backoff and retries exactly once
func (g *Generator) callModel(ctx context.Context, r *run, label string, call modelCall) (string, error) {
	out, err := g.invoke(ctx, r, call)
	if err == nil || !coreerrors.IsRateLimited(err) {
		return out, err
	}

	g.logger.Warn("Model call rate limited, retrying once", map[string]interface{}{
		"run_id": r.id,
		"call":   label,
	})
	waitCtx, cancel := r.budget.bound(ctx)
	defer cancel()
	if err := sleepCtx(waitCtx, g.cfg.RetryBackoff); err != nil {
		return "", r.budget.overran(ctx, err)
	}
	return g.invoke(ctx, r, call)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
