// ABOUTME: Main client for the Mockups library providing mockup generation and patching
// ABOUTME: Offers a clean API for using core functionality without HTTP dependencies

package mockup

import (
	"context"
	"sync"

	coreconfig "mockups-app-api/core/config"
	"mockups-app-api/core/domain"
	"mockups-app-api/core/interfaces"
	"mockups-app-api/core/patch"
	"mockups-app-api/core/pipeline"
	"mockups-app-api/core/ratelimit"
	"mockups-app-api/core/segmenter"
	"mockups-app-api/core/workers"
	"mockups-app-api/pkg/featureflags"
)

// Client is the main entry point for the Mockups library
type Client struct {
	generator *pipeline.Generator
	applier   *patch.Applier
	pool      *workers.GenerationPool
	deps      interfaces.Dependencies
	config    Config

	mu     sync.RWMutex
	closed bool
}

// Config holds the configuration for the client
type Config struct {
	Cache      interfaces.Cache
	HTTPClient interfaces.HTTPClient
	Logger     interfaces.Logger

	// Model is used as-is; otherwise APIKey builds the default Gemini client.
	// With neither, runs use local fallbacks only.
	Model  interfaces.ModelClient
	APIKey string

	RateLimit       ratelimit.Config
	PipelineOptions []coreconfig.PipelineOption

	// Flags gates optional phases; nil keeps every phase on
	Flags featureflags.Manager

	WorkerConfig               workers.WorkerConfig
	EnableBackgroundProcessing bool
}

// NewClient creates a new Mockups client with the given options
func NewClient(options ...Option) (*Client, error) {
	config := defaultConfig()

	for _, opt := range options {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}
	if err := WithDefaultDependencies()(&config); err != nil {
		return nil, err
	}

	deps := interfaces.Dependencies{
		HTTPClient: config.HTTPClient,
		Cache:      config.Cache,
		Logger:     config.Logger,
		Model:      config.Model,
	}
	if deps.Model == nil && config.APIKey != "" {
		model, err := DefaultModel(config.HTTPClient, config.APIKey)
		if err != nil {
			return nil, NewError(ErrorTypeConfiguration, "failed to create model client").WithCause(err)
		}
		deps.Model = model
	}
	if deps.Model == nil {
		config.Logger.Warn("No model configured, generation will use local fallbacks only", nil)
	}

	limiter := ratelimit.New(config.RateLimit, config.Logger)
	generator := pipeline.New(deps, limiter, config.PipelineOptions...)

	client := &Client{
		generator: generator,
		applier:   patch.NewApplier(config.Logger, patch.WithContainsMatchCap(generator.Config().ContainsMatchCap)),
		deps:      deps,
		config:    config,
	}

	if config.EnableBackgroundProcessing {
		client.pool = workers.NewGenerationPool(generator, config.Logger, config.WorkerConfig)
		if err := client.pool.Start(); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// Close gracefully shuts down the client
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.pool != nil {
		return c.pool.Stop()
	}
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) request(screenshot []byte, markdown string, opts []GenerateOption) (domain.GenerateRequest, pipeline.ProgressFunc) {
	options := GenerateOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	var progress pipeline.ProgressFunc
	if options.Progress != nil {
		fn := options.Progress
		progress = func(phase domain.Phase, message string) {
			fn(phase.String(), message)
		}
	}

	return domain.GenerateRequest{
		Screenshot: screenshot,
		Markdown:   markdown,
		PageURL:    options.PageURL,
		Hints:      publicHintsToDomain(options.Hints),
	}, progress
}

func (c *Client) withFlags(ctx context.Context) context.Context {
	if c.config.Flags == nil {
		return ctx
	}
	return featureflags.WithManager(ctx, c.config.Flags)
}

// Generate runs the full pipeline. Budget exhaustion is not an error; the
// result carries Truncated and the best HTML produced so far.
func (c *Client) Generate(ctx context.Context, screenshot []byte, markdown string, opts ...GenerateOption) (*Result, error) {
	if c.isClosed() {
		return nil, ErrClientClosed
	}
	if len(screenshot) == 0 {
		return nil, ErrEmptyScreenshot
	}

	req, progress := c.request(screenshot, markdown, opts)
	return domainResultToPublic(c.generator.Generate(c.withFlags(ctx), req, progress)), nil
}

// GenerateHTML runs the pipeline and returns only the document
func (c *Client) GenerateHTML(ctx context.Context, screenshot []byte, markdown string, opts ...GenerateOption) (string, error) {
	res, err := c.Generate(ctx, screenshot, markdown, opts...)
	if err != nil {
		return "", err
	}
	return res.HTML, nil
}

// GenerateAsync queues a run on the background pool. The returned channel
// receives exactly one result.
func (c *Client) GenerateAsync(ctx context.Context, screenshot []byte, markdown string, opts ...GenerateOption) (string, <-chan AsyncResult, error) {
	if c.isClosed() {
		return "", nil, ErrClientClosed
	}
	if c.pool == nil {
		return "", nil, ErrBackgroundDisabled
	}
	if len(screenshot) == 0 {
		return "", nil, ErrEmptyScreenshot
	}

	req, progress := c.request(screenshot, markdown, opts)
	jobID, results, err := c.pool.Submit(c.withFlags(ctx), req, progress)
	if err != nil {
		return "", nil, NewError(ErrorTypeUnavailable, "failed to queue generation").WithCause(err)
	}

	out := make(chan AsyncResult, 1)
	go func() {
		res := <-results
		out <- AsyncResult{JobID: res.JobID, Result: domainResultToPublic(res.Result), Err: res.Err}
	}()
	return jobID, out, nil
}

// Segment splits markdown into ordered sections; maxSections <= 0 keeps the default cap
func (c *Client) Segment(markdown string, maxSections int) []Section {
	var hints *segmenter.Hints
	if maxSections > 0 {
		hints = &segmenter.Hints{MaxSections: maxSections}
	}
	return domainSectionsToPublic(segmenter.Segment(markdown, hints))
}

// ApplyPatches runs the restricted patch engine on html
func (c *Client) ApplyPatches(html string, patches []Patch) (string, *PatchReport, error) {
	if html == "" {
		return "", nil, ErrEmptyDocument
	}
	out, report := c.applier.Apply(html, publicPatchesToDomain(patches))
	return out, reportToPublic(report), nil
}

// PipelineConfig returns the effective pipeline configuration
func (c *Client) PipelineConfig() coreconfig.PipelineConfig {
	return c.generator.Config()
}
