// Package core contains the business logic for the Mockups API.
// It is designed to be framework-agnostic and can be used independently
// of any web framework or infrastructure concerns.
//
// The core package is organized into several sub-packages:
//
// - domain: Pure domain models (Section, NormalizedBox, DesignSystem, Patch, PipelineResult)
// - segmenter: Splits page markdown into ordered, labeled sections
// - cropper: Normalizes section boxes and crops screenshot regions
// - htmlscan: Element extents and the restricted selector grammar
// - invariants: Captures and checks slot, section and text invariants
// - patch: Applies css_fix, add_element and remove_element patches
// - popup: Removes cookie banners and modals without touching protected content
// - palette: Dominant screenshot colours for the design prompt
// - ratelimit: Adaptive pacing and concurrency for model calls
// - pipeline: The five-phase generation orchestrator
// - workers: Background generation pool
// - errors: Custom error types for better error handling
// - interfaces: Contracts for external dependencies (cache, HTTP, logger, model)
// - config: Pipeline budgets and thresholds as functional options
//
// # Design Principles
//
// The core package follows clean architecture principles:
// - No web framework dependencies
// - All external dependencies are injected via interfaces
// - Business logic is testable in isolation
//
// # Usage Example
//
//	import (
//	    "mockups-app-api/core/interfaces"
//	    "mockups-app-api/core/pipeline"
//	    "mockups-app-api/core/ratelimit"
//	)
//
//	deps := interfaces.Dependencies{
//	    Cache:  myCache,  // implements interfaces.Cache
//	    Logger: myLogger, // implements interfaces.Logger
//	    Model:  myModel,  // implements interfaces.ModelClient
//	}
//
//	limiter := ratelimit.New(ratelimit.DefaultConfig(), myLogger)
//	generator := pipeline.New(deps, limiter)
//
//	result := generator.Generate(ctx, domain.GenerateRequest{
//	    Screenshot: png,
//	    Markdown:   markdown,
//	}, nil)
package core
