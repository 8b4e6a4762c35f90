// Package api provides the HTTP API layer for the Mockups application.
// It uses the Huma framework to provide automatic OpenAPI documentation,
// request/response validation, and a clean handler interface.
//
// # Architecture
//
// The API package is structured as follows:
//
// - server.go: Huma API configuration and setup
// - handlers/: HTTP request handlers
// - dto/: Data Transfer Objects for requests and responses
// - middleware/: HTTP middleware for cross-cutting concerns
//
// # Endpoints
//
// - POST /generate runs the full pipeline for one screenshot and markdown pair
// - POST /segment previews the markdown segmentation
// - POST /patches/apply runs the restricted patch engine on a document
//
// The OpenAPI document is served at /openapi.json and the docs UI at /docs.
//
// # Request Validation
//
// Huma validates bodies from struct tags:
//
//	type PatchRequest struct {
//	    Type     string `json:"type" enum:"css_fix,add_element,remove_element"`
//	    Selector string `json:"selector" minLength:"1"`
//	    Value    string `json:"value,omitempty"`
//	}
//
// # Middleware
//
// - Request logging with a request ID carried in the context
// - Per-client token bucket rate limiting
// - Request body size limits
// - CORS handling
//
// # Usage Example
//
//	humaAPI, router := api.NewAPIWithMiddleware(api.APIConfig{
//	    Logger:            logger,
//	    RequestsPerSecond: 2,
//	    Burst:             4,
//	})
//	handlers.NewGenerateHandler(generator, logger).RegisterRoutes(humaAPI)
//	http.ListenAndServe(":8000", router)
//
// # Error Handling
//
// Errors use the RFC 7807 format. Domain errors are mapped to status codes:
// validation errors to 400, rate limiting to 429 and upstream failures to
// 502 or 503. A run that exhausts its budget is not an error; the response
// carries truncated set to true.
package api
