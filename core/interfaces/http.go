package interfaces

import (
	"context"
	"io"
)

// HTTPClient is the outbound transport used by model clients.
// Tests swap in function-field fakes; production uses infrastructure/http/standard.
type HTTPClient interface {
	// Get fetches url.
	Get(ctx context.Context, url string) (Response, error)

	// Post sends a JSON body to url. Implementations may buffer the body
	// so a 5xx attempt can be replayed; 429 responses are returned as-is
	// so the caller's rate-limit handling sees them.
	Post(ctx context.Context, url string, body io.Reader) (Response, error)
}

// Response is the subset of an HTTP response the model clients read.
type Response interface {
	StatusCode() int

	// Body must be closed by the caller.
	Body() io.ReadCloser

	// Header returns the named header value, or "" when absent.
	// Lookup is case-insensitive.
	Header(key string) string
}
