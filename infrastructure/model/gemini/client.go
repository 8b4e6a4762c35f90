// ABOUTME: Gemini generateContent client implementing the pipeline's ModelClient contract
// ABOUTME: Maps HTTP 429 to RateLimitedError and every other non-2xx status to ExternalAPIError

package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	coreerrors "mockups-app-api/core/errors"
	"mockups-app-api/core/interfaces"
)

const (
	// DefaultBaseURL is the public Generative Language API endpoint
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is used when neither the client nor the call names a model
	DefaultModel = "gemini-2.0-flash"

	apiName      = "gemini"
	endpointPath = "/v1beta/models/%s:generateContent"
	maxErrorBody = 512
)

// Client calls the Gemini REST API through an interfaces.HTTPClient
type Client struct {
	http    interfaces.HTTPClient
	apiKey  string
	baseURL string
	model   string
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithModel sets the default model name
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// NewClient creates a Gemini client. The API key is required.
func NewClient(httpClient interfaces.HTTPClient, apiKey string, opts ...Option) (*Client, error) {
	if httpClient == nil {
		return nil, &coreerrors.ValidationError{Field: "http_client", Message: "required"}
	}
	if apiKey == "" {
		return nil, &coreerrors.ValidationError{Field: "api_key", Message: "required"}
	}
	c := &Client{
		http:    httpClient,
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// AnalyzeImage sends the image inline alongside the prompt
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, prompt string, opts interfaces.ModelOptions) (string, error) {
	if len(image) == 0 {
		return "", &coreerrors.ValidationError{Field: "image", Message: "empty"}
	}
	parts := []part{
		{InlineData: &inlineData{
			MIMEType: sniffImageType(image),
			Data:     base64.StdEncoding.EncodeToString(image),
		}},
		{Text: prompt},
	}
	return c.generate(ctx, parts, opts)
}

// AnalyzeText sends the context text followed by the prompt
func (c *Client) AnalyzeText(ctx context.Context, contextText, prompt string, opts interfaces.ModelOptions) (string, error) {
	parts := []part{{Text: contextText}, {Text: prompt}}
	if contextText == "" {
		parts = parts[1:]
	}
	return c.generate(ctx, parts, opts)
}

func (c *Client) generate(ctx context.Context, parts []part, opts interfaces.ModelOptions) (string, error) {
	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}

	req := generateRequest{Contents: []content{{Role: "user", Parts: parts}}}
	if opts.MaxOutputTokens > 0 || opts.Temperature != nil {
		req.GenerationConfig = &generationConfig{
			MaxOutputTokens: opts.MaxOutputTokens,
			Temperature:     opts.Temperature,
		}
	}
	body, err := json.Marshal(&req)
	if err != nil {
		return "", coreerrors.WrapError(err, "failed to encode gemini request")
	}

	resp, err := c.http.Post(ctx, c.endpoint(model), bytes.NewReader(body))
	if err != nil {
		return "", coreerrors.WrapError(err, "gemini request failed")
	}
	defer resp.Body().Close()

	switch status := resp.StatusCode(); {
	case status == http.StatusTooManyRequests:
		return "", &coreerrors.RateLimitedError{API: apiName, RetryAfter: parseRetryAfter(resp.Header("Retry-After"))}
	case status < 200 || status >= 300:
		return "", &coreerrors.ExternalAPIError{API: apiName, StatusCode: status, Message: readSnippet(resp.Body())}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body()).Decode(&out); err != nil {
		return "", coreerrors.WrapError(err, "failed to decode gemini response")
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", &coreerrors.ExternalAPIError{
			API:        apiName,
			StatusCode: http.StatusOK,
			Message:    "prompt blocked: " + out.PromptFeedback.BlockReason,
		}
	}

	var b strings.Builder
	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	if b.Len() == 0 {
		return "", &coreerrors.ExternalAPIError{API: apiName, StatusCode: http.StatusOK, Message: "empty response"}
	}
	return b.String(), nil
}

func (c *Client) endpoint(model string) string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	return c.baseURL + fmt.Sprintf(endpointPath, url.PathEscape(model)) + "?" + q.Encode()
}

// sniffImageType detects the upload MIME type, defaulting to PNG
func sniffImageType(data []byte) string {
	switch ct := http.DetectContentType(data); ct {
	case "image/png", "image/jpeg", "image/webp", "image/gif":
		return ct
	}
	return "image/png"
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func readSnippet(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(data))
}
