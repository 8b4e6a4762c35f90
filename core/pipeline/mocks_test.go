package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mockups-app-api/core/interfaces"
	"mockups-app-api/core/ratelimit"
)

// callKind classifies a prompt by the phase that built it
type callKind string

const (
	kindDesign  callKind = "design"
	kindLayout  callKind = "layout"
	kindContent callKind = "content"
	kindRefine  callKind = "refine"
	kindPatch   callKind = "patch"
)

func classify(prompt string) callKind {
	switch {
	case strings.Contains(prompt, "Extract its design system"):
		return kindDesign
	case strings.Contains(prompt, "rebuilding the landing page"):
		return kindLayout
	case strings.Contains(prompt, "Fill every {{sec_N}} placeholder"):
		return kindContent
	case strings.Contains(prompt, "crop of one landing-page section"):
		return kindRefine
	case strings.Contains(prompt, "list targeted fixes"):
		return kindPatch
	}
	return ""
}

// scriptedModel answers each phase with a handler and counts calls per phase
type scriptedModel struct {
	mu       sync.Mutex
	handlers map[callKind]func(prompt string, n int) (string, error)
	calls    map[callKind]int
}

func newScriptedModel() *scriptedModel {
	return &scriptedModel{
		handlers: make(map[callKind]func(string, int) (string, error)),
		calls:    make(map[callKind]int),
	}
}

func (m *scriptedModel) on(kind callKind, fn func(prompt string, n int) (string, error)) *scriptedModel {
	m.handlers[kind] = fn
	return m
}

func (m *scriptedModel) answer(prompt string) (string, error) {
	kind := classify(prompt)
	m.mu.Lock()
	m.calls[kind]++
	n := m.calls[kind]
	fn := m.handlers[kind]
	m.mu.Unlock()

	if fn == nil {
		return "", nil
	}
	return fn(prompt, n)
}

func (m *scriptedModel) count(kind callKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind]
}

func (m *scriptedModel) AnalyzeImage(ctx context.Context, image []byte, prompt string, _ interfaces.ModelOptions) (string, error) {
	return m.answer(prompt)
}

func (m *scriptedModel) AnalyzeText(ctx context.Context, contextText, prompt string, _ interfaces.ModelOptions) (string, error) {
	return m.answer(prompt)
}

// mockLogger collects messages for assertions
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *mockLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *mockLogger) Debug(msg string, _ map[string]interface{}) { l.record(msg) }
func (l *mockLogger) Info(msg string, _ map[string]interface{})  { l.record(msg) }
func (l *mockLogger) Warn(msg string, _ map[string]interface{})  { l.record(msg) }
func (l *mockLogger) Error(msg string, _ map[string]interface{}) { l.record(msg) }

func (l *mockLogger) has(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if m == msg {
			return true
		}
	}
	return false
}

// mockCache is an in-memory Cache with call hooks
type mockCache struct {
	getFunc func(ctx context.Context, key string) ([]byte, error)
	setFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	return nil, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	return nil
}

// fastLimiter paces at well under a millisecond
func fastLimiter() *ratelimit.Limiter {
	return ratelimit.New(ratelimit.Config{
		InitialRPM:    600000,
		MinRPM:        600000,
		MaxRPM:        600000,
		Step:          1,
		SuccessStreak: 5,
		MaxConcurrent: 4,
	}, nil)
}

// testScreenshot renders a PNG with two colour bands
func testScreenshot(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 600))
	for y := 0; y < 600; y++ {
		c := color.RGBA{R: 20, G: 40, B: 200, A: 255}
		if y >= 270 {
			c = color.RGBA{R: 240, G: 240, B: 240, A: 255}
		}
		for x := 0; x < 120; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
