package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockups-app-api/core/config"
	"mockups-app-api/core/domain"
	"mockups-app-api/core/interfaces"
	"mockups-app-api/core/ratelimit"
)

func TestGenerate_LimiterWaitStopsAtWallClock(t *testing.T) {
	// One call every 10s: the layout call would wait far past the ceiling
	slow := ratelimit.New(ratelimit.Config{
		InitialRPM:    6,
		MinRPM:        6,
		MaxRPM:        6,
		MaxConcurrent: 3,
	}, nil)
	m := happyModel(t)
	g := New(interfaces.Dependencies{Model: m, Logger: &mockLogger{}}, slow,
		config.WithRetryBackoff(time.Millisecond),
		config.WithBudget(300*time.Millisecond, 20),
	)

	start := time.Now()
	result := g.Generate(context.Background(), testRequest(t), nil)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 3*time.Second)
	assert.Equal(t, 1, m.count(kindDesign))
	assert.Equal(t, 0, m.count(kindLayout))
	assert.Equal(t, 0, m.count(kindContent))
	assertWellFormed(t, result.HTML, 2)
	assert.Contains(t, result.HTML, "Welcome to Acme")
}

func TestGenerate_PanickingModelKeepsSharedLimiterUsable(t *testing.T) {
	limiter := ratelimit.New(ratelimit.Config{
		InitialRPM:    600000,
		MinRPM:        600000,
		MaxRPM:        600000,
		MaxConcurrent: 1,
	}, nil)
	model := happyModel(t).on(kindDesign, func(string, int) (string, error) {
		panic("design call exploded")
	})
	g := New(interfaces.Dependencies{Model: model, Logger: &mockLogger{}}, limiter,
		config.WithRetryBackoff(time.Millisecond),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			result := g.Generate(context.Background(), testRequest(t), nil)
			assertWellFormed(t, result.HTML, 2)
			assert.Equal(t, domain.PhasePatch, result.PhaseReached)
		}
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		require.FailNow(t, "generation blocked on the shared limiter")
	}
	assert.Positive(t, model.count(kindLayout))
}
