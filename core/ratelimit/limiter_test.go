package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "mockups-app-api/core/errors"
)

// fastConfig paces at 10ms so tests stay quick
func fastConfig() Config {
	return Config{
		InitialRPM:    6000,
		MinRPM:        3000,
		MaxRPM:        9000,
		Step:          1000,
		SuccessStreak: 5,
		MaxConcurrent: 3,
	}
}

func cycle(t *testing.T, l *Limiter, success, rateLimited bool) {
	t.Helper()
	require.NoError(t, l.Acquire(context.Background()))
	l.Release(success, rateLimited)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 15, cfg.InitialRPM)
	assert.Equal(t, 5, cfg.MinRPM)
	assert.Equal(t, 30, cfg.MaxRPM)
	assert.Equal(t, 5, cfg.Step)
	assert.Equal(t, 3, cfg.MaxConcurrent)
	assert.Equal(t, 15, New(Config{}, nil).CurrentRPM())
}

func TestRelease_RateLimitedDecreases(t *testing.T) {
	l := New(fastConfig(), nil)

	cycle(t, l, false, true)
	assert.Equal(t, 5000, l.CurrentRPM())

	cycle(t, l, false, true)
	cycle(t, l, false, true)
	assert.Equal(t, 3000, l.CurrentRPM(), "floored at min")
}

func TestRelease_SuccessStreakIncreases(t *testing.T) {
	l := New(fastConfig(), nil)

	for i := 0; i < 4; i++ {
		cycle(t, l, true, false)
	}
	assert.Equal(t, 6000, l.CurrentRPM())

	cycle(t, l, true, false)
	assert.Equal(t, 7000, l.CurrentRPM())

	for i := 0; i < 15; i++ {
		cycle(t, l, true, false)
	}
	assert.Equal(t, 9000, l.CurrentRPM(), "capped at max")
}

func TestRelease_FailureResetsStreak(t *testing.T) {
	l := New(fastConfig(), nil)

	for i := 0; i < 4; i++ {
		cycle(t, l, true, false)
	}
	cycle(t, l, false, false)
	for i := 0; i < 4; i++ {
		cycle(t, l, true, false)
	}
	assert.Equal(t, 6000, l.CurrentRPM())

	cycle(t, l, false, true)
	for i := 0; i < 4; i++ {
		cycle(t, l, true, false)
	}
	assert.Equal(t, 5000, l.CurrentRPM())
}

func TestAcquire_PacesDispatches(t *testing.T) {
	cfg := fastConfig()
	cfg.InitialRPM, cfg.MinRPM = 600, 600
	l := New(cfg, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		cycle(t, l, true, false)
	}

	// First call is immediate, the next two wait ~100ms each
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestAcquire_BoundsConcurrency(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxConcurrent = 2
	l := New(cfg, nil)

	var inFlight, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Do(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(30 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestAcquire_CancelledContextReleasesSlot(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxConcurrent = 1
	l := New(cfg, nil)

	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Acquire(ctx))

	l.Release(true, false)
	assert.NoError(t, l.Acquire(context.Background()))
	l.Release(true, false)
}

func TestDo_ClassifiesErrors(t *testing.T) {
	l := New(fastConfig(), nil)

	err := l.Do(context.Background(), func(ctx context.Context) error {
		return &coreerrors.RateLimitedError{API: "gemini"}
	})
	assert.True(t, coreerrors.IsRateLimited(err))
	assert.Equal(t, 5000, l.CurrentRPM())

	boom := errors.New("boom")
	err = l.Do(context.Background(), func(ctx context.Context) error { return boom })
	assert.Equal(t, boom, err)
	assert.Equal(t, 5000, l.CurrentRPM())
}

func TestDo_PanicReleasesSlot(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxConcurrent = 1
	l := New(cfg, nil)

	assert.PanicsWithValue(t, "model exploded", func() {
		_ = l.Do(context.Background(), func(ctx context.Context) error {
			panic("model exploded")
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.Acquire(ctx))
	l.Release(true, false)
	assert.Equal(t, 6000, l.CurrentRPM())
}

func TestRunAcquired_ReleasesAfterError(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxConcurrent = 1
	l := New(cfg, nil)

	require.NoError(t, l.Acquire(context.Background()))
	err := l.RunAcquired(context.Background(), func(ctx context.Context) error {
		return &coreerrors.RateLimitedError{API: "gemini"}
	})
	assert.True(t, coreerrors.IsRateLimited(err))
	assert.Equal(t, 5000, l.CurrentRPM())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.Acquire(ctx))
	l.Release(true, false)
}
