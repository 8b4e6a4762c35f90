// ABOUTME: Adaptive concurrency and pacing gate shared by every outbound model call
// ABOUTME: Slows down on rate-limit responses and speeds up after a streak of successes

package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	coreerrors "mockups-app-api/core/errors"
	"mockups-app-api/core/interfaces"
)

// Config holds limiter tuning values in requests per minute
type Config struct {
	InitialRPM    int
	MinRPM        int
	MaxRPM        int
	Step          int
	SuccessStreak int
	MaxConcurrent int
}

// DefaultConfig returns the production limiter settings
func DefaultConfig() Config {
	return Config{
		InitialRPM:    15,
		MinRPM:        5,
		MaxRPM:        30,
		Step:          5,
		SuccessStreak: 5,
		MaxConcurrent: 3,
	}
}

// withDefaults fills zero values and keeps the bounds consistent
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinRPM <= 0 {
		c.MinRPM = d.MinRPM
	}
	if c.MaxRPM <= 0 {
		c.MaxRPM = d.MaxRPM
	}
	if c.MaxRPM < c.MinRPM {
		c.MaxRPM = c.MinRPM
	}
	if c.InitialRPM <= 0 {
		c.InitialRPM = d.InitialRPM
	}
	c.InitialRPM = clamp(c.InitialRPM, c.MinRPM, c.MaxRPM)
	if c.Step <= 0 {
		c.Step = d.Step
	}
	if c.SuccessStreak <= 0 {
		c.SuccessStreak = d.SuccessStreak
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = d.MaxConcurrent
	}
	return c
}

// Limiter bounds in-flight calls with a semaphore and spaces dispatches at
// 60/rpm seconds. All rpm changes happen under mu.
type Limiter struct {
	cfg    Config
	sem    *semaphore.Weighted
	pacer  *rate.Limiter
	logger interfaces.Logger

	mu     sync.Mutex
	rpm    int
	streak int
}

// New creates a limiter
func New(cfg Config, logger interfaces.Logger) *Limiter {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &Limiter{
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		pacer:  rate.NewLimiter(perSecond(cfg.InitialRPM), 1),
		logger: logger,
		rpm:    cfg.InitialRPM,
	}
}

// Acquire waits for a free concurrency slot and then for the pacing interval.
// Every successful Acquire must be paired with exactly one Release.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	if err := l.pacer.Wait(ctx); err != nil {
		l.sem.Release(1)
		return err
	}
	return nil
}

// Release frees the slot and adapts the rate to the call outcome
func (l *Limiter) Release(success, rateLimited bool) {
	defer l.sem.Release(1)

	l.mu.Lock()
	defer l.mu.Unlock()

	before := l.rpm
	switch {
	case rateLimited:
		l.streak = 0
		l.rpm = clamp(l.rpm-l.cfg.Step, l.cfg.MinRPM, l.cfg.MaxRPM)
	case success:
		l.streak++
		if l.streak >= l.cfg.SuccessStreak {
			l.streak = 0
			l.rpm = clamp(l.rpm+l.cfg.Step, l.cfg.MinRPM, l.cfg.MaxRPM)
		}
	default:
		l.streak = 0
	}

	if l.rpm != before {
		l.pacer.SetLimit(perSecond(l.rpm))
		l.logger.Info("Model call rate adjusted", map[string]interface{}{
			"from_rpm":     before,
			"to_rpm":       l.rpm,
			"rate_limited": rateLimited,
		})
	}
}

// Do runs fn between Acquire and Release, classifying its error
func (l *Limiter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	return l.RunAcquired(ctx, fn)
}

// RunAcquired runs fn in a slot already taken with Acquire and releases it
// on every path. A panic in fn counts as a plain failure and is re-raised.
func (l *Limiter) RunAcquired(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	finished := false
	defer func() {
		if !finished {
			l.Release(false, false)
		}
	}()
	err = fn(ctx)
	finished = true
	l.Release(err == nil, coreerrors.IsRateLimited(err))
	return err
}

// CurrentRPM returns the current pacing rate
func (l *Limiter) CurrentRPM() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rpm
}

func perSecond(rpm int) rate.Limit {
	return rate.Limit(float64(rpm) / 60)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
