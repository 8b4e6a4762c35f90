// ABOUTME: Per-run budget shared by every phase: a wall-clock ceiling and a model call cap
// ABOUTME: Checked between phases and before each call; exhaustion truncates instead of failing

package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	coreerrors "mockups-app-api/core/errors"
)

// budget tracks elapsed time and model calls for one run
type budget struct {
	mu       sync.Mutex
	start    time.Time
	wall     time.Duration
	maxCalls int
	calls    int
	now      func() time.Time
}

func newBudget(wall time.Duration, maxCalls int, now func() time.Time) *budget {
	if now == nil {
		now = time.Now
	}
	return &budget{start: now(), wall: wall, maxCalls: maxCalls, now: now}
}

// reserve claims one model call, failing when either limit is spent
func (b *budget) reserve() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if reason := b.exhaustedLocked(); reason != "" {
		return &coreerrors.BudgetExceededError{Reason: reason}
	}
	b.calls++
	return nil
}

// exhausted returns a non-empty reason once the run must stop advancing
func (b *budget) exhausted() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exhaustedLocked()
}

func (b *budget) exhaustedLocked() string {
	if elapsed := b.now().Sub(b.start); elapsed >= b.wall {
		return fmt.Sprintf("wall clock %s spent of %s", elapsed.Round(time.Millisecond), b.wall)
	}
	if b.calls >= b.maxCalls {
		return fmt.Sprintf("api calls %d of %d spent", b.calls, b.maxCalls)
	}
	return ""
}

func (b *budget) used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *budget) elapsed() time.Duration {
	return b.now().Sub(b.start)
}

// remaining is the wall-clock time left, never negative
func (b *budget) remaining() time.Duration {
	if left := b.wall - b.elapsed(); left > 0 {
		return left
	}
	return 0
}

// bound limits waits on ctx to the wall-clock ceiling
func (b *budget) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.remaining())
}

// overran converts a wait on the bounded context into a budget error. The
// pacer refuses up front when its delay would pass the deadline, so any
// failure while the parent is still live belongs to the ceiling.
func (b *budget) overran(parent context.Context, err error) error {
	if parent.Err() != nil {
		return err
	}
	reason := b.exhausted()
	if reason == "" {
		reason = fmt.Sprintf("wall clock %s left, wait would overrun", b.remaining().Round(time.Millisecond))
	}
	return &coreerrors.BudgetExceededError{Reason: reason}
}
