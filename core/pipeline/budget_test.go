package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "mockups-app-api/core/errors"
)

func TestBudget_CallCap(t *testing.T) {
	b := newBudget(time.Minute, 2, nil)

	require.NoError(t, b.reserve())
	require.NoError(t, b.reserve())
	assert.NotEmpty(t, b.exhausted())

	err := b.reserve()
	assert.True(t, coreerrors.IsBudgetExceeded(err))
	assert.Equal(t, 2, b.used())
}

func TestBudget_WallClock(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	b := newBudget(10*time.Second, 5, clock)

	assert.Empty(t, b.exhausted())
	now = now.Add(10 * time.Second)
	assert.Contains(t, b.exhausted(), "wall clock")
	assert.True(t, coreerrors.IsBudgetExceeded(b.reserve()))
	assert.Equal(t, 10*time.Second, b.elapsed())
}

func TestBudget_BoundEndsAtCeiling(t *testing.T) {
	b := newBudget(50*time.Millisecond, 5, nil)

	ctx, cancel := b.bound(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)

	<-ctx.Done()
	err := b.overran(context.Background(), ctx.Err())
	assert.True(t, coreerrors.IsBudgetExceeded(err))
}

func TestBudget_OverranKeepsCallerCancellation(t *testing.T) {
	b := newBudget(time.Minute, 5, nil)

	parent, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.overran(parent, context.Canceled)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, coreerrors.IsBudgetExceeded(err))
}
