package footage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_Unthrottled(t *testing.T) {
	g := NewGate(0)
	start := time.Now()
	for range 5 {
		require.NoError(t, g.Turn(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	var nilGate *Gate
	assert.NoError(t, nilGate.Turn(context.Background()))
}

func TestGate_SpacesTurns(t *testing.T) {
	const interval = 50 * time.Millisecond
	g := NewGate(interval)
	start := time.Now()
	for range 3 {
		require.NoError(t, g.Turn(context.Background()))
	}
	// First turn is immediate, the next two wait one interval each.
	assert.GreaterOrEqual(t, time.Since(start), 2*interval)
}

func TestGate_Cancelled(t *testing.T) {
	g := NewGate(time.Hour)
	require.NoError(t, g.Turn(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, g.Turn(ctx))
}

func TestGate_DoomedWaitWrapsDeadline(t *testing.T) {
	g := NewGate(time.Hour)
	require.NoError(t, g.Turn(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	start := time.Now()
	err := g.Turn(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, ctx.Err(), "the wait is refused before the deadline passes")
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestGateSet_OnTurnSeesExactSpacing(t *testing.T) {
	const interval = 40 * time.Millisecond
	set := NewGateSet(func(string) time.Duration { return interval })
	var grants []time.Time
	set.OnTurn(func(source string, _ time.Duration, at time.Time) {
		assert.Equal(t, "pexels", source)
		grants = append(grants, at)
	})
	g := set.For("pexels")
	for range 4 {
		require.NoError(t, g.Turn(context.Background()))
	}
	require.Len(t, grants, 4)
	for i := 1; i < len(grants); i++ {
		assert.GreaterOrEqual(t, grants[i].Sub(grants[i-1]), interval)
	}
}

func TestGateSet_OnePerSource(t *testing.T) {
	set := NewGateSet(func(source string) time.Duration {
		if source == "pexels" {
			return time.Second
		}
		return 0
	})
	assert.Same(t, set.For("pexels"), set.For("pexels"))
	assert.NotSame(t, set.For("pexels"), set.For("pixabay"))
	assert.Nil(t, set.For("pixabay").limiter)
	assert.NotNil(t, set.For("pexels").limiter)
}
