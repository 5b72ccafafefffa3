package footage

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedger_TryReserve(t *testing.T) {
	l := NewLedger()
	assert.False(t, l.IsConsumed("a"))
	assert.True(t, l.TryReserve("a"))
	assert.False(t, l.TryReserve("a"))
	assert.True(t, l.IsConsumed("a"))
}

func TestLedger_ShadowNames(t *testing.T) {
	l := NewLedger()
	l.MarkShadowName("")
	assert.False(t, l.IsShadowed(""))

	l.MarkShadowName("sunset-beach")
	assert.True(t, l.IsShadowed("sunset-beach"))
	assert.False(t, l.IsShadowed("sunset"))
}

func TestLedger_Claim(t *testing.T) {
	l := NewLedger()

	reason, ok := l.Claim("ai-1", "beach", true)
	assert.True(t, ok)
	assert.Empty(t, reason)
	assert.True(t, l.IsShadowed("beach"))

	reason, ok = l.Claim("ai-1", "other", true)
	assert.False(t, ok)
	assert.Equal(t, ReasonDedupID, reason)

	reason, ok = l.Claim("pexels-2", "beach", false)
	assert.False(t, ok)
	assert.Equal(t, ReasonDedupName, reason)
	assert.False(t, l.IsConsumed("pexels-2"))

	_, ok = l.Claim("pexels-3", "beach", true)
	assert.True(t, ok, "primary names never shadow each other")

	_, ok = l.Claim("pexels-4", "", false)
	assert.True(t, ok)
}

func TestLedger_ConcurrentReserveHasOneWinner(t *testing.T) {
	l := NewLedger()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryReserve("same") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestLedger_Snapshot(t *testing.T) {
	l := NewLedger()
	l.TryReserve("a")
	l.TryReserve("b")
	l.MarkShadowName("n")

	s := l.Snapshot()
	assert.ElementsMatch(t, []string{"a", "b"}, s.ConsumedIDs)
	assert.Equal(t, []string{"n"}, s.ShadowNames)

	l.TryReserve("c")
	assert.Len(t, s.ConsumedIDs, 2, "snapshot must not alias ledger state")
}
