package footage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anatolykoptev/go_footage/internal/engine"
	"golang.org/x/time/rate"
)

// TurnFunc observes a granted gate turn: how long the caller waited and the
// instant the turn was granted.
type TurnFunc func(source string, waited time.Duration, at time.Time)

// Gate spaces out calls to one source. With a burst of one, successive
// turns are granted at least interval apart regardless of how many
// goroutines are waiting.
type Gate struct {
	limiter  *rate.Limiter // nil = unthrottled
	interval time.Duration
	source   string
	onTurn   TurnFunc

	mu   sync.Mutex
	last time.Time
}

// NewGate returns a gate with the given minimum interval between turns.
func NewGate(interval time.Duration) *Gate {
	if interval <= 0 {
		return &Gate{}
	}
	return &Gate{limiter: rate.NewLimiter(rate.Every(interval), 1), interval: interval}
}

// Turn blocks until the caller may issue its request or ctx is done.
// A wait that cannot finish before ctx's deadline fails at once with an
// error wrapping context.DeadlineExceeded.
func (g *Gate) Turn(ctx context.Context) error {
	if g == nil || g.limiter == nil {
		return ctx.Err()
	}
	start := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("footage: gate %q: %w (%v)", g.source, context.DeadlineExceeded, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	// The limiter works in fractional tokens; top up so grants are never
	// closer than interval on the monotonic clock.
	if !g.last.IsZero() {
		if short := g.interval - time.Since(g.last); short > 0 {
			t := time.NewTimer(short)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	g.last = time.Now()
	waited := g.last.Sub(start)
	engine.AddGateWait(waited)
	if g.onTurn != nil {
		g.onTurn(g.source, waited, g.last)
	}
	return nil
}

// GateSet hands out one process-wide Gate per source name.
type GateSet struct {
	mu       sync.Mutex
	gates    map[string]*Gate
	interval func(source string) time.Duration
	onTurn   TurnFunc
}

// NewGateSet creates gates lazily; interval picks each source's spacing.
func NewGateSet(interval func(source string) time.Duration) *GateSet {
	return &GateSet{gates: make(map[string]*Gate), interval: interval}
}

// OnTurn installs fn on every gate created after the call.
func (s *GateSet) OnTurn(fn TurnFunc) {
	s.mu.Lock()
	s.onTurn = fn
	s.mu.Unlock()
}

// For returns the gate for source, creating it on first use.
func (s *GateSet) For(source string) *Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gates[source]
	if !ok {
		var d time.Duration
		if s.interval != nil {
			d = s.interval(source)
		}
		g = NewGate(d)
		g.source = source
		g.onTurn = s.onTurn
		s.gates[source] = g
	}
	return g
}
