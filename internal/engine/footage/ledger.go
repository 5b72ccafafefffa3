package footage

import "sync"

// Ledger tracks what one job has already used. Create one per job.
// All methods are safe for concurrent use and never block on I/O.
type Ledger struct {
	mu          sync.Mutex
	consumedIDs map[string]struct{}
	shadowNames map[string]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		consumedIDs: make(map[string]struct{}),
		shadowNames: make(map[string]struct{}),
	}
}

// TryReserve atomically claims id. It returns false if id was already claimed.
func (l *Ledger) TryReserve(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.consumedIDs[id]; ok {
		return false
	}
	l.consumedIDs[id] = struct{}{}
	return true
}

// IsConsumed reports whether id has been claimed.
func (l *Ledger) IsConsumed(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.consumedIDs[id]
	return ok
}

// MarkShadowName reserves name against results from lower-ranked sources.
func (l *Ledger) MarkShadowName(name string) {
	if name == "" {
		return
	}
	l.mu.Lock()
	l.shadowNames[name] = struct{}{}
	l.mu.Unlock()
}

// IsShadowed reports whether name was reserved by the primary source.
func (l *Ledger) IsShadowed(name string) bool {
	if name == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.shadowNames[name]
	return ok
}

// Claim re-checks both dedup rules and reserves id in one step, so a
// concurrent resolver cannot slip a shadowed name or a taken id past the
// earlier unlocked checks. primary marks name as a shadow on success.
func (l *Ledger) Claim(id, name string, primary bool) (Reason, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.consumedIDs[id]; ok {
		return ReasonDedupID, false
	}
	if !primary && name != "" {
		if _, ok := l.shadowNames[name]; ok {
			return ReasonDedupName, false
		}
	}
	l.consumedIDs[id] = struct{}{}
	if primary && name != "" {
		l.shadowNames[name] = struct{}{}
	}
	return "", true
}

// LedgerSnapshot is a point-in-time copy of ledger contents.
type LedgerSnapshot struct {
	ConsumedIDs []string `json:"consumed_ids"`
	ShadowNames []string `json:"shadow_names"`
}

// Snapshot copies the current ledger state.
func (l *Ledger) Snapshot() LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := LedgerSnapshot{
		ConsumedIDs: make([]string, 0, len(l.consumedIDs)),
		ShadowNames: make([]string, 0, len(l.shadowNames)),
	}
	for id := range l.consumedIDs {
		s.ConsumedIDs = append(s.ConsumedIDs, id)
	}
	for n := range l.shadowNames {
		s.ShadowNames = append(s.ShadowNames, n)
	}
	return s
}
