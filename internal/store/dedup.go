package store

import "sync"

// DedupLedger tracks every source event ID recorded since the last clear.
// It grows without bound for the process lifetime; the only eviction is the
// explicit Clear from the HTTP layer. Known tradeoff.
type DedupLedger struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDedupLedger() *DedupLedger {
	return &DedupLedger{seen: make(map[string]struct{})}
}

// MarkIfNew marks the ID as seen and reports whether it was new. Check and
// mark are one step so two cycles can never both claim the same event.
func (l *DedupLedger) MarkIfNew(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[id]; ok {
		return false
	}
	l.seen[id] = struct{}{}
	return true
}

func (l *DedupLedger) Seen(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[id]
	return ok
}

func (l *DedupLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

func (l *DedupLedger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = make(map[string]struct{})
}
