// Package store holds the in-memory state shared between the poll loop and
// the HTTP layer: the watch registry, the dedup ledger and the bounded
// event log. Nothing here survives a restart; that is a deliberate
// tradeoff, not an oversight.
package store

// Stores bundles the three shared stores so constructors take one handle.
type Stores struct {
	registry *WatchRegistry
	ledger   *DedupLedger
	events   *EventLog
}

func NewStores(logCapacity int) *Stores {
	return &Stores{
		registry: NewWatchRegistry(),
		ledger:   NewDedupLedger(),
		events:   NewEventLog(logCapacity),
	}
}

func (s *Stores) Registry() *WatchRegistry { return s.registry }

func (s *Stores) Ledger() *DedupLedger { return s.ledger }

func (s *Stores) Events() *EventLog { return s.events }
