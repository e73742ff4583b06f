package store

import (
	"slices"
	"sync"

	"repowatch.app/watcher/internal/domain"
)

// EventLog is the bounded, newest-first store of classified events. Merge
// builds a fresh sorted slice and swaps it in under the lock, so readers
// observe either the pre-merge or post-merge log, never a partial write.
type EventLog struct {
	mu       sync.RWMutex
	capacity int
	events   []domain.ClassifiedEvent
}

func NewEventLog(capacity int) *EventLog {
	return &EventLog{capacity: capacity}
}

func (l *EventLog) Capacity() int { return l.capacity }

// Merge appends a batch, re-sorts newest first and truncates to capacity.
// Ties on RecordedAt fall back to the snowflake ID, which is monotonic, so
// events captured within the same instant keep capture order.
func (l *EventLog) Merge(batch []domain.ClassifiedEvent) {
	if len(batch) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make([]domain.ClassifiedEvent, 0, len(l.events)+len(batch))
	merged = append(merged, l.events...)
	merged = append(merged, batch...)

	slices.SortStableFunc(merged, func(a, b domain.ClassifiedEvent) int {
		if c := b.RecordedAt.Compare(a.RecordedAt); c != 0 {
			return c
		}
		switch {
		case b.ID > a.ID:
			return 1
		case b.ID < a.ID:
			return -1
		default:
			return 0
		}
	})

	if len(merged) > l.capacity {
		merged = merged[:l.capacity]
	}
	l.events = merged
}

// Recent returns a copy of the n most recent events (fewer when the log is
// shorter).
func (l *EventLog) Recent(n int) []domain.ClassifiedEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n > len(l.events) {
		n = len(l.events)
	}
	out := make([]domain.ClassifiedEvent, n)
	copy(out, l.events[:n])
	return out
}

func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

func (l *EventLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}
