package store

import (
	"sort"
	"sync"
	"time"

	"repowatch.app/watcher/internal/domain"
)

// WatchEntry is the per-repo polling state. The ETag is the cache
// validator from the last successful fetch, empty until one succeeds.
type WatchEntry struct {
	Key           domain.WatchKey
	ETag          string
	LastCheckedAt time.Time
}

// WatchRegistry is the set of currently watched repos. The poll loop reads
// snapshots; the HTTP layer adds entries; the manager removes entries the
// upstream reported gone.
type WatchRegistry struct {
	mu      sync.RWMutex
	entries map[domain.WatchKey]WatchEntry
}

func NewWatchRegistry() *WatchRegistry {
	return &WatchRegistry{
		entries: make(map[domain.WatchKey]WatchEntry),
	}
}

// Add registers a repo. It is idempotent: adding an existing key reports
// false and leaves the stored ETag and timestamps untouched.
func (r *WatchRegistry) Add(key domain.WatchKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; ok {
		return false
	}
	r.entries[key] = WatchEntry{Key: key}
	return true
}

func (r *WatchRegistry) Remove(key domain.WatchKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// Get returns a copy of the entry for key.
func (r *WatchRegistry) Get(key domain.WatchKey) (WatchEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[key]
	return entry, ok
}

// Snapshot returns a copy of all entries sorted by key. Mutations during a
// poll cycle never corrupt the slice a caller is iterating.
func (r *WatchRegistry) Snapshot() []WatchEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]WatchEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// UpdateAfterPoll records the result of a fetch attempt. An empty etag
// keeps the stored validator (304 and error paths only move the
// timestamp). Entries removed mid-cycle are not resurrected.
func (r *WatchRegistry) UpdateAfterPoll(key domain.WatchKey, etag string, checkedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[key]
	if !ok {
		return
	}
	if etag != "" {
		entry.ETag = etag
	}
	entry.LastCheckedAt = checkedAt
	r.entries[key] = entry
}

func (r *WatchRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
