package transcript

import (
	"sync"

	"github.com/hangthedj/htdj-go/pkg/types"
)

// Store is an append-only ordered sequence of finalized transcript entries.
// A single writer (the stream reader) appends; any number of readers take
// snapshots and must tolerate appends between reads. No entry is ever
// rewritten.
type Store struct {
	mu      sync.RWMutex
	entries []types.TranscriptEntry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds a finalized entry.
func (s *Store) Append(entry types.TranscriptEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

// Snapshot returns a copy of the current entries in append order.
func (s *Store) Snapshot() []types.TranscriptEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.TranscriptEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of appended entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Reset discards all entries.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
