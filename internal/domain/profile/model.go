package profile

import (
	"sync"
	"time"
)

// Entry records where a team lives on the upstream platform and when
// that was last confirmed by a successful fetch.
type Entry struct {
	ExternalID     string    `json:"external_id"`
	LastVerifiedAt time.Time `json:"last_verified_at"`
}

// Store is the process-wide profile cache shared by all scrape workers.
// One mutex serializes writes; a 404 upstream invalidates the entry so
// the next attempt re-resolves through search.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewStore(seed map[string]Entry) *Store {
	entries := make(map[string]Entry, len(seed))
	for key, e := range seed {
		entries[key] = e
	}
	return &Store{entries: entries}
}

func (s *Store) Get(teamKey string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[teamKey]
	return e, ok
}

func (s *Store) Put(teamKey string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[teamKey] = e
}

func (s *Store) Invalidate(teamKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, teamKey)
}

// Snapshot copies the cache for persistence.
func (s *Store) Snapshot() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Entry, len(s.entries))
	for key, e := range s.entries {
		out[key] = e
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
