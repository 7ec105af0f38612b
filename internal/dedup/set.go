// Package dedup tracks which measurement occurrences have already been
// persisted. The set is seeded from the CSV ledger at startup and only grows
// within a run; it is a cache over the file, never the source of truth.
package dedup

// Set is a grow-only membership set of dedup keys. The scraper is strictly
// sequential, so no locking is needed.
type Set struct {
	keys map[string]struct{}
}

// New returns an empty Set.
func New() *Set {
	return &Set{keys: make(map[string]struct{})}
}

// Seen reports whether key has been recorded.
func (s *Set) Seen(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Add records key. Adding an existing key is a no-op.
func (s *Set) Add(key string) {
	s.keys[key] = struct{}{}
}

// Len returns the number of recorded keys.
func (s *Set) Len() int {
	return len(s.keys)
}
