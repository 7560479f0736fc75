package domain

import (
	"maps"
	"slices"
	"sync"
)

// ExclusionChecker answers whether a variable key is known noise.
type ExclusionChecker interface {
	Contains(key string) bool
}

// Exclusions holds the variable keys known to differ between runs of the same
// program. It is shared by a whole campaign and grows as calibration finds
// non-deterministic variables.
type Exclusions struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewExclusions creates an exclusion set seeded with keys.
func NewExclusions(keys ...string) *Exclusions {
	e := &Exclusions{keys: make(map[string]struct{}, len(keys))}
	e.Merge(keys...)

	return e
}

// Contains reports whether key is excluded.
func (e *Exclusions) Contains(key string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	_, ok := e.keys[key]

	return ok
}

// Merge adds keys and returns how many were new.
func (e *Exclusions) Merge(keys ...string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	added := 0

	for _, key := range keys {
		if key == "" {
			continue
		}

		if _, ok := e.keys[key]; ok {
			continue
		}

		e.keys[key] = struct{}{}
		added++
	}

	return added
}

// Len returns the number of excluded keys.
func (e *Exclusions) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.keys)
}

// Keys returns the excluded keys in sorted order.
func (e *Exclusions) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return slices.Sorted(maps.Keys(e.keys))
}

// Snapshot returns an immutable copy for one comparison.
func (e *Exclusions) Snapshot() ExclusionSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return ExclusionSnapshot{keys: maps.Clone(e.keys)}
}

// ExclusionSnapshot is a read-only view of the exclusions at comparison start.
type ExclusionSnapshot struct {
	keys map[string]struct{}
}

// Contains reports whether key was excluded when the snapshot was taken.
func (s ExclusionSnapshot) Contains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of keys in the snapshot.
func (s ExclusionSnapshot) Len() int {
	return len(s.keys)
}
