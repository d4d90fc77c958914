// Package cache implements the server-side tier of the two-tier page cache:
// a tag-indexed store of computed values with TTL expiry and synchronous
// purge-by-tag. The edge tier is driven purely by Cache-Control response
// headers and is never purged directly.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL bounds how stale an entry can get if an invalidation is missed.
const DefaultTTL = 24 * time.Hour

type entry struct {
	value     []byte
	tags      []string
	expiresAt time.Time
}

// Store is a tag-indexed in-process cache. Safe for concurrent use; a purge
// is visible to every Get that starts after it returns.
type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*entry
	byTag   map[string]map[string]struct{}
	now     func() time.Time
}

// New returns a Store with the given entry TTL. A non-positive ttl falls
// back to DefaultTTL.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:     ttl,
		entries: make(map[string]*entry),
		byTag:   make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

// Get returns the cached value for key, or false when absent or expired.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || s.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key, carrying the given invalidation tags.
// A later Set for the same key replaces the value and its tag memberships.
func (s *Store) Set(key string, value []byte, tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		s.dropFromTags(key, old.tags)
	}

	s.entries[key] = &entry{
		value:     value,
		tags:      append([]string(nil), tags...),
		expiresAt: s.now().Add(s.ttl),
	}
	for _, tag := range tags {
		keys, ok := s.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			s.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// Purge removes every entry carrying any of the given tags and returns the
// number of entries removed. Unknown tags are a no-op.
func (s *Store) Purge(tags ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, tag := range tags {
		for key := range s.byTag[tag] {
			if e, ok := s.entries[key]; ok {
				s.dropFromTags(key, e.tags)
				delete(s.entries, key)
				removed++
			}
		}
		delete(s.byTag, tag)
	}
	return removed
}

// Len reports the number of live entries, counting expired ones still held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) dropFromTags(key string, tags []string) {
	for _, tag := range tags {
		if keys, ok := s.byTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(s.byTag, tag)
			}
		}
	}
}
