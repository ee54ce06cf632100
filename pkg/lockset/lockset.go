// Package lockset provides mutexes keyed by string that are created on demand
// and released once nobody holds or waits for them.
package lockset

import (
	"sort"
	"sync"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Set is a collection of keyed mutexes. The zero value is ready to use.
type Set struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New returns an empty Set.
func New() *Set {
	return &Set{locks: make(map[string]*entry)}
}

// Lock acquires every key in a deterministic order and returns a function
// releasing them. Duplicate keys are acquired once.
func (s *Set) Lock(keys ...string) (unlock func()) {
	ordered := dedupSorted(keys)
	held := make([]*entry, 0, len(ordered))
	for _, key := range ordered {
		e := s.acquire(key)
		e.mu.Lock()
		held = append(held, e)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			s.release(ordered[i])
		}
	}
}

// Len returns the number of keys currently tracked.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

func (s *Set) acquire(key string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*entry)
	}
	e, ok := s.locks[key]
	if !ok {
		e = &entry{}
		s.locks[key] = e
	}
	e.refs++
	return e
}

func (s *Set) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.locks[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(s.locks, key)
	}
}

func dedupSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
