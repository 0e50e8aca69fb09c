// Package memstore holds the in-memory stub registry. It is the only stateful
// collaborator of resolution; everything it hands out is shared, so all map
// and slice mutations happen under one lock while the per-stub usage
// timestamp is stamped atomically on the stub itself.
package memstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/sophialabs/replayd/internal/domain/stub"
)

var _ stub.Store = (*Store)(nil)

// Store is an in-memory stub.Store keyed by method then path. Registration
// order within a key is preserved; selection order is timestamp-driven and
// decided by the resolver.
type Store struct {
	mu      sync.RWMutex
	entries map[string]map[string][]*stub.Stub
	nextID  int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: make(map[string]map[string][]*stub.Stub),
	}
}

// Lookup returns a snapshot of the stubs registered for a method and path.
func (st *Store) Lookup(method, path string) []*stub.Stub {
	st.mu.RLock()
	defer st.mu.RUnlock()

	byPath, ok := st.entries[method]
	if !ok {
		return nil
	}
	stubs := byPath[path]
	if len(stubs) == 0 {
		return nil
	}
	out := make([]*stub.Stub, len(stubs))
	copy(out, stubs)
	return out
}

// RecordUse stamps the stub's last-used timestamp.
func (st *Store) RecordUse(s *stub.Stub, t time.Time) {
	s.MarkUsed(t)
}

// Add registers a stub, assigning a sequential ID when it has none.
func (st *Store) Add(s *stub.Stub) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.add(s)
}

func (st *Store) add(s *stub.Stub) {
	if s.ID == "" {
		st.nextID++
		s.ID = fmt.Sprintf("stub-%d", st.nextID)
	}
	byPath, ok := st.entries[s.Method]
	if !ok {
		byPath = make(map[string][]*stub.Stub)
		st.entries[s.Method] = byPath
	}
	byPath[s.Path] = append(byPath[s.Path], s)
}

// Remove deletes a stub by ID.
func (st *Store) Remove(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	for method, byPath := range st.entries {
		for path, stubs := range byPath {
			for i, s := range stubs {
				if s.ID != id {
					continue
				}
				byPath[path] = append(stubs[:i], stubs[i+1:]...)
				if len(byPath[path]) == 0 {
					delete(byPath, path)
				}
				if len(byPath) == 0 {
					delete(st.entries, method)
				}
				return nil
			}
		}
	}
	return stub.ErrNotFound
}

// Replace swaps all file-seeded stubs for the given set, keeping stubs
// registered at runtime through the admin API.
func (st *Store) Replace(seeded []*stub.Stub) {
	st.mu.Lock()
	defer st.mu.Unlock()

	kept := st.collect(func(s *stub.Stub) bool { return !s.Seeded })
	st.entries = make(map[string]map[string][]*stub.Stub)
	for _, s := range kept {
		st.add(s)
	}
	for _, s := range seeded {
		s.Seeded = true
		st.add(s)
	}
}

// Reset removes every stub.
func (st *Store) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.entries = make(map[string]map[string][]*stub.Stub)
}

// All returns every registered stub.
func (st *Store) All() []*stub.Stub {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.collect(func(*stub.Stub) bool { return true })
}

func (st *Store) collect(keep func(*stub.Stub) bool) []*stub.Stub {
	var out []*stub.Stub
	for _, byPath := range st.entries {
		for _, stubs := range byPath {
			for _, s := range stubs {
				if keep(s) {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
