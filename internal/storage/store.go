package storage

import "sync"

// Entry is a stored value together with the version the leader assigned
// to the write that produced it.
type Entry struct {
	Value   string
	Version int64
}

// Store defines the interface for key-value storage.
type Store interface {
	// Get retrieves the entry for a key. Returns false if the key is absent.
	Get(key string) (Entry, bool)
	// Apply performs an unconditional mutation: insert or overwrite the
	// entry, or remove the key entirely if deleted is true. The version
	// comparison that guards against stale updates belongs to the caller;
	// Apply itself never inspects versions.
	Apply(key, value string, version int64, deleted bool)
	// Len returns the number of stored keys.
	Len() int
}

// InMemoryStore is an in-memory implementation of Store. It is safe for
// concurrent use; no reader ever observes a torn (value, version) pair.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string]Entry
}

// NewInMemoryStore creates a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		data: make(map[string]Entry),
	}
}

// Get retrieves the entry for a key.
func (s *InMemoryStore) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	return e, ok
}

// Apply inserts, overwrites, or removes an entry.
func (s *InMemoryStore) Apply(key, value string, version int64, deleted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deleted {
		delete(s.data, key)
		return
	}
	s.data[key] = Entry{Value: value, Version: version}
}

// Len returns the number of stored keys.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}
