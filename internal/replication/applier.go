package replication

import (
	"sync"

	"github.com/AlexandraB-C/PR-LAB-4/internal/storage"
)

// Applier decides whether an incoming record is applied to the local store.
// It runs on every follower (and backs the leader's own local apply path).
//
// The transport gives no ordering guarantee, so the version comparison here
// is the sole defense against regressing a key to a stale value: a record
// is applied iff the key is absent or the record's version is at least the
// stored one. Ties go to the incoming record, which makes re-delivery of
// the same record idempotent.
type Applier struct {
	mu    sync.Mutex
	store storage.Store
}

// NewApplier creates an applier over the given store.
func NewApplier(store storage.Store) *Applier {
	return &Applier{store: store}
}

// Apply considers one record and returns whether it was applied. The
// check-and-apply runs under the applier's lock so concurrent deliveries
// for the same key cannot interleave between comparison and mutation.
func (a *Applier) Apply(rec Record) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, ok := a.store.Get(rec.Key); ok && rec.Version < existing.Version {
		return false
	}

	var value string
	if rec.Value != nil {
		value = *rec.Value
	}
	a.store.Apply(rec.Key, value, rec.Version, rec.Delete)
	return true
}
