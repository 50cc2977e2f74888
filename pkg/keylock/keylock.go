package keylock

import (
	"sync"

	"github.com/google/uuid"
)

// Registry provides a mutex per key so that mutations against the same tab
// are serialized while unrelated tabs proceed in parallel. Locks are never
// held across more than one key at a time.
type Registry struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewRegistry creates an empty lock registry
func NewRegistry() *Registry {
	return &Registry{locks: make(map[uuid.UUID]*entry)}
}

// Lock acquires the mutex for key, creating it on first use
func (r *Registry) Lock(key uuid.UUID) {
	r.mu.Lock()
	e, ok := r.locks[key]
	if !ok {
		e = &entry{}
		r.locks[key] = e
	}
	e.refs++
	r.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key and drops it once no caller holds or
// waits on it
func (r *Registry) Unlock(key uuid.UUID) {
	r.mu.Lock()
	e, ok := r.locks[key]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(r.locks, key)
	}
	r.mu.Unlock()

	e.mu.Unlock()
}
