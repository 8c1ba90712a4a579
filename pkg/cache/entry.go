package cache

import (
	"sync"
	"sync/atomic"
)

// entry is a CachedBlock (spec §3): a reader/writer-locked block value
// plus a reference count. The reference count is incremented every
// time a Handle to this entry is acquired and decremented on Release;
// eviction skips any entry whose count is still above one, the Go
// stand-in for the Rust CacheLock's Clone/Drop bookkeeping.
type entry struct {
	mu    sync.RWMutex
	value Block
	size  int
	refs  int32 // atomic
}

// Handle is a live reference to one cached block. Callers must call
// Release exactly once when they are done with it; a forgotten Release
// leaves the reference count raised, and eviction skips the entry for
// as long as that count is above one (the Go equivalent of never
// dropping a CacheLock clone).
type Handle[B Block] struct {
	e *entry
}

// View runs fn with a read lock held over the block.
func (h Handle[B]) View(fn func(B)) {
	h.e.mu.RLock()
	defer h.e.mu.RUnlock()
	fn(h.e.value.(B))
}

// Update runs fn with a write lock held over the block and stores
// whatever it returns as the new value.
func (h Handle[B]) Update(fn func(B) B) {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	h.e.value = fn(h.e.value.(B))
}

// Acquire returns a new Handle to the same entry with the reference
// count bumped, the equivalent of cloning a CacheLock.
func (h Handle[B]) Acquire() Handle[B] {
	h.e.bump(1)
	return h
}

// Release drops this Handle's reference. It must be called exactly
// once per Handle returned by Read/Write/Acquire.
func (h Handle[B]) Release() {
	h.e.bump(-1)
}

func (e *entry) bump(delta int32) {
	atomic.AddInt32(&e.refs, delta)
}

func (e *entry) refCount() int32 {
	return atomic.LoadInt32(&e.refs)
}
