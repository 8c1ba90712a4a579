package cache

import (
	"errors"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/MuhamedEssam/tinychain/pkg/log"
	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
)

// unboundedCapacity is large enough that the golang-lru ordering list
// never evicts on its own; eviction decisions stay entirely with
// Cache.evict, which is the only place that knows about byte budgets
// and reference counts.
const unboundedCapacity = 1 << 30

// Cache is a bound-sized mapping from filesystem path to decoded
// block (spec §4.1, component C1). One Cache is normally shared by an
// entire Host: TxnFile, TxnDir, and the tensor block layer all read
// and write through it instead of touching the filesystem on their
// own.
type Cache struct {
	mu      sync.Mutex
	maxSize int64
	size    int64
	entries map[string]*entry
	order   *lru.Cache[string, struct{}]
	logger  zerolog.Logger
}

// New builds a Cache bounded to maxSize bytes.
func New(maxSize int64) *Cache {
	order, err := lru.New[string, struct{}](unboundedCapacity)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// unboundedCapacity never is.
		panic(err)
	}

	return &Cache{
		maxSize: maxSize,
		entries: make(map[string]*entry),
		order:   order,
		logger:  log.WithComponent("cache"),
	}
}

// Read returns a Handle to the block at path, decoding it with decode
// if it isn't already cached. It returns (nil, false, nil) if the file
// does not exist. The caller must Release the returned Handle.
func Read[B Block](c *Cache, path string, decode Decoder[B]) (*Handle[B], bool, error) {
	c.mu.Lock()

	if e, ok := c.entries[path]; ok {
		if _, ok := e.value.(B); !ok {
			c.mu.Unlock()
			return nil, false, tcerr.Internalf("cache entry at %s has the wrong block type", path)
		}
		e.bump(1)
		c.order.Get(path)
		c.mu.Unlock()
		return &Handle[B]{e: e}, true, nil
	}
	c.mu.Unlock()

	c.logger.Debug().Str("path", path).Msg("cache miss")

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, ioErr(err)
	}

	block, err := decode(raw)
	if err != nil {
		return nil, false, tcerr.Wrap(tcerr.BadData, err, "decoding block at %s", path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have populated this path while we decoded
	// without holding the lock; prefer whatever is already cached.
	if e, ok := c.entries[path]; ok {
		if _, ok := e.value.(B); ok {
			e.bump(1)
			c.order.Get(path)
			return &Handle[B]{e: e}, true, nil
		}
	}

	e := &entry{value: block, size: block.Size(), refs: 1}
	c.entries[path] = e
	c.order.Add(path, struct{}{})
	c.size += int64(e.size)
	c.maybeEvict(path)

	return &Handle[B]{e: e}, true, nil
}

// Write replaces any existing entry at path with block, accounting for
// the size delta and triggering eviction if the cache is over budget.
func Write[B Block](c *Cache, path string, block B) *Handle[B] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[path]; ok {
		c.size -= int64(old.size)
	} else {
		c.order.Add(path, struct{}{})
	}

	e := &entry{value: block, size: block.Size(), refs: 1}
	c.entries[path] = e
	c.order.Get(path)
	c.size += int64(e.size)
	c.maybeEvict(path)

	return &Handle[B]{e: e}
}

// Remove drops the entry at path and its accounting, if present.
func (c *Cache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok {
		c.size -= int64(e.size)
		delete(c.entries, path)
		c.order.Remove(path)
	}
}

// Sync serializes the current in-memory block at path and writes its
// canonical bytes to path. It is a no-op if path is not cached.
func (c *Cache) Sync(path string) error {
	c.mu.Lock()
	e, ok := c.entries[path]
	c.mu.Unlock()
	if !ok {
		return nil
	}

	e.mu.RLock()
	raw, err := e.value.MarshalBinary()
	e.mu.RUnlock()
	if err != nil {
		return tcerr.Wrap(tcerr.Internal, err, "encoding block at %s", path)
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return ioErr(err)
	}
	return nil
}

// Contains reports whether path is currently cache-resident, without
// affecting recency order. It does not consult the filesystem, so it
// is true for a block written but not yet Sync'd to disk.
func (c *Cache) Contains(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[path]
	return ok
}

// Size returns the cache's current accounted byte total.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// maybeEvict walks the access-order list from its least-recently-used
// end, evicting entries (skipping any whose reference count is above
// one, and the path just inserted/updated) until the cache is back under budget or
// no more candidates are left. Must be called with c.mu held.
func (c *Cache) maybeEvict(justWritten string) {
	if c.size <= c.maxSize {
		return
	}

	keys := c.order.Keys()
	for _, path := range keys {
		if c.size <= c.maxSize {
			return
		}
		if path == justWritten {
			continue
		}

		e, ok := c.entries[path]
		if !ok {
			continue
		}
		if e.refCount() > 1 {
			continue
		}

		c.size -= int64(e.size)
		delete(c.entries, path)
		c.order.Remove(path)
	}

	if c.size > c.maxSize {
		c.logger.Warn().
			Int64("size", c.size).
			Int64("max_size", c.maxSize).
			Msg("cache overflowing but no evictable entries remain")
	}
}

func ioErr(err error) error {
	if errors.Is(err, os.ErrPermission) {
		return tcerr.Wrap(tcerr.Internal, err, "permission denied accessing cache-backed file")
	}
	return tcerr.Wrap(tcerr.Internal, err, "cache filesystem error")
}
