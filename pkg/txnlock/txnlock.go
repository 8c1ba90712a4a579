package txnlock

import (
	"context"
	"sort"
	"sync"

	"github.com/MuhamedEssam/tinychain/pkg/log"
	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

type commitEntry[T any] struct {
	txnID types.TxnID
	value T
}

// TxnLock is a per-value transactional lock (spec §4.2, component C2).
// T is normally a small, copyable value (a set of BlockIds, a B-tree
// node); a TxnLock never mutates a value in place, it replaces it.
type TxnLock[T any] struct {
	name string

	mu      sync.Mutex
	changed chan struct{}

	committed []commitEntry[T]
	pending   map[types.TxnID]T

	activeReaders map[types.TxnID]int
	activeWriters map[types.TxnID]bool
}

// New creates a TxnLock seeded with an initial value, visible to any
// TxnID from the start (as if committed at the zero TxnID). name is
// used only for diagnostics.
func New[T any](name string, initial T) *TxnLock[T] {
	return &TxnLock[T]{
		name:          name,
		changed:       make(chan struct{}),
		committed:     []commitEntry[T]{{value: initial}},
		pending:       make(map[types.TxnID]T),
		activeReaders: make(map[types.TxnID]int),
		activeWriters: make(map[types.TxnID]bool),
	}
}

// ReadGuard is a snapshot of the value as of txn A. Release must be
// called exactly once.
type ReadGuard[T any] struct {
	l     *TxnLock[T]
	txnID types.TxnID
	value T
}

func (g *ReadGuard[T]) Value() T { return g.value }

// Release drops this read guard, unblocking any writer with a smaller
// TxnID that is waiting for this txn to finish reading.
func (g *ReadGuard[T]) Release() {
	g.l.mu.Lock()
	g.l.activeReaders[g.txnID]--
	if g.l.activeReaders[g.txnID] <= 0 {
		delete(g.l.activeReaders, g.txnID)
	}
	g.l.mu.Unlock()
	g.l.notify()
}

// WriteGuard is a mutable, txn-local view seeded by copy-on-first-write
// from the current committed value. Release must be called exactly
// once; the written value stays pending until Commit.
type WriteGuard[T any] struct {
	l     *TxnLock[T]
	txnID types.TxnID
}

func (g *WriteGuard[T]) Get() T {
	g.l.mu.Lock()
	defer g.l.mu.Unlock()
	return g.l.pending[g.txnID]
}

func (g *WriteGuard[T]) Set(v T) {
	g.l.mu.Lock()
	g.l.pending[g.txnID] = v
	g.l.mu.Unlock()
}

// Update atomically replaces the pending value with fn applied to the
// current one. Concurrent writers sharing the same TxnID (the same
// txn fanning out over several distinct WriteGuards, one per block)
// must use Update rather than Get-then-Set: two callers racing a
// Get/Set pair can each read the same base value and have the second
// Set silently discard the first's change.
func (g *WriteGuard[T]) Update(fn func(T) T) {
	g.l.mu.Lock()
	g.l.pending[g.txnID] = fn(g.l.pending[g.txnID])
	g.l.mu.Unlock()
}

// Release drops this write guard. The pending value is left in place
// until Commit or Finalize.
func (g *WriteGuard[T]) Release() {
	g.l.mu.Lock()
	delete(g.l.activeWriters, g.txnID)
	g.l.mu.Unlock()
	g.l.notify()
}

func (l *TxnLock[T]) notify() {
	l.mu.Lock()
	ch := l.changed
	l.changed = make(chan struct{})
	l.mu.Unlock()
	close(ch)
}

// wait blocks until ready reports true or ctx is done. ready is
// invoked with l.mu held and must not itself lock l.mu.
func (l *TxnLock[T]) wait(ctx context.Context, ready func() bool) error {
	for {
		l.mu.Lock()
		ok := ready()
		ch := l.changed
		l.mu.Unlock()
		if ok {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return tcerr.Wrap(tcerr.Timeout, ctx.Err(), "waiting on txn lock %s", l.name)
		}
	}
}

// floorLocked returns the index of the last committed entry whose
// TxnID is <= a. Must be called with l.mu held. There is always at
// least the seed entry at index 0.
func (l *TxnLock[T]) floorLocked(a types.TxnID) int {
	idx := sort.Search(len(l.committed), func(i int) bool {
		return l.committed[i].txnID.Compare(a) > 0
	})
	if idx == 0 {
		return 0
	}
	return idx - 1
}

// Read suspends until no pending writer with a smaller TxnID remains,
// then returns a's own pending value if it has one, otherwise the
// value committed at or before a.
func (l *TxnLock[T]) Read(ctx context.Context, a types.TxnID) (*ReadGuard[T], error) {
	err := l.wait(ctx, func() bool {
		for txnID := range l.pending {
			if txnID.Compare(a) < 0 {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	value, ok := l.pending[a]
	if !ok {
		value = l.committed[l.floorLocked(a)].value
	}
	l.activeReaders[a]++
	l.mu.Unlock()

	return &ReadGuard[T]{l: l, txnID: a, value: value}, nil
}

// Write suspends until no reader or writer with a smaller TxnID is
// still active, then returns a mutable, txn-local view seeded from
// the current committed value. Writing with a TxnID smaller than the
// largest committed txn fails with Conflict.
func (l *TxnLock[T]) Write(ctx context.Context, a types.TxnID) (*WriteGuard[T], error) {
	err := l.wait(ctx, func() bool {
		for txnID, n := range l.activeReaders {
			if n > 0 && txnID.Compare(a) < 0 {
				return false
			}
		}
		for txnID, active := range l.activeWriters {
			if active && txnID.Compare(a) < 0 {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if last := l.committed[len(l.committed)-1]; a.Compare(last.txnID) < 0 {
		return nil, tcerr.Conflictf("txn lock %s: write at %s conflicts with committed %s", l.name, a, last.txnID)
	}

	if _, ok := l.pending[a]; !ok {
		l.pending[a] = l.committed[l.floorLocked(a)].value
	}
	l.activeWriters[a] = true

	return &WriteGuard[T]{l: l, txnID: a}, nil
}

// Commit promotes a's pending value to a new committed version.
// Idempotent: committing a txn with no pending value is a no-op.
func (l *TxnLock[T]) Commit(a types.TxnID) {
	l.mu.Lock()
	value, ok := l.pending[a]
	if !ok {
		l.mu.Unlock()
		return
	}
	delete(l.pending, a)

	// Commits arrive in TxnID order (spec §4.2, §4.8), so committed
	// stays sorted by simple append; a commit for a TxnID already at
	// the tail (a re-commit of the same txn) just replaces its value.
	if last := l.committed[len(l.committed)-1]; last.txnID.Equal(a) {
		l.committed[len(l.committed)-1].value = value
	} else {
		l.committed = append(l.committed, commitEntry[T]{txnID: a, value: value})
	}
	l.mu.Unlock()

	log.WithComponent("txnlock").Debug().Str("lock", l.name).Str("txn_id", a.String()).Msg("committed")
	l.notify()
}

// Snapshot returns a's pending value if one exists, otherwise the
// value committed at or before a. Unlike Read it does not register an
// active reader or wait on anything; it is meant for commit-time code
// that already owns exclusive knowledge of txn a's state.
func (l *TxnLock[T]) Snapshot(a types.TxnID) T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.pending[a]; ok {
		return v
	}
	return l.committed[l.floorLocked(a)].value
}

// Finalize forgets committed versions older than a and erases a's own
// pending entry. Idempotent.
func (l *TxnLock[T]) Finalize(a types.TxnID) {
	l.mu.Lock()
	delete(l.pending, a)

	floor := l.floorLocked(a)
	if floor > 0 {
		l.committed = append([]commitEntry[T]{}, l.committed[floor:]...)
	}
	l.mu.Unlock()

	l.notify()
}
