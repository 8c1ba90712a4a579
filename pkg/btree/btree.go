package btree

import (
	"context"
	"sync/atomic"

	gbtree "github.com/google/btree"

	"github.com/MuhamedEssam/tinychain/pkg/cache"
	"github.com/MuhamedEssam/tinychain/pkg/collate"
	"github.com/MuhamedEssam/tinychain/pkg/log"
	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/txnfile"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

const rootBlockID types.BlockID = "root"

// BTree is the persistent, Collator-ordered multiset index (spec
// §4.5, component C6), backed by a single block of a TxnFile.
type BTree struct {
	file     *txnfile.TxnFile
	collator *collate.Collator
	seq      uint64 // atomic, monotonic tiebreaker for duplicate keys
}

// New opens a BTree rooted at path, ordered by collator.
func New(path string, c *cache.Cache, collator *collate.Collator) *BTree {
	return &BTree{file: txnfile.New(path, c), collator: collator}
}

func (t *BTree) nextSeq() uint64 { return atomic.AddUint64(&t.seq, 1) }

func decodeRoot(raw []byte) (*nodeBlock, error) { return decodeNodeBlock(raw) }

// handle returns a mutable handle to the root block, creating it
// empty for this txn on first access.
func (t *BTree) handle(ctx context.Context, txn types.TxnID) (*cache.Handle[*nodeBlock], error) {
	h, err := txnfile.GetBlockMut(ctx, t.file, txn, rootBlockID, decodeRoot)
	if err == nil {
		return h, nil
	}
	if tcerr.Of(err) != tcerr.NotFound {
		return nil, err
	}

	empty, encErr := newNodeBlock(nil)
	if encErr != nil {
		return nil, encErr
	}
	if err := txnfile.CreateBlock(ctx, t.file, txn, rootBlockID, empty); err != nil {
		return nil, err
	}
	return txnfile.GetBlockMut(ctx, t.file, txn, rootBlockID, decodeRoot)
}

func (t *BTree) readItems(ctx context.Context, txn types.TxnID) ([]item, error) {
	h, err := t.handle(ctx, txn)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	var items []item
	h.View(func(n *nodeBlock) { items = n.items })
	return items, nil
}

func (t *BTree) writeItems(ctx context.Context, txn types.TxnID, items []item) error {
	h, err := t.handle(ctx, txn)
	if err != nil {
		return err
	}
	defer h.Release()

	next, err := newNodeBlock(items)
	if err != nil {
		return err
	}
	h.Update(func(*nodeBlock) *nodeBlock { return next })
	return nil
}

// Insert appends key to the multiset (spec §4.5: duplicate keys are
// appended, never overwritten).
func (t *BTree) Insert(ctx context.Context, txn types.TxnID, key collate.Key) error {
	items, err := t.readItems(ctx, txn)
	if err != nil {
		return err
	}
	items = append(items, item{Key: key, Seq: t.nextSeq()})
	return t.writeItems(ctx, txn, items)
}

// Delete tombstones every live key within rng.
func (t *BTree) Delete(ctx context.Context, txn types.TxnID, rng Range) error {
	items, err := t.readItems(ctx, txn)
	if err != nil {
		return err
	}

	changed := false
	for i := range items {
		if items[i].Deleted {
			continue
		}
		if rng.contains(t.collator, items[i].Key) {
			items[i].Deleted = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return t.writeItems(ctx, txn, items)
}

// ordered rebuilds a google/btree.BTreeG over the live items in items,
// using the Collator (then seq, to keep duplicates distinct) as the
// ordering function.
func (t *BTree) ordered(items []item) *gbtree.BTreeG[item] {
	tree := gbtree.NewG(32, func(a, b item) bool {
		if cmp := t.collator.Compare(a.Key, b.Key); cmp != 0 {
			return cmp < 0
		}
		return a.Seq < b.Seq
	})
	for _, it := range items {
		if !it.Deleted {
			tree.ReplaceOrInsert(it)
		}
	}
	return tree
}

// Slice returns every live key in rng, ordered by the Collator
// (descending if reverse is set).
func (t *BTree) Slice(ctx context.Context, txn types.TxnID, rng Range, reverse bool) ([]collate.Key, error) {
	items, err := t.readItems(ctx, txn)
	if err != nil {
		return nil, err
	}

	tree := t.ordered(items)
	var out []collate.Key
	visit := func(it item) bool {
		if rng.contains(t.collator, it.Key) {
			out = append(out, it.Key)
		}
		return true
	}
	if reverse {
		tree.Descend(visit)
	} else {
		tree.Ascend(visit)
	}
	return out, nil
}

// Len counts live keys within rng.
func (t *BTree) Len(ctx context.Context, txn types.TxnID, rng Range) (uint64, error) {
	keys, err := t.Slice(ctx, txn, rng, false)
	if err != nil {
		return 0, err
	}
	return uint64(len(keys)), nil
}

// Upsert inserts key, tombstoning any existing live entry whose
// columns (up to the Collator's schema length) compare equal to key's.
// Used by callers that want one row per key rather than a multiset,
// e.g. the sparse tensor layout keying rows on coordinates and
// carrying the cell value as an extra, uncollated trailing column.
func (t *BTree) Upsert(ctx context.Context, txn types.TxnID, key collate.Key) error {
	items, err := t.readItems(ctx, txn)
	if err != nil {
		return err
	}
	for i := range items {
		if !items[i].Deleted && t.collator.Equal(items[i].Key, key) {
			items[i].Deleted = true
		}
	}
	items = append(items, item{Key: key, Seq: t.nextSeq()})
	return t.writeItems(ctx, txn, items)
}

// DeleteKey tombstones the live entry whose key equals key under the
// Collator, if any.
func (t *BTree) DeleteKey(ctx context.Context, txn types.TxnID, key collate.Key) error {
	items, err := t.readItems(ctx, txn)
	if err != nil {
		return err
	}
	changed := false
	for i := range items {
		if !items[i].Deleted && t.collator.Equal(items[i].Key, key) {
			items[i].Deleted = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return t.writeItems(ctx, txn, items)
}

// Get returns the live entry whose key equals key under the Collator,
// including any trailing columns key itself doesn't specify.
func (t *BTree) Get(ctx context.Context, txn types.TxnID, key collate.Key) (collate.Key, bool, error) {
	items, err := t.readItems(ctx, txn)
	if err != nil {
		return nil, false, err
	}
	for _, it := range items {
		if !it.Deleted && t.collator.Equal(it.Key, key) {
			return it.Key, true, nil
		}
	}
	return nil, false, nil
}

// Commit makes every insert/delete performed under txn durable.
func (t *BTree) Commit(ctx context.Context, txn types.TxnID) error {
	if err := t.file.Commit(ctx, txn); err != nil {
		return err
	}
	log.WithComponent("btree").Debug().Str("path", t.file.Path).Str("txn_id", txn.String()).Msg("committed")
	return nil
}

// Finalize discards txn's per-txn version of the root block.
func (t *BTree) Finalize(txn types.TxnID) error {
	return t.file.Finalize(txn)
}
