package txnfile

import (
	"context"
	"os"
	"path/filepath"

	"github.com/MuhamedEssam/tinychain/pkg/cache"
	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/txnlock"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

// Entry is anything a TxnDir can hold as a child: another TxnDir or a
// TxnFile. Both satisfy the same commit/finalize lifecycle.
type Entry interface {
	Commit(ctx context.Context, txn types.TxnID) error
	Finalize(txn types.TxnID) error
}

// DirSet is the value type behind a TxnDir's own listing/mutated
// locks: the set of child names known to the directory.
type DirSet = BlockSet

// TxnDir is a recursive composition of TxnFile with child directories
// (spec §4.4, component C4). Children created inside a transaction are
// visible only to that txn until commit; on commit their canonical
// directory entries are created lazily, and on finalize any child that
// never materialized a canonical entry is removed.
type TxnDir struct {
	Path  string
	cache *cache.Cache

	listing *txnlock.TxnLock[DirSet]
	mutated *txnlock.TxnLock[DirSet]

	children map[types.PathSegment]Entry
}

// NewDir opens a TxnDir at path.
func NewDir(path string, c *cache.Cache) *TxnDir {
	return &TxnDir{
		Path:     path,
		cache:    c,
		listing:  txnlock.New("dir-listing:"+path, DirSet{}),
		mutated:  txnlock.New("dir-mutated:"+path, DirSet{}),
		children: make(map[types.PathSegment]Entry),
	}
}

// GetOrCreateFile returns the child TxnFile named name under txn,
// creating it (and registering it in the listing) if it doesn't exist
// yet for this txn.
func (d *TxnDir) GetOrCreateFile(ctx context.Context, txn types.TxnID, name types.PathSegment) (*TxnFile, error) {
	lg, err := d.listing.Write(ctx, txn)
	if err != nil {
		return nil, err
	}
	defer lg.Release()

	if entry, ok := d.children[name]; ok {
		if tf, ok := entry.(*TxnFile); ok {
			return tf, nil
		}
		return nil, tcerr.Conflictf("%s is a directory, not a file", name)
	}

	tf := New(filepath.Join(d.Path, string(name)), d.cache)
	d.children[name] = tf
	lg.Update(func(s DirSet) DirSet { return s.With(name) })

	mg, err := d.mutated.Write(ctx, txn)
	if err != nil {
		return nil, err
	}
	defer mg.Release()
	mg.Update(func(s DirSet) DirSet { return s.With(name) })

	return tf, nil
}

// GetOrCreateDir is the TxnDir analog of GetOrCreateFile.
func (d *TxnDir) GetOrCreateDir(ctx context.Context, txn types.TxnID, name types.PathSegment) (*TxnDir, error) {
	lg, err := d.listing.Write(ctx, txn)
	if err != nil {
		return nil, err
	}
	defer lg.Release()

	if entry, ok := d.children[name]; ok {
		if child, ok := entry.(*TxnDir); ok {
			return child, nil
		}
		return nil, tcerr.Conflictf("%s is a file, not a directory", name)
	}

	child := NewDir(filepath.Join(d.Path, string(name)), d.cache)
	d.children[name] = child
	lg.Update(func(s DirSet) DirSet { return s.With(name) })

	mg, err := d.mutated.Write(ctx, txn)
	if err != nil {
		return nil, err
	}
	defer mg.Release()
	mg.Update(func(s DirSet) DirSet { return s.With(name) })

	return child, nil
}

// Contains tests listing membership as observed by txn.
func (d *TxnDir) Contains(ctx context.Context, txn types.TxnID, name types.PathSegment) (bool, error) {
	g, err := d.listing.Read(ctx, txn)
	if err != nil {
		return false, err
	}
	defer g.Release()
	return g.Value().Has(name), nil
}

// Commit creates the canonical directory if needed, commits every
// child mutated by txn, then commits this directory's own locks.
func (d *TxnDir) Commit(ctx context.Context, txn types.TxnID) error {
	mutated := d.mutated.Snapshot(txn)
	if len(mutated) > 0 {
		if err := os.MkdirAll(d.Path, 0o755); err != nil {
			return ioErr(err)
		}
	}

	for name := range mutated {
		child, ok := d.children[name]
		if !ok {
			continue
		}
		if err := child.Commit(ctx, txn); err != nil {
			return err
		}
	}

	d.listing.Commit(txn)
	d.mutated.Commit(txn)
	return nil
}

// Finalize finalizes every child touched by txn, removing any that
// never committed a canonical entry, then finalizes this directory's
// own locks.
func (d *TxnDir) Finalize(txn types.TxnID) error {
	mutated := d.mutated.Snapshot(txn)
	for name := range mutated {
		child, ok := d.children[name]
		if !ok {
			continue
		}
		if err := child.Finalize(txn); err != nil {
			return err
		}
		if _, err := os.Stat(filepath.Join(d.Path, string(name))); err != nil {
			delete(d.children, name)
		}
	}

	d.listing.Finalize(txn)
	d.mutated.Finalize(txn)
	return nil
}
