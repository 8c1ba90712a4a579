package txnfile

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/MuhamedEssam/tinychain/pkg/cache"
	"github.com/MuhamedEssam/tinychain/pkg/log"
	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/txnlock"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

const versionsDir = ".versions"

// TxnFile is a versioned store of named blocks rooted at Path (spec
// §4.3, component C3). All block bytes are read and written through a
// shared Cache; TxnFile itself only ever deals in paths.
type TxnFile struct {
	Path  string
	cache *cache.Cache

	listing *txnlock.TxnLock[BlockSet]
	mutated *txnlock.TxnLock[BlockSet]

	// unsafe marks a file where a commit has already failed; every
	// further operation on it except Finalize returns Internal (spec
	// §4.3, §7).
	unsafe bool
}

// New opens (without creating) a TxnFile at path, backed by c.
func New(path string, c *cache.Cache) *TxnFile {
	return &TxnFile{
		Path:    path,
		cache:   c,
		listing: txnlock.New("listing:"+path, BlockSet{}),
		mutated: txnlock.New("mutated:"+path, BlockSet{}),
	}
}

func (f *TxnFile) canonicalPath(id types.BlockID) string {
	return filepath.Join(f.Path, string(id))
}

func (f *TxnFile) versionDir(txn types.TxnID) string {
	return filepath.Join(f.Path, versionsDir, txn.String())
}

func (f *TxnFile) versionPath(txn types.TxnID, id types.BlockID) string {
	return filepath.Join(f.versionDir(txn), string(id))
}

// BlockExists tests listing membership as observed by txn.
func (f *TxnFile) BlockExists(ctx context.Context, txn types.TxnID, id types.BlockID) (bool, error) {
	if f.unsafe {
		return false, unsafeErr(f.Path)
	}
	g, err := f.listing.Read(ctx, txn)
	if err != nil {
		return false, err
	}
	defer g.Release()
	return g.Value().Has(id), nil
}

// CreateBlock inserts a new block under id, failing with Conflict if
// the txn-local listing already contains it.
func CreateBlock[B cache.Block](ctx context.Context, f *TxnFile, txn types.TxnID, id types.BlockID, value B) error {
	if f.unsafe {
		return unsafeErr(f.Path)
	}

	lg, err := f.listing.Write(ctx, txn)
	if err != nil {
		return err
	}
	defer lg.Release()

	if lg.Get().Has(id) {
		return tcerr.Conflictf("block %s already exists in %s for this transaction", id, f.Path)
	}

	if err := os.MkdirAll(f.versionDir(txn), 0o755); err != nil {
		return ioErr(err)
	}

	cache.Write(f.cache, f.versionPath(txn, id), value).Release()
	lg.Update(func(s BlockSet) BlockSet { return s.With(id) })

	mg, err := f.mutated.Write(ctx, txn)
	if err != nil {
		return err
	}
	defer mg.Release()
	mg.Update(func(s BlockSet) BlockSet { return s.With(id) })

	return nil
}

// ensureVersion makes sure a txn-local version file for id exists,
// copying the canonical block on first access (spec §4.3), and
// returns its path. It does not itself touch the cache.
func (f *TxnFile) ensureVersion(ctx context.Context, txn types.TxnID, id types.BlockID) (string, error) {
	if f.unsafe {
		return "", unsafeErr(f.Path)
	}

	lg, err := f.listing.Read(ctx, txn)
	if err != nil {
		return "", err
	}
	exists := lg.Value().Has(id)
	lg.Release()

	if !exists {
		return "", tcerr.NotFoundf("no such block %s in %s", id, f.Path)
	}

	versionPath := f.versionPath(txn, id)
	if f.cache.Contains(versionPath) {
		return versionPath, nil
	}
	if _, err := os.Stat(versionPath); err == nil {
		return versionPath, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", ioErr(err)
	}

	if err := os.MkdirAll(f.versionDir(txn), 0o755); err != nil {
		return "", ioErr(err)
	}
	if err := copyFile(versionPath, f.canonicalPath(id)); err != nil {
		return "", ioErr(err)
	}
	return versionPath, nil
}

// GetBlock returns a read handle to id as seen by txn, materializing a
// txn-local version from the canonical file on first access if needed.
func GetBlock[B cache.Block](ctx context.Context, f *TxnFile, txn types.TxnID, id types.BlockID, decode cache.Decoder[B]) (*cache.Handle[B], error) {
	versionPath, err := f.ensureVersion(ctx, txn, id)
	if err != nil {
		return nil, err
	}
	h, ok, err := cache.Read(f.cache, versionPath, decode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, tcerr.NotFoundf("no such block %s in %s", id, f.Path)
	}
	return h, nil
}

// GetBlockMut returns a write handle to id as seen by txn and marks it
// mutated, so it is included in the next Commit.
func GetBlockMut[B cache.Block](ctx context.Context, f *TxnFile, txn types.TxnID, id types.BlockID, decode cache.Decoder[B]) (*cache.Handle[B], error) {
	h, err := GetBlock(ctx, f, txn, id, decode)
	if err != nil {
		return nil, err
	}

	mg, err := f.mutated.Write(ctx, txn)
	if err != nil {
		h.Release()
		return nil, err
	}
	mg.Update(func(s BlockSet) BlockSet { return s.With(id) })
	mg.Release()

	return h, nil
}

func unsafeErr(path string) error {
	return tcerr.Internalf("txn file %s is unsafe for further commits", path)
}

func ioErr(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return tcerr.Wrap(tcerr.NotFound, err, "no such block or directory")
	}
	if errors.Is(err, os.ErrPermission) {
		return tcerr.Wrap(tcerr.Internal, err, "permission denied")
	}
	return tcerr.Wrap(tcerr.Internal, err, "filesystem error")
}

func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func (f *TxnFile) lockFilePath() string {
	return filepath.Join(f.Path, ".lock")
}

// Commit flushes every block mutated by txn to its canonical path,
// then commits the listing and mutated locks. A failure partway
// through marks the file unsafe for all future operations.
func (f *TxnFile) Commit(ctx context.Context, txn types.TxnID) error {
	if f.unsafe {
		return unsafeErr(f.Path)
	}

	mutated := f.mutated.Snapshot(txn)
	if len(mutated) == 0 {
		f.listing.Commit(txn)
		f.mutated.Commit(txn)
		return nil
	}

	if err := os.MkdirAll(f.Path, 0o755); err != nil {
		f.unsafe = true
		return ioErr(err)
	}

	fl := flock.New(f.lockFilePath())
	if err := fl.Lock(); err != nil {
		f.unsafe = true
		return tcerr.Wrap(tcerr.Internal, err, "locking %s for commit", f.Path)
	}
	defer fl.Unlock()

	for id := range mutated {
		versionPath := f.versionPath(txn, id)
		if err := f.cache.Sync(versionPath); err != nil {
			f.unsafe = true
			return err
		}
		if err := copyFile(f.canonicalPath(id), versionPath); err != nil {
			f.unsafe = true
			return ioErr(err)
		}
	}

	f.listing.Commit(txn)
	f.mutated.Commit(txn)

	log.WithComponent("txnfile").Debug().
		Str("path", f.Path).Str("txn_id", txn.String()).Int("blocks", len(mutated)).
		Msg("committed")

	return nil
}

// Finalize drops every cached version block for txn and removes its
// version directory, then finalizes the listing and mutated locks.
func (f *TxnFile) Finalize(txn types.TxnID) error {
	mutated := f.mutated.Snapshot(txn)
	for id := range mutated {
		f.cache.Remove(f.versionPath(txn, id))
	}

	if err := os.RemoveAll(f.versionDir(txn)); err != nil {
		return ioErr(err)
	}

	f.listing.Finalize(txn)
	f.mutated.Finalize(txn)

	return nil
}
