package txnfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamedEssam/tinychain/pkg/cache"
	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/txnfile"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

type testBlock byte

func (b testBlock) MarshalBinary() ([]byte, error) { return []byte{byte(b)}, nil }
func (b testBlock) Size() int                      { return 1 }

func decodeTestBlock(raw []byte) (testBlock, error) {
	if len(raw) != 1 {
		return 0, tcerr.BadDataf("expected 1 byte")
	}
	return testBlock(raw[0]), nil
}

func newFile(t *testing.T) *txnfile.TxnFile {
	t.Helper()
	dir := t.TempDir()
	c := cache.New(1 << 20)
	return txnfile.New(filepath.Join(dir, "f"), c)
}

func txnID(ts uint64) types.TxnID { return types.NewTxnID(ts, 0) }

func TestTxnFile_CreateGetCommit(t *testing.T) {
	ctx := context.Background()
	f := newFile(t)
	txn := txnID(1)

	require.NoError(t, txnfile.CreateBlock(ctx, f, txn, "x", testBlock(0x01)))

	exists, err := f.BlockExists(ctx, txn, "x")
	require.NoError(t, err)
	assert.True(t, exists)

	h, err := txnfile.GetBlock(ctx, f, txn, "x", decodeTestBlock)
	require.NoError(t, err)
	h.View(func(b testBlock) { assert.Equal(t, testBlock(0x01), b) })
	h.Release()

	require.NoError(t, f.Commit(ctx, txn))

	raw, err := os.ReadFile(filepath.Join(f.Path, "x"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, raw)

	require.NoError(t, f.Finalize(txn))
	_, err = os.Stat(filepath.Join(f.Path, ".versions", txn.String()))
	assert.True(t, os.IsNotExist(err))
}

func TestTxnFile_CreateDuplicateConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFile(t)
	txn := txnID(1)

	require.NoError(t, txnfile.CreateBlock(ctx, f, txn, "x", testBlock(1)))
	err := txnfile.CreateBlock(ctx, f, txn, "x", testBlock(2))
	require.Error(t, err)
	assert.Equal(t, tcerr.Conflict, tcerr.Of(err))
}

// S2: txn A<B; A creates block x. While A's create is uncommitted, B's
// read of the listing waits behind A (here until its deadline); once A
// commits, B sees x.
func TestTxnFile_S2_Isolation(t *testing.T) {
	ctx := context.Background()
	f := newFile(t)
	a := txnID(1)
	b := txnID(2)

	require.NoError(t, txnfile.CreateBlock(ctx, f, a, "x", testBlock(0x01)))

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err := f.BlockExists(waitCtx, b, "x")
	require.Error(t, err, "B must not read the listing while A's create is uncommitted")
	assert.Equal(t, tcerr.Timeout, tcerr.Of(err))

	require.NoError(t, f.Commit(ctx, a))

	existsForB, err := f.BlockExists(ctx, b, "x")
	require.NoError(t, err)
	assert.True(t, existsForB)
}

func TestTxnFile_GetBlockMutIsolatesVersions(t *testing.T) {
	ctx := context.Background()
	f := newFile(t)
	a := txnID(1)
	b := txnID(2)

	require.NoError(t, txnfile.CreateBlock(ctx, f, a, "x", testBlock(0x01)))
	require.NoError(t, f.Commit(ctx, a))
	require.NoError(t, f.Finalize(a))

	hb, err := txnfile.GetBlockMut(ctx, f, b, "x", decodeTestBlock)
	require.NoError(t, err)
	hb.Update(func(testBlock) testBlock { return testBlock(0x02) })
	hb.Release()

	require.NoError(t, f.Commit(ctx, b))

	raw, err := os.ReadFile(filepath.Join(f.Path, "x"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02}, raw)
}

func TestTxnFile_GetMissingBlockIsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFile(t)

	_, err := txnfile.GetBlock(ctx, f, txnID(1), "nope", decodeTestBlock)
	require.Error(t, err)
	assert.Equal(t, tcerr.NotFound, tcerr.Of(err))
}

func TestTxnFile_CommitWithNoMutationsIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFile(t)
	require.NoError(t, f.Commit(ctx, txnID(1)))
}
