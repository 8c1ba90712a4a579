package btree_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamedEssam/tinychain/pkg/btree"
	"github.com/MuhamedEssam/tinychain/pkg/cache"
	"github.com/MuhamedEssam/tinychain/pkg/collate"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

func newTree(t *testing.T) (*btree.BTree, *collate.Collator) {
	t.Helper()
	c, err := collate.New([]types.NumberType{types.Int64})
	require.NoError(t, err)
	cacheInst := cache.New(1 << 20)
	return btree.New(filepath.Join(t.TempDir(), "idx"), cacheInst, c), c
}

func k(v int64) collate.Key { return collate.Key{v} }

func TestBTree_InsertSliceOrdered(t *testing.T) {
	ctx := context.Background()
	tree, _ := newTree(t)
	txn := types.NewTxnID(1, 0)

	for _, v := range []int64{5, 1, 3} {
		require.NoError(t, tree.Insert(ctx, txn, k(v)))
	}

	out, err := tree.Slice(ctx, txn, btree.Full(), false)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []collate.Key{k(1), k(3), k(5)}, out)

	rev, err := tree.Slice(ctx, txn, btree.Full(), true)
	require.NoError(t, err)
	assert.Equal(t, []collate.Key{k(5), k(3), k(1)}, rev)
}

func TestBTree_DuplicateKeysAppended(t *testing.T) {
	ctx := context.Background()
	tree, _ := newTree(t)
	txn := types.NewTxnID(1, 0)

	require.NoError(t, tree.Insert(ctx, txn, k(1)))
	require.NoError(t, tree.Insert(ctx, txn, k(1)))

	n, err := tree.Len(ctx, txn, btree.Full())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestBTree_DeleteRangeTombstones(t *testing.T) {
	ctx := context.Background()
	tree, _ := newTree(t)
	txn := types.NewTxnID(1, 0)

	for _, v := range []int64{1, 2, 3, 4, 5} {
		require.NoError(t, tree.Insert(ctx, txn, k(v)))
	}

	require.NoError(t, tree.Delete(ctx, txn, btree.Range{Start: k(2), End: k(4)}))

	out, err := tree.Slice(ctx, txn, btree.Full(), false)
	require.NoError(t, err)
	assert.Equal(t, []collate.Key{k(1), k(4), k(5)}, out)
}

func TestBTree_CommitPersistsAcrossTxns(t *testing.T) {
	ctx := context.Background()
	tree, _ := newTree(t)
	a := types.NewTxnID(1, 0)
	b := types.NewTxnID(2, 0)

	require.NoError(t, tree.Insert(ctx, a, k(1)))
	require.NoError(t, tree.Commit(ctx, a))
	require.NoError(t, tree.Finalize(a))

	out, err := tree.Slice(ctx, b, btree.Full(), false)
	require.NoError(t, err)
	assert.Equal(t, []collate.Key{k(1)}, out)
}

func TestRange_NestedContainment(t *testing.T) {
	c, err := collate.New([]types.NumberType{types.Int64})
	require.NoError(t, err)

	outer := btree.Range{Start: k(0), End: k(10)}
	inner := btree.Range{Start: k(2), End: k(8)}
	assert.True(t, outer.Contains(c, inner))

	tooWide := btree.Range{Start: k(0), End: k(20)}
	assert.False(t, outer.Contains(c, tooWide))
}
