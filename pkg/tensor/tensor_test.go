package tensor_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamedEssam/tinychain/pkg/cache"
	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/tensor"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

func newDense(t *testing.T, shape types.Shape) *tensor.Dense {
	t.Helper()
	c := cache.New(1 << 24)
	return tensor.NewDense(filepath.Join(t.TempDir(), "t"), c, shape, types.Float64)
}

func TestDense_ReadWriteRoundTrip(t *testing.T) {
	ctx := context.Background()
	txn := types.NewTxnID(1, 0)
	d := newDense(t, types.Shape{2, 3})

	require.NoError(t, d.WriteValueAt(ctx, txn, types.Coord{1, 2}, 7))
	v, err := d.ReadValue(ctx, txn, types.Coord{1, 2})
	require.NoError(t, err)
	assert.Equal(t, float64(7), v)

	v0, err := d.ReadValue(ctx, txn, types.Coord{0, 0})
	require.NoError(t, err)
	assert.Equal(t, float64(0), v0)
}

// S3: writes through a Broadcast view are rejected.
func TestTensor_S3_BroadcastWriteRejected(t *testing.T) {
	ctx := context.Background()
	txn := types.NewTxnID(1, 0)
	d := newDense(t, types.Shape{1, 4})

	view, err := d.Transform().Broadcast(types.Shape{3, 4})
	require.NoError(t, err)

	err = view.WriteValue(ctx, txn, types.All(types.Shape{3, 4}), 5)
	require.Error(t, err)
	assert.Equal(t, tcerr.Unsupported, tcerr.Of(err))
}

// S4: transpose round trip, map_coord(invert_coord(c)) = c.
func TestTensor_S4_TransposeRoundTrip(t *testing.T) {
	perm := []int{2, 0, 1}
	rebase, err := tensor.NewTranspose(types.Shape{2, 3, 5}, perm)
	require.NoError(t, err)

	out := types.Coord{1, 2, 4}
	src, err := rebase.InvertCoord(out)
	require.NoError(t, err)

	back, err := rebase.MapCoord(src)
	require.NoError(t, err)
	assert.True(t, out.Equal(back))
}

func TestTensor_SliceExpandBijection(t *testing.T) {
	rebase, err := tensor.NewSlice(types.Shape{5, 5}, types.Bounds{types.In(1, 4), types.In(0, 5)})
	require.NoError(t, err)

	out := types.Coord{1, 3}
	src, err := rebase.InvertCoord(out)
	require.NoError(t, err)
	back, err := rebase.MapCoord(src)
	require.NoError(t, err)
	assert.True(t, out.Equal(back))

	expand, err := tensor.NewExpand(types.Shape{3, 4}, 1)
	require.NoError(t, err)
	out2 := types.Coord{2, 0, 3}
	src2, err := expand.InvertCoord(out2)
	require.NoError(t, err)
	back2, err := expand.MapCoord(src2)
	require.NoError(t, err)
	assert.True(t, out2.Equal(back2))
}

func TestTensor_BroadcastSatisfiesOneDirectionOnly(t *testing.T) {
	rebase, err := tensor.NewBroadcast(types.Shape{1, 4}, types.Shape{3, 4})
	require.NoError(t, err)

	out := types.Coord{2, 3}
	src, err := rebase.InvertCoord(out)
	require.NoError(t, err)
	assert.Equal(t, types.Coord{0, 3}, src)

	back, err := rebase.MapCoord(src)
	require.NoError(t, err)
	assert.True(t, src.Equal(mustInvert(t, rebase, back)))
}

func mustInvert(t *testing.T, rebase tensor.Rebase, out types.Coord) types.Coord {
	t.Helper()
	src, err := rebase.InvertCoord(out)
	require.NoError(t, err)
	return src
}

// S5: sparse sum_all.
func TestTensor_S5_SparseSumAll(t *testing.T) {
	ctx := context.Background()
	txn := types.NewTxnID(1, 0)

	c := cache.New(1 << 20)
	s, err := tensor.NewSparse(filepath.Join(t.TempDir(), "sparse"), c, types.Shape{100, 100}, types.Float64)
	require.NoError(t, err)

	require.NoError(t, s.WriteValueAt(ctx, txn, types.Coord{0, 0}, 3))
	require.NoError(t, s.WriteValueAt(ctx, txn, types.Coord{50, 50}, 7))

	sum, err := s.SumAll(ctx, txn)
	require.NoError(t, err)
	assert.Equal(t, float64(10), sum)
}

func TestTensor_SparseZeroWriteDeletes(t *testing.T) {
	ctx := context.Background()
	txn := types.NewTxnID(1, 0)

	c := cache.New(1 << 20)
	s, err := tensor.NewSparse(filepath.Join(t.TempDir(), "sparse"), c, types.Shape{10}, types.Float64)
	require.NoError(t, err)

	require.NoError(t, s.WriteValueAt(ctx, txn, types.Coord{3}, 9))
	require.NoError(t, s.WriteValueAt(ctx, txn, types.Coord{3}, 0))

	v, err := s.ReadValue(ctx, txn, types.Coord{3})
	require.NoError(t, err)
	assert.Equal(t, float64(0), v)

	coords, _, err := s.Filled(ctx, txn)
	require.NoError(t, err)
	assert.Empty(t, coords)
}

// S7: reduction correctness for sum(axis).
func TestTensor_S7_SumAxis(t *testing.T) {
	ctx := context.Background()
	txn := types.NewTxnID(1, 0)
	d := newDense(t, types.Shape{2, 3})

	values := map[[2]uint64]float64{
		{0, 0}: 1, {0, 1}: 2, {0, 2}: 3,
		{1, 0}: 4, {1, 1}: 5, {1, 2}: 6,
	}
	for coord, v := range values {
		require.NoError(t, d.WriteValueAt(ctx, txn, types.Coord{coord[0], coord[1]}, v))
	}

	out, err := tensor.SumAxis(ctx, txn, d, 1)
	require.NoError(t, err)
	v0, _ := out.ReadValue(ctx, txn, types.Coord{0})
	v1, _ := out.ReadValue(ctx, txn, types.Coord{1})
	assert.Equal(t, float64(6), v0)
	assert.Equal(t, float64(15), v1)
}

// S8: dense/sparse equivalence.
func TestTensor_S8_DenseSparseEquivalence(t *testing.T) {
	ctx := context.Background()
	txn := types.NewTxnID(1, 0)

	c := cache.New(1 << 20)
	sparse, err := tensor.NewSparse(filepath.Join(t.TempDir(), "sp"), c, types.Shape{4, 4}, types.Float64)
	require.NoError(t, err)
	require.NoError(t, sparse.WriteValueAt(ctx, txn, types.Coord{1, 1}, 2))
	require.NoError(t, sparse.WriteValueAt(ctx, txn, types.Coord{3, 0}, 5))

	dense := tensor.NewDense(filepath.Join(t.TempDir(), "d"), cache.New(1<<20), types.Shape{4, 4}, types.Float64)
	require.NoError(t, tensor.DenseFromSparse(ctx, txn, sparse, dense))

	for _, coord := range []types.Coord{{1, 1}, {3, 0}, {0, 0}, {2, 2}} {
		sv, err := sparse.ReadValue(ctx, txn, coord)
		require.NoError(t, err)
		dv, err := dense.ReadValue(ctx, txn, coord)
		require.NoError(t, err)
		assert.Equal(t, sv, dv)
	}
}

func TestTensor_WriteValueFillsBounds(t *testing.T) {
	ctx := context.Background()
	txn := types.NewTxnID(1, 0)
	d := newDense(t, types.Shape{2, 2})

	require.NoError(t, d.WriteValue(ctx, txn, types.All(types.Shape{2, 2}), 4))

	for _, c := range tensor.EnumerateCoords(types.All(types.Shape{2, 2})) {
		v, err := d.ReadValue(ctx, txn, c)
		require.NoError(t, err)
		assert.Equal(t, float64(4), v)
	}
}
