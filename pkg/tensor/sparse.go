package tensor

import (
	"context"

	"github.com/MuhamedEssam/tinychain/pkg/btree"
	"github.com/MuhamedEssam/tinychain/pkg/cache"
	"github.com/MuhamedEssam/tinychain/pkg/collate"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

// Sparse is the sparse tensor layout (spec §4.6): a B-tree keyed on
// coordinates, collated over the ndim coordinate columns only. Each
// row's key carries one extra, uncollated trailing column holding the
// cell's float64 value — the Collator's schema stops at the
// coordinate columns, so two rows with the same coordinates always
// compare equal regardless of value, giving write_value upsert
// semantics for free via BTree.Upsert.
type Sparse struct {
	tree  *btree.BTree
	shape types.Shape
	dtype types.NumberType
}

// NewSparse opens a sparse tensor rooted at path.
func NewSparse(path string, c *cache.Cache, shape types.Shape, dtype types.NumberType) (*Sparse, error) {
	schema := make([]types.NumberType, len(shape))
	for i := range schema {
		schema[i] = types.UInt64
	}
	collator, err := collate.New(schema)
	if err != nil {
		return nil, err
	}
	return &Sparse{tree: btree.New(path, c, collator), shape: shape, dtype: dtype}, nil
}

func (s *Sparse) DType() types.NumberType { return s.dtype }
func (s *Sparse) NDim() int                { return len(s.shape) }
func (s *Sparse) Shape() types.Shape       { return s.shape }
func (s *Sparse) Size() uint64             { return s.shape.Size() }

func coordKey(coord types.Coord) collate.Key {
	key := make(collate.Key, len(coord))
	for i, c := range coord {
		key[i] = c
	}
	return key
}

// ReadValue returns the value stored at coord, or zero if no row
// exists there.
func (s *Sparse) ReadValue(ctx context.Context, txn types.TxnID, coord types.Coord) (float64, error) {
	full, ok, err := s.tree.Get(ctx, txn, coordKey(coord))
	if err != nil || !ok {
		return 0, err
	}
	return full[len(coord)].(float64), nil
}

// WriteValueAt inserts or updates the row at coord; a zero value
// deletes the row (spec §4.6).
func (s *Sparse) WriteValueAt(ctx context.Context, txn types.TxnID, coord types.Coord, value float64) error {
	key := coordKey(coord)
	if value == 0 {
		return s.tree.DeleteKey(ctx, txn, key)
	}
	full := append(key, value)
	return s.tree.Upsert(ctx, txn, full)
}

// WriteValue fills every coordinate in bounds with value.
func (s *Sparse) WriteValue(ctx context.Context, txn types.TxnID, bounds types.Bounds, value float64) error {
	for _, c := range EnumerateCoords(bounds) {
		if err := s.WriteValueAt(ctx, txn, c, value); err != nil {
			return err
		}
	}
	return nil
}

// Filled streams every non-deleted (coord, value) row, ordered by
// coordinate.
func (s *Sparse) Filled(ctx context.Context, txn types.TxnID) ([]types.Coord, []float64, error) {
	keys, err := s.tree.Slice(ctx, txn, btree.Full(), false)
	if err != nil {
		return nil, nil, err
	}

	coords := make([]types.Coord, len(keys))
	values := make([]float64, len(keys))
	for i, k := range keys {
		ndim := len(k) - 1
		coord := make(types.Coord, ndim)
		for j := 0; j < ndim; j++ {
			coord[j] = k[j].(uint64)
		}
		coords[i] = coord
		values[i] = k[ndim].(float64)
	}
	return coords, values, nil
}

// SumAll folds every stored value (spec §8 S5: zero elsewhere
// contributes nothing).
func (s *Sparse) SumAll(ctx context.Context, txn types.TxnID) (float64, error) {
	_, values, err := s.Filled(ctx, txn)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum, nil
}

func (s *Sparse) Commit(ctx context.Context, txn types.TxnID) error { return s.tree.Commit(ctx, txn) }
func (s *Sparse) Finalize(txn types.TxnID) error                    { return s.tree.Finalize(txn) }
