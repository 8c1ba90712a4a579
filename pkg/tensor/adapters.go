package tensor

import (
	"context"

	"github.com/MuhamedEssam/tinychain/pkg/types"
)

// DenseFromSparse materializes a sparse tensor's values into out, a
// zero-initialized dense destination of the same shape (spec §4.6
// "Dense view of a sparse tensor"): every filled row is scattered into
// its corresponding coordinate, leaving every other coordinate zero.
func DenseFromSparse(ctx context.Context, txn types.TxnID, src *Sparse, dst *Dense) error {
	coords, values, err := src.Filled(ctx, txn)
	if err != nil {
		return err
	}
	for i, c := range coords {
		if err := dst.WriteValueAt(ctx, txn, c, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// SparseFromDense materializes a dense tensor's non-zero values into
// dst (spec §4.6 "Sparse view of a dense tensor"): iterate dense
// blocks, filter non-zero.
func SparseFromDense(ctx context.Context, txn types.TxnID, src *Dense, dst *Sparse) error {
	for _, c := range EnumerateCoords(types.All(src.Shape())) {
		v, err := src.ReadValue(ctx, txn, c)
		if err != nil {
			return err
		}
		if v == 0 {
			continue
		}
		if err := dst.WriteValueAt(ctx, txn, c, v); err != nil {
			return err
		}
	}
	return nil
}
