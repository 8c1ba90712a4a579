package tensor

import (
	"context"

	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

// SumAxis and ProductAxis implement spec §4.6's reduction algorithm:
// for every (prefix, suffix) pair around axis, fold across the axis
// dimension and write the result at (prefix ++ suffix) in a new
// in-memory tensor whose shape has axis removed.
func SumAxis(ctx context.Context, txn types.TxnID, t TensorIO, axis int) (*MemDense, error) {
	return reduceAxis(ctx, txn, t, axis, 0, func(acc, v float64) float64 { return acc + v })
}

func ProductAxis(ctx context.Context, txn types.TxnID, t TensorIO, axis int) (*MemDense, error) {
	return reduceAxis(ctx, txn, t, axis, 1, func(acc, v float64) float64 { return acc * v })
}

func reduceAxis(ctx context.Context, txn types.TxnID, t TensorIO, axis int, identity float64, fold func(acc, v float64) float64) (*MemDense, error) {
	shape := t.Shape()
	if axis < 0 || axis >= len(shape) {
		return nil, tcerr.BadRequestf("axis %d out of range for shape %s", axis, shape)
	}

	outShape := make(types.Shape, 0, len(shape)-1)
	outShape = append(outShape, shape[:axis]...)
	outShape = append(outShape, shape[axis+1:]...)
	out := NewMemDense(outShape, t.DType())

	for _, outCoord := range EnumerateCoords(types.All(outShape)) {
		acc := identity
		srcCoord := make(types.Coord, len(shape))
		copy(srcCoord[:axis], outCoord[:axis])
		copy(srcCoord[axis+1:], outCoord[axis:])
		for k := uint64(0); k < shape[axis]; k++ {
			srcCoord[axis] = k
			v, err := t.ReadValue(ctx, txn, srcCoord)
			if err != nil {
				return nil, err
			}
			acc = fold(acc, v)
		}
		if err := out.WriteValueAt(ctx, txn, outCoord, acc); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SumAll and ProductAll fold every element of t into a scalar.
func SumAll(ctx context.Context, txn types.TxnID, t TensorIO) (float64, error) {
	return foldAll(ctx, txn, t, 0, func(acc, v float64) float64 { return acc + v })
}

func ProductAll(ctx context.Context, txn types.TxnID, t TensorIO) (float64, error) {
	return foldAll(ctx, txn, t, 1, func(acc, v float64) float64 { return acc * v })
}

func foldAll(ctx context.Context, txn types.TxnID, t TensorIO, identity float64, fold func(acc, v float64) float64) (float64, error) {
	acc := identity
	for _, c := range EnumerateCoords(types.All(t.Shape())) {
		v, err := t.ReadValue(ctx, txn, c)
		if err != nil {
			return 0, err
		}
		acc = fold(acc, v)
	}
	return acc, nil
}
