package tensor

import (
	"context"

	"github.com/MuhamedEssam/tinychain/pkg/types"
)

// PerBlock is the number of flattened elements stored per dense block
// (spec §4.6).
const PerBlock = 131072

// DefaultParallelism bounds how many concurrent block I/Os a single
// bulk operation may issue (spec §9).
const DefaultParallelism = 2

// TensorAccess is the read-only shape contract shared by every dense,
// sparse, and view tensor.
type TensorAccess interface {
	DType() types.NumberType
	NDim() int
	Shape() types.Shape
	Size() uint64
}

// TensorIO adds value-level read/write to TensorAccess.
type TensorIO interface {
	TensorAccess
	ReadValue(ctx context.Context, txn types.TxnID, coord types.Coord) (float64, error)
	WriteValue(ctx context.Context, txn types.TxnID, bounds types.Bounds, value float64) error
	WriteValueAt(ctx context.Context, txn types.TxnID, coord types.Coord, value float64) error
}

// TensorTransform adds the five composable, lazy views (spec §4.7).
type TensorTransform interface {
	TensorIO
	Broadcast(shape types.Shape) (TensorIO, error)
	Cast(dtype types.NumberType) TensorIO
	ExpandDims(axis int) (TensorIO, error)
	Slice(bounds types.Bounds) (TensorIO, error)
	Transpose(permutation []int) (TensorIO, error)
}
