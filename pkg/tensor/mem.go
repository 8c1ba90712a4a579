package tensor

import (
	"context"

	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

// MemDense is a plain in-memory dense tensor: the output of a
// reduction (spec §4.6) isn't itself transactional, so it doesn't need
// a TxnFile behind it. ctx and txn are accepted (and ignored) so
// MemDense satisfies TensorIO like every file-backed layout.
type MemDense struct {
	shape   types.Shape
	dtype   types.NumberType
	strides []uint64
	values  []float64
}

// NewMemDense allocates a zero-filled in-memory tensor of shape.
func NewMemDense(shape types.Shape, dtype types.NumberType) *MemDense {
	return &MemDense{
		shape:   shape,
		dtype:   dtype,
		strides: strides(shape),
		values:  make([]float64, shape.Size()),
	}
}

func (m *MemDense) DType() types.NumberType { return m.dtype }
func (m *MemDense) NDim() int                { return len(m.shape) }
func (m *MemDense) Shape() types.Shape       { return m.shape }
func (m *MemDense) Size() uint64             { return m.shape.Size() }

func (m *MemDense) ReadValue(_ context.Context, _ types.TxnID, coord types.Coord) (float64, error) {
	off := offset(coord, m.strides)
	if off >= uint64(len(m.values)) {
		return 0, tcerr.BadRequestf("coordinate out of range")
	}
	return m.values[off], nil
}

func (m *MemDense) WriteValueAt(_ context.Context, _ types.TxnID, coord types.Coord, value float64) error {
	off := offset(coord, m.strides)
	if off >= uint64(len(m.values)) {
		return tcerr.BadRequestf("coordinate out of range")
	}
	m.values[off] = value
	return nil
}

func (m *MemDense) WriteValue(ctx context.Context, txn types.TxnID, bounds types.Bounds, value float64) error {
	for _, c := range EnumerateCoords(bounds) {
		if err := m.WriteValueAt(ctx, txn, c, value); err != nil {
			return err
		}
	}
	return nil
}
