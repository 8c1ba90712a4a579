package tensor

import (
	"context"
	"math"

	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

// View is a lazy TensorTransform over a source TensorIO, composed from
// one Rebase record (spec §4.6 "Views"). Chained transforms (e.g.
// slice-of-transpose) compose their Rebases rather than materializing
// intermediate tensors.
type View struct {
	source TensorIO
	rebase Rebase
	dtype  types.NumberType
}

// NewView wraps source with rebase.
func NewView(source TensorIO, rebase Rebase) *View {
	return &View{source: source, rebase: rebase, dtype: source.DType()}
}

func (v *View) DType() types.NumberType { return v.dtype }
func (v *View) NDim() int                { return len(v.rebase.TargetShape()) }
func (v *View) Shape() types.Shape       { return v.rebase.TargetShape() }
func (v *View) Size() uint64             { return v.Shape().Size() }

func (v *View) castValue(value float64) float64 {
	if v.dtype.IsOrderedInteger() {
		return math.Trunc(value)
	}
	return value
}

func (v *View) ReadValue(ctx context.Context, txn types.TxnID, coord types.Coord) (float64, error) {
	src, err := v.rebase.InvertCoord(coord)
	if err != nil {
		return 0, err
	}
	value, err := v.source.ReadValue(ctx, txn, src)
	if err != nil {
		return 0, err
	}
	return v.castValue(value), nil
}

func (v *View) WriteValueAt(ctx context.Context, txn types.TxnID, coord types.Coord, value float64) error {
	if !v.rebase.Writable() {
		return tcerr.Unsupportedf("write not supported through this view")
	}
	src, err := v.rebase.InvertCoord(coord)
	if err != nil {
		return err
	}
	return v.source.WriteValueAt(ctx, txn, src, v.castValue(value))
}

func (v *View) WriteValue(ctx context.Context, txn types.TxnID, bounds types.Bounds, value float64) error {
	if !v.rebase.Writable() {
		return tcerr.Unsupportedf("write not supported through this view")
	}
	src, err := v.rebase.InvertBounds(bounds)
	if err != nil {
		return err
	}
	return v.source.WriteValue(ctx, txn, src, v.castValue(value))
}

func (v *View) Cast(dtype types.NumberType) TensorIO {
	return &View{source: v.source, rebase: v.rebase, dtype: dtype}
}

func (v *View) Slice(bounds types.Bounds) (TensorIO, error) {
	outer, err := NewSlice(v.Shape(), bounds)
	if err != nil {
		return nil, err
	}
	return &View{source: v.source, rebase: chain(outer, v.rebase), dtype: v.dtype}, nil
}

func (v *View) Broadcast(shape types.Shape) (TensorIO, error) {
	outer, err := NewBroadcast(v.Shape(), shape)
	if err != nil {
		return nil, err
	}
	return &View{source: v.source, rebase: chain(outer, v.rebase), dtype: v.dtype}, nil
}

func (v *View) ExpandDims(axis int) (TensorIO, error) {
	outer, err := NewExpand(v.Shape(), axis)
	if err != nil {
		return nil, err
	}
	return &View{source: v.source, rebase: chain(outer, v.rebase), dtype: v.dtype}, nil
}

func (v *View) Transpose(permutation []int) (TensorIO, error) {
	outer, err := NewTranspose(v.Shape(), permutation)
	if err != nil {
		return nil, err
	}
	return &View{source: v.source, rebase: chain(outer, v.rebase), dtype: v.dtype}, nil
}

// chainedRebase composes an outer Rebase (defined in terms of the
// current view's apparent shape) with the inner Rebase that already
// maps that apparent shape back to the real source.
type chainedRebase struct {
	outer Rebase
	inner Rebase
}

func chain(outer, inner Rebase) Rebase { return &chainedRebase{outer: outer, inner: inner} }

func (c *chainedRebase) SourceShape() types.Shape { return c.inner.SourceShape() }
func (c *chainedRebase) TargetShape() types.Shape { return c.outer.TargetShape() }
func (c *chainedRebase) Writable() bool           { return c.outer.Writable() && c.inner.Writable() }

func (c *chainedRebase) InvertCoord(out types.Coord) (types.Coord, error) {
	mid, err := c.outer.InvertCoord(out)
	if err != nil {
		return nil, err
	}
	return c.inner.InvertCoord(mid)
}

func (c *chainedRebase) MapCoord(src types.Coord) (types.Coord, error) {
	mid, err := c.inner.MapCoord(src)
	if err != nil {
		return nil, err
	}
	return c.outer.MapCoord(mid)
}

func (c *chainedRebase) InvertBounds(out types.Bounds) (types.Bounds, error) {
	mid, err := c.outer.InvertBounds(out)
	if err != nil {
		return nil, err
	}
	return c.inner.InvertBounds(mid)
}
