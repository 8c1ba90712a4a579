package tensor

import (
	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

// Rebase maps between a view's external coordinates/bounds and its
// source tensor's coordinates/bounds (spec §4.7). Every TensorTransform
// view stores exactly one Rebase record.
type Rebase interface {
	SourceShape() types.Shape
	TargetShape() types.Shape
	InvertCoord(out types.Coord) (types.Coord, error)
	MapCoord(src types.Coord) (types.Coord, error)
	InvertBounds(out types.Bounds) (types.Bounds, error)
	// Writable is false for views that are not a bijection (Broadcast).
	Writable() bool
}

// --- Slice -----------------------------------------------------------

type sliceRebase struct {
	source types.Shape
	bounds types.Bounds // always one AxisBounds per source axis
}

// NewSlice builds the Rebase for tensor.Slice(bounds): source.contains(bounds)
// is required (spec §4.7).
func NewSlice(source types.Shape, bounds types.Bounds) (Rebase, error) {
	if !source.Contains(bounds) {
		return nil, tcerr.BadRequestf("bounds %s out of range for shape %s", bounds, source)
	}
	full := make(types.Bounds, len(source))
	for ax := range source {
		if ax < len(bounds) {
			full[ax] = bounds[ax]
		} else {
			full[ax] = types.In(0, source[ax])
		}
	}
	return &sliceRebase{source: source, bounds: full}, nil
}

func (s *sliceRebase) SourceShape() types.Shape { return s.source }
func (s *sliceRebase) TargetShape() types.Shape { return s.bounds.OutputShape(false) }
func (s *sliceRebase) Writable() bool           { return true }

func (s *sliceRebase) InvertCoord(out types.Coord) (types.Coord, error) {
	src := make(types.Coord, len(s.bounds))
	oi := 0
	for ax, ab := range s.bounds {
		switch ab.Kind {
		case types.AxisAt:
			src[ax] = ab.At
		default:
			if oi >= len(out) {
				return nil, tcerr.BadRequestf("coordinate too short for slice view")
			}
			if out[oi] >= ab.Len() {
				return nil, tcerr.BadRequestf("coordinate %d out of range for axis selection %s", out[oi], ab)
			}
			src[ax] = ab.Nth(out[oi])
			oi++
		}
	}
	return src, nil
}

func (s *sliceRebase) MapCoord(src types.Coord) (types.Coord, error) {
	out := make(types.Coord, 0, len(s.bounds))
	for ax, ab := range s.bounds {
		if ax >= len(src) {
			return nil, tcerr.BadRequestf("source coordinate too short for slice view")
		}
		switch ab.Kind {
		case types.AxisAt:
			continue
		case types.AxisIn:
			out = append(out, src[ax]-ab.Start)
		case types.AxisOf:
			pos := -1
			for i, v := range ab.Indices {
				if v == src[ax] {
					pos = i
					break
				}
			}
			if pos < 0 {
				return nil, tcerr.BadRequestf("coordinate %d not enumerated on axis %d", src[ax], ax)
			}
			out = append(out, uint64(pos))
		}
	}
	return out, nil
}

func (s *sliceRebase) InvertBounds(out types.Bounds) (types.Bounds, error) {
	src := make(types.Bounds, len(s.bounds))
	oi := 0
	for ax, ab := range s.bounds {
		if ab.Kind == types.AxisAt {
			src[ax] = types.At(ab.At)
			continue
		}
		rel := types.In(0, ab.Len())
		if oi < len(out) {
			rel = out[oi]
		}
		shifted, err := shiftAxis(ab, rel)
		if err != nil {
			return nil, err
		}
		src[ax] = shifted
		oi++
	}
	return src, nil
}

// shiftAxis reinterprets rel (expressed relative to base's own output
// range) in terms of base's source coordinates.
func shiftAxis(base, rel types.AxisBounds) (types.AxisBounds, error) {
	switch base.Kind {
	case types.AxisIn:
		switch rel.Kind {
		case types.AxisAt:
			return types.At(base.Start + rel.At), nil
		case types.AxisIn:
			return types.In(base.Start+rel.Start, base.Start+rel.End), nil
		case types.AxisOf:
			idxs := make([]uint64, len(rel.Indices))
			for i, v := range rel.Indices {
				idxs[i] = base.Start + v
			}
			return types.Of(idxs...), nil
		}
	case types.AxisOf:
		switch rel.Kind {
		case types.AxisAt:
			if int(rel.At) >= len(base.Indices) {
				return types.AxisBounds{}, tcerr.BadRequestf("index out of range for enumerated axis")
			}
			return types.At(base.Indices[rel.At]), nil
		case types.AxisIn:
			if rel.End > uint64(len(base.Indices)) {
				return types.AxisBounds{}, tcerr.BadRequestf("range out of bounds for enumerated axis")
			}
			return types.Of(base.Indices[rel.Start:rel.End]...), nil
		case types.AxisOf:
			idxs := make([]uint64, len(rel.Indices))
			for i, v := range rel.Indices {
				if int(v) >= len(base.Indices) {
					return types.AxisBounds{}, tcerr.BadRequestf("index out of range for enumerated axis")
				}
				idxs[i] = base.Indices[v]
			}
			return types.Of(idxs...), nil
		}
	}
	return types.AxisBounds{}, tcerr.Internalf("unsupported axis bounds composition")
}

// --- Broadcast ---------------------------------------------------------

type broadcastRebase struct {
	source types.Shape
	target types.Shape
	offset int
}

// NewBroadcast builds the Rebase for tensor.Broadcast(shape): every
// source axis must equal the corresponding target axis or be 1 (spec
// §4.7); the target may additionally have leading axes the source
// lacks entirely.
func NewBroadcast(source types.Shape, target types.Shape) (Rebase, error) {
	offset := len(target) - len(source)
	if offset < 0 {
		return nil, tcerr.BadRequestf("cannot broadcast shape %s to smaller shape %s", source, target)
	}
	for ax, d := range source {
		td := target[ax+offset]
		if d != td && d != 1 {
			return nil, tcerr.BadRequestf("axis %d: cannot broadcast dimension %d to %d", ax, d, td)
		}
	}
	return &broadcastRebase{source: source, target: target, offset: offset}, nil
}

func (b *broadcastRebase) SourceShape() types.Shape { return b.source }
func (b *broadcastRebase) TargetShape() types.Shape { return b.target }
func (b *broadcastRebase) Writable() bool           { return false }

func (b *broadcastRebase) InvertCoord(out types.Coord) (types.Coord, error) {
	if len(out) != len(b.target) {
		return nil, tcerr.BadRequestf("coordinate does not match broadcast target shape")
	}
	src := make(types.Coord, len(b.source))
	for ax, d := range b.source {
		dstIdx := out[ax+b.offset]
		if d == b.target[ax+b.offset] {
			src[ax] = dstIdx
		} else {
			src[ax] = 0
		}
	}
	return src, nil
}

func (b *broadcastRebase) MapCoord(src types.Coord) (types.Coord, error) {
	if len(src) != len(b.source) {
		return nil, tcerr.BadRequestf("coordinate does not match broadcast source shape")
	}
	out := make(types.Coord, len(b.target))
	for ax := 0; ax < b.offset; ax++ {
		out[ax] = 0
	}
	for ax, d := range b.source {
		if d == b.target[ax+b.offset] {
			out[ax+b.offset] = src[ax]
		} else {
			out[ax+b.offset] = 0
		}
	}
	return out, nil
}

func (b *broadcastRebase) InvertBounds(types.Bounds) (types.Bounds, error) {
	return nil, tcerr.Unsupportedf("broadcast view does not support bounds inversion for writes")
}

// --- Expand ------------------------------------------------------------

type expandRebase struct {
	source types.Shape
	axis   int
}

// NewExpand builds the Rebase for tensor.ExpandDims(axis): axis <= ndim.
func NewExpand(source types.Shape, axis int) (Rebase, error) {
	if axis < 0 || axis > len(source) {
		return nil, tcerr.BadRequestf("axis %d out of range for expand_dims", axis)
	}
	return &expandRebase{source: source, axis: axis}, nil
}

func (e *expandRebase) SourceShape() types.Shape { return e.source }

func (e *expandRebase) TargetShape() types.Shape {
	out := make(types.Shape, 0, len(e.source)+1)
	out = append(out, e.source[:e.axis]...)
	out = append(out, 1)
	out = append(out, e.source[e.axis:]...)
	return out
}

func (e *expandRebase) Writable() bool { return true }

func (e *expandRebase) InvertCoord(out types.Coord) (types.Coord, error) {
	if len(out) != len(e.source)+1 {
		return nil, tcerr.BadRequestf("coordinate does not match expanded shape")
	}
	src := make(types.Coord, 0, len(e.source))
	src = append(src, out[:e.axis]...)
	src = append(src, out[e.axis+1:]...)
	return src, nil
}

func (e *expandRebase) MapCoord(src types.Coord) (types.Coord, error) {
	if len(src) != len(e.source) {
		return nil, tcerr.BadRequestf("coordinate does not match source shape")
	}
	out := make(types.Coord, 0, len(src)+1)
	out = append(out, src[:e.axis]...)
	out = append(out, 0)
	out = append(out, src[e.axis:]...)
	return out, nil
}

func (e *expandRebase) InvertBounds(out types.Bounds) (types.Bounds, error) {
	if len(out) != len(e.source)+1 {
		return nil, tcerr.BadRequestf("bounds do not match expanded shape")
	}
	src := make(types.Bounds, 0, len(e.source))
	src = append(src, out[:e.axis]...)
	src = append(src, out[e.axis+1:]...)
	return src, nil
}

// --- Transpose -----------------------------------------------------------

type transposeRebase struct {
	source types.Shape
	perm   []int
}

// NewTranspose builds the Rebase for tensor.Transpose(permutation):
// permutation must be a permutation of 0..ndim (spec §4.7).
func NewTranspose(source types.Shape, perm []int) (Rebase, error) {
	if len(perm) != len(source) {
		return nil, tcerr.BadRequestf("permutation length %d does not match ndim %d", len(perm), len(source))
	}
	seen := make([]bool, len(perm))
	for _, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return nil, tcerr.BadRequestf("invalid permutation %v", perm)
		}
		seen[p] = true
	}
	return &transposeRebase{source: source, perm: append([]int{}, perm...)}, nil
}

func (t *transposeRebase) SourceShape() types.Shape { return t.source }

func (t *transposeRebase) TargetShape() types.Shape {
	out := make(types.Shape, len(t.source))
	for k, p := range t.perm {
		out[k] = t.source[p]
	}
	return out
}

func (t *transposeRebase) Writable() bool { return true }

func (t *transposeRebase) InvertCoord(out types.Coord) (types.Coord, error) {
	if len(out) != len(t.perm) {
		return nil, tcerr.BadRequestf("coordinate does not match transposed shape")
	}
	src := make(types.Coord, len(t.perm))
	for k, p := range t.perm {
		src[p] = out[k]
	}
	return src, nil
}

func (t *transposeRebase) MapCoord(src types.Coord) (types.Coord, error) {
	if len(src) != len(t.perm) {
		return nil, tcerr.BadRequestf("coordinate does not match source shape")
	}
	out := make(types.Coord, len(t.perm))
	for k, p := range t.perm {
		out[k] = src[p]
	}
	return out, nil
}

func (t *transposeRebase) InvertBounds(out types.Bounds) (types.Bounds, error) {
	if len(out) != len(t.perm) {
		return nil, tcerr.BadRequestf("bounds do not match transposed shape")
	}
	src := make(types.Bounds, len(t.perm))
	for k, p := range t.perm {
		src[p] = out[k]
	}
	return src, nil
}

// --- Reduce --------------------------------------------------------------

type reduceRebase struct {
	source types.Shape
	axis   int
}

// NewReduce builds the Rebase for a reduction along axis: axis < ndim.
// Point-level InvertCoord picks element 0 of the reduced axis, since a
// single coordinate cannot address a reduced value. InvertBounds
// inserts the full range of the reduced axis. SumAxis and ProductAxis
// do not use this Rebase: reduceAxis enumerates source coordinates and
// reads them directly.
func NewReduce(source types.Shape, axis int) (Rebase, error) {
	if axis < 0 || axis >= len(source) {
		return nil, tcerr.BadRequestf("axis %d out of range for reduce", axis)
	}
	return &reduceRebase{source: source, axis: axis}, nil
}

func (r *reduceRebase) SourceShape() types.Shape { return r.source }

func (r *reduceRebase) TargetShape() types.Shape {
	out := make(types.Shape, 0, len(r.source)-1)
	out = append(out, r.source[:r.axis]...)
	out = append(out, r.source[r.axis+1:]...)
	return out
}

func (r *reduceRebase) Writable() bool { return false }

func (r *reduceRebase) InvertCoord(out types.Coord) (types.Coord, error) {
	src := make(types.Coord, 0, len(r.source))
	src = append(src, out[:r.axis]...)
	src = append(src, 0)
	src = append(src, out[r.axis:]...)
	return src, nil
}

func (r *reduceRebase) MapCoord(src types.Coord) (types.Coord, error) {
	out := make(types.Coord, 0, len(r.source)-1)
	out = append(out, src[:r.axis]...)
	out = append(out, src[r.axis+1:]...)
	return out, nil
}

func (r *reduceRebase) InvertBounds(out types.Bounds) (types.Bounds, error) {
	src := make(types.Bounds, 0, len(r.source))
	src = append(src, out[:r.axis]...)
	src = append(src, types.In(0, r.source[r.axis]))
	src = append(src, out[r.axis:]...)
	return src, nil
}
