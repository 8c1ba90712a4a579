package types

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Coord is a logical N-D index into a tensor, one value per axis.
type Coord []uint64

func (c Coord) Clone() Coord {
	out := make(Coord, len(c))
	copy(out, c)
	return out
}

func (c Coord) Equal(other Coord) bool {
	return slices.Equal(c, other)
}

// Shape is the per-axis extent of a tensor.
type Shape []uint64

// Size returns the product of all axis extents (Π shape).
func (s Shape) Size() uint64 {
	var size uint64 = 1
	for _, d := range s {
		size *= d
	}
	return size
}

// Contains reports whether every axis of b fits within this Shape.
func (s Shape) Contains(b Bounds) bool {
	if len(b) > len(s) {
		return false
	}
	for axis, ab := range b {
		if !ab.within(s[axis]) {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	return fmt.Sprintf("%v", []uint64(s))
}

// AxisBoundsKind discriminates the three ways one axis can be
// selected: a single index, a contiguous range, or an explicit set of
// indices.
type AxisBoundsKind int

const (
	AxisAt AxisBoundsKind = iota
	AxisIn
	AxisOf
)

// AxisBounds selects part of one tensor axis: At(i), In(start, end),
// or Of(indices).
type AxisBounds struct {
	Kind     AxisBoundsKind
	At       uint64
	Start    uint64
	End      uint64 // exclusive
	Indices  []uint64
}

func At(i uint64) AxisBounds { return AxisBounds{Kind: AxisAt, At: i} }

func In(start, end uint64) AxisBounds {
	return AxisBounds{Kind: AxisIn, Start: start, End: end}
}

func Of(indices ...uint64) AxisBounds {
	return AxisBounds{Kind: AxisOf, Indices: indices}
}

// Len returns how many coordinates this axis selection enumerates.
func (a AxisBounds) Len() uint64 {
	switch a.Kind {
	case AxisAt:
		return 1
	case AxisIn:
		if a.End <= a.Start {
			return 0
		}
		return a.End - a.Start
	case AxisOf:
		return uint64(len(a.Indices))
	default:
		return 0
	}
}

func (a AxisBounds) within(dim uint64) bool {
	switch a.Kind {
	case AxisAt:
		return a.At < dim
	case AxisIn:
		return a.Start <= a.End && a.End <= dim
	case AxisOf:
		for _, i := range a.Indices {
			if i >= dim {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Nth returns the i'th coordinate this axis selection enumerates, in
// row-major order over the selection itself.
func (a AxisBounds) Nth(i uint64) uint64 {
	switch a.Kind {
	case AxisAt:
		return a.At
	case AxisIn:
		return a.Start + i
	case AxisOf:
		return a.Indices[i]
	default:
		return 0
	}
}

func (a AxisBounds) String() string {
	switch a.Kind {
	case AxisAt:
		return fmt.Sprintf("At(%d)", a.At)
	case AxisIn:
		return fmt.Sprintf("In(%d..%d)", a.Start, a.End)
	case AxisOf:
		return fmt.Sprintf("Of(%v)", a.Indices)
	default:
		return "?"
	}
}

// Bounds is a per-axis selection over a Shape.
type Bounds []AxisBounds

// All returns Bounds selecting every coordinate of shape.
func All(shape Shape) Bounds {
	b := make(Bounds, len(shape))
	for axis, dim := range shape {
		b[axis] = In(0, dim)
	}
	return b
}

// OutputShape is the Shape of the region this Bounds selects, dropping
// any axis selected with At (it contributes one fixed index, not a
// dimension) unless keepAtAxes is set.
func (b Bounds) OutputShape(keepAtAxes bool) Shape {
	shape := make(Shape, 0, len(b))
	for _, ab := range b {
		if ab.Kind == AxisAt && !keepAtAxes {
			continue
		}
		shape = append(shape, ab.Len())
	}
	return shape
}

// Size returns the total number of coordinates this Bounds selects.
func (b Bounds) Size() uint64 {
	var size uint64 = 1
	for _, ab := range b {
		size *= ab.Len()
	}
	return size
}

// Contains reports whether every coordinate other selects is also
// selected by b.
func (b Bounds) Contains(other Bounds, shape Shape) bool {
	if len(other) > len(b) {
		return false
	}
	for axis, ab := range b {
		if axis >= len(other) {
			continue
		}
		o := other[axis]
		if !ab.supersetOf(o, shape[axis]) {
			return false
		}
	}
	return true
}

func (a AxisBounds) supersetOf(b AxisBounds, dim uint64) bool {
	aIdx := a.indexSet(dim)
	bIdx := b.indexSet(dim)
	for idx := range bIdx {
		if !aIdx[idx] {
			return false
		}
	}
	return true
}

func (a AxisBounds) indexSet(dim uint64) map[uint64]bool {
	set := make(map[uint64]bool)
	switch a.Kind {
	case AxisAt:
		set[a.At] = true
	case AxisIn:
		for i := a.Start; i < a.End; i++ {
			set[i] = true
		}
	case AxisOf:
		for _, i := range a.Indices {
			set[i] = true
		}
	}
	return set
}
