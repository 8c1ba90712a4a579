package tensor

import "github.com/MuhamedEssam/tinychain/pkg/types"

// identityRebase is the neutral Rebase used as the starting point for
// a chain of views over a concrete Dense or Sparse tensor.
type identityRebase struct {
	shape types.Shape
}

func identity(shape types.Shape) Rebase { return &identityRebase{shape: shape} }

func (r *identityRebase) SourceShape() types.Shape { return r.shape }
func (r *identityRebase) TargetShape() types.Shape { return r.shape }
func (r *identityRebase) Writable() bool           { return true }

func (r *identityRebase) InvertCoord(out types.Coord) (types.Coord, error) { return out, nil }
func (r *identityRebase) MapCoord(src types.Coord) (types.Coord, error)    { return src, nil }
func (r *identityRebase) InvertBounds(out types.Bounds) (types.Bounds, error) {
	return out, nil
}

// Transform returns a TensorTransform view over d, the starting point
// for Slice/Broadcast/ExpandDims/Transpose/Cast chains.
func (d *Dense) Transform() *View { return NewView(d, identity(d.shape)) }

// Transform returns a TensorTransform view over s.
func (s *Sparse) Transform() *View { return NewView(s, identity(s.shape)) }
