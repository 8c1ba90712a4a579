package tensor

import "github.com/MuhamedEssam/tinychain/pkg/types"

// EnumerateCoords expands bounds into every coordinate it selects, in
// row-major order (spec §4.6 step 1 of the bulk read/write procedure).
func EnumerateCoords(bounds types.Bounds) []types.Coord {
	lens := make([]uint64, len(bounds))
	total := uint64(1)
	for i, ab := range bounds {
		lens[i] = ab.Len()
		total *= lens[i]
	}
	if total == 0 {
		return nil
	}

	out := make([]types.Coord, 0, total)
	idx := make([]uint64, len(bounds))
	for {
		coord := make(types.Coord, len(bounds))
		for i, ab := range bounds {
			coord[i] = ab.Nth(idx[i])
		}
		out = append(out, coord)

		k := len(bounds) - 1
		for k >= 0 {
			idx[k]++
			if idx[k] < lens[k] {
				break
			}
			idx[k] = 0
			k--
		}
		if k < 0 {
			break
		}
	}
	return out
}

// offset computes the flattened row-major index of coord given
// per-axis strides (spec §4.6: offset(coord) = Σ coord[k]·coord_bounds[k]).
func offset(coord types.Coord, strides []uint64) uint64 {
	var off uint64
	for k, c := range coord {
		off += c * strides[k]
	}
	return off
}

// strides computes coord_bounds[k] = Π_{j>k} shape[j] for a row-major
// layout.
func strides(shape types.Shape) []uint64 {
	out := make([]uint64, len(shape))
	acc := uint64(1)
	for k := len(shape) - 1; k >= 0; k-- {
		out[k] = acc
		acc *= shape[k]
	}
	return out
}
