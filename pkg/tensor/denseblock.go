package tensor

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
)

// denseBlock is one dense tensor block: PerBlock (or fewer, for the
// last block) float64 values, little-endian encoded. Every dtype is
// stored physically as float64 (see package doc).
type denseBlock struct {
	values []float64
}

func newDenseBlock(n int) *denseBlock {
	return &denseBlock{values: make([]float64, n)}
}

func (b *denseBlock) clone() *denseBlock {
	out := make([]float64, len(b.values))
	copy(out, b.values)
	return &denseBlock{values: out}
}

func (b *denseBlock) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 8*len(b.values))
	for i, v := range b.values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf, nil
}

func (b *denseBlock) Size() int { return 8 * len(b.values) }

func decodeDenseBlock(raw []byte) (*denseBlock, error) {
	if len(raw)%8 != 0 {
		return nil, tcerr.BadDataf("dense block length %d is not a multiple of 8", len(raw))
	}
	values := make([]float64, len(raw)/8)
	r := bytes.NewReader(raw)
	for i := range values {
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return nil, tcerr.Wrap(tcerr.BadData, err, "decoding dense block")
		}
		values[i] = math.Float64frombits(bits)
	}
	return &denseBlock{values: values}, nil
}
