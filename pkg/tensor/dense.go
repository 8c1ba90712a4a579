package tensor

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/MuhamedEssam/tinychain/pkg/cache"
	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/txnfile"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

// Dense is the dense tensor layout (spec §4.6): the flattened
// row-major sequence of Size() values, partitioned into blocks of
// PerBlock values each, stored as one TxnFile block per chunk.
type Dense struct {
	file    *txnfile.TxnFile
	shape   types.Shape
	dtype   types.NumberType
	strides []uint64
}

// NewDense opens a dense tensor rooted at path.
func NewDense(path string, c *cache.Cache, shape types.Shape, dtype types.NumberType) *Dense {
	return &Dense{
		file:    txnfile.New(path, c),
		shape:   shape,
		dtype:   dtype,
		strides: strides(shape),
	}
}

func (d *Dense) DType() types.NumberType { return d.dtype }
func (d *Dense) NDim() int                { return len(d.shape) }
func (d *Dense) Shape() types.Shape       { return d.shape }
func (d *Dense) Size() uint64             { return d.shape.Size() }

func blockID(idx uint64) types.BlockID {
	return types.BlockID(strconv.FormatUint(idx, 10))
}

func (d *Dense) blockLen(idx uint64) int {
	remaining := d.Size() - idx*PerBlock
	if remaining > PerBlock {
		return PerBlock
	}
	return int(remaining)
}

// ReadValue returns the value at coord, or zero if no block has ever
// been written there.
func (d *Dense) ReadValue(ctx context.Context, txn types.TxnID, coord types.Coord) (float64, error) {
	off := offset(coord, d.strides)
	idx, inBlock := off/PerBlock, off%PerBlock

	h, err := txnfile.GetBlock(ctx, d.file, txn, blockID(idx), decodeDenseBlock)
	if err != nil {
		if tcerr.Of(err) == tcerr.NotFound {
			return 0, nil
		}
		return 0, err
	}
	defer h.Release()

	var v float64
	h.View(func(b *denseBlock) { v = b.values[inBlock] })
	return v, nil
}

// WriteValueAt sets a single coordinate, creating its backing block on
// first write.
func (d *Dense) WriteValueAt(ctx context.Context, txn types.TxnID, coord types.Coord, value float64) error {
	off := offset(coord, d.strides)
	idx, inBlock := off/PerBlock, off%PerBlock

	h, err := txnfile.GetBlockMut(ctx, d.file, txn, blockID(idx), decodeDenseBlock)
	if err != nil {
		if tcerr.Of(err) != tcerr.NotFound {
			return err
		}
		if err := txnfile.CreateBlock(ctx, d.file, txn, blockID(idx), newDenseBlock(d.blockLen(idx))); err != nil {
			return err
		}
		h, err = txnfile.GetBlockMut(ctx, d.file, txn, blockID(idx), decodeDenseBlock)
		if err != nil {
			return err
		}
	}
	defer h.Release()

	h.Update(func(b *denseBlock) *denseBlock {
		nb := b.clone()
		nb.values[inBlock] = value
		return nb
	})
	return nil
}

// WriteValue fills every coordinate in bounds with value, grouping
// work by backing block and fanning out at most DefaultParallelism
// concurrent block operations (spec §4.6 bulk write procedure).
func (d *Dense) WriteValue(ctx context.Context, txn types.TxnID, bounds types.Bounds, value float64) error {
	coords := EnumerateCoords(bounds)

	byBlock := make(map[uint64][]types.Coord)
	for _, c := range coords {
		off := offset(c, d.strides)
		idx := off / PerBlock
		byBlock[idx] = append(byBlock[idx], c)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultParallelism)
	for _, group := range byBlock {
		group := group
		g.Go(func() error {
			for _, c := range group {
				if err := d.WriteValueAt(ctx, txn, c, value); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Commit/Finalize delegate straight to the backing TxnFile.
func (d *Dense) Commit(ctx context.Context, txn types.TxnID) error { return d.file.Commit(ctx, txn) }
func (d *Dense) Finalize(txn types.TxnID) error                    { return d.file.Finalize(txn) }
