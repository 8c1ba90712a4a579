/*
Package tensor implements the tensor block layer (spec §4.6, §4.7,
component C7): N-dimensional arrays backed either by a dense,
block-partitioned TxnFile (PerBlock values per block, row-major) or by
a sparse B-tree keyed on (coord..., value), plus a family of lazy
Rebase views — Slice, Broadcast, Expand, Transpose, Reduce — that
compose without copying data.

Every numeric dtype is stored physically as float64; NumberType only
changes how a view casts values on read and on write (see DESIGN.md
for why: a fully generic per-dtype block encoding was judged more
complexity than the spec's reduction and view laws need).
Dense.WriteValue fans a region write out across at most a fixed number
of concurrent block writes (golang.org/x/sync/errgroup with SetLimit);
reads are not parallelized. This matches
the "bounded pipeline, default parallelism 2" note in spec §9.
*/
package tensor
