package cache

import "encoding"

// Block is the contract every cached value must satisfy: it can be
// serialized to bytes, it knows its own encoded size, and (via Decoder)
// it can be rebuilt from bytes. This mirrors spec §3's "Block" data
// model: serializable, fallibly deserializable, reports its byte size.
type Block interface {
	encoding.BinaryMarshaler
	Size() int
}

// Decoder rebuilds a Block of a specific type from raw bytes. It
// returns an error when the bytes don't decode to a valid B — the
// cache turns that into a tcerr.BadData.
type Decoder[B Block] func([]byte) (B, error)
