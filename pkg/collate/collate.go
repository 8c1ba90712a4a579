package collate

import (
	"sort"

	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

// Value is one column's worth of key data. Its concrete type must
// match the NumberType of the corresponding schema column: int32,
// int64, uint32, uint64, or string.
type Value any

// Key is a multi-column row, compared lexicographically by a
// Collator matching its schema.
type Key []Value

// Collator compares multi-column keys according to a fixed schema of
// per-column types.
type Collator struct {
	schema []types.NumberType
}

// New builds a Collator over schema, rejecting any column type that
// is neither an ordered integer type nor a string.
func New(schema []types.NumberType) (*Collator, error) {
	for i, t := range schema {
		if !t.IsOrderedInteger() && t != types.String {
			return nil, tcerr.BadRequestf("collator column %d has unsupported type %s", i, t)
		}
	}
	cp := append([]types.NumberType{}, schema...)
	return &Collator{schema: cp}, nil
}

func (c *Collator) Len() int { return len(c.schema) }

func compareColumn(t types.NumberType, a, b Value) int {
	switch t {
	case types.String:
		as, bs := a.(string), b.(string)
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	case types.UInt64:
		av, bv := a.(uint64), b.(uint64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case types.Int32, types.Int64, types.UInt32:
		av, bv := toInt128(t, a), toInt128(t, b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// toInt128 widens an Int32, Int64 or UInt32 column value to an int64
// for comparison; all three fit without loss. UInt64 columns do not
// (values of 2^63 and above would wrap), so compareColumn compares
// them as uint64 directly.
func toInt128(t types.NumberType, v Value) int64 {
	switch t {
	case types.Int32:
		return int64(v.(int32))
	case types.Int64:
		return v.(int64)
	case types.UInt32:
		return int64(v.(uint32))
	case types.UInt64:
		return int64(v.(uint64))
	default:
		return 0
	}
}

// Compare returns -1, 0, or 1 comparing a and b column by column,
// advancing to the next column only on a tie. Keys of unequal length
// are compared over their shared prefix, with the shorter key
// ordering first on a full-prefix tie.
func (c *Collator) Compare(a, b Key) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n > len(c.schema) {
		n = len(c.schema)
	}
	for i := 0; i < n; i++ {
		if cmp := compareColumn(c.schema[i], a[i], b[i]); cmp != 0 {
			return cmp
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func (c *Collator) Equal(a, b Key) bool { return c.Compare(a, b) == 0 }
func (c *Collator) Less(a, b Key) bool  { return c.Compare(a, b) < 0 }

// Bisect returns the first index in the sorted slice keys for which
// the entry compares strictly greater than key.
func (c *Collator) Bisect(keys []Key, key Key) int {
	return sort.Search(len(keys), func(i int) bool {
		return c.Compare(keys[i], key) > 0
	})
}

// BisectLeft returns the first index in the sorted slice keys for
// which the entry compares greater than or equal to key.
func (c *Collator) BisectLeft(keys []Key, key Key) int {
	return sort.Search(len(keys), func(i int) bool {
		return c.Compare(keys[i], key) >= 0
	})
}
