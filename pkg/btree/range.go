package btree

import "github.com/MuhamedEssam/tinychain/pkg/collate"

// Range selects a contiguous span of keys under a Collator's
// ordering. A nil Start or End means unbounded on that side. Start is
// inclusive, End is exclusive, matching the dense tensor Bounds
// convention used elsewhere in this module.
type Range struct {
	Start collate.Key
	End   collate.Key
}

// Full is the unbounded range: every key matches.
func Full() Range { return Range{} }

func (r Range) contains(c *collate.Collator, key collate.Key) bool {
	if r.Start != nil && c.Compare(key, r.Start) < 0 {
		return false
	}
	if r.End != nil && c.Compare(key, r.End) >= 0 {
		return false
	}
	return true
}

// Contains reports whether inner is a subset of outer under c: every
// key that satisfies inner also satisfies outer. Required by nested
// slice operations (spec §4.5).
func (outer Range) Contains(c *collate.Collator, inner Range) bool {
	if outer.Start != nil {
		if inner.Start == nil || c.Compare(inner.Start, outer.Start) < 0 {
			return false
		}
	}
	if outer.End != nil {
		if inner.End == nil || c.Compare(inner.End, outer.End) > 0 {
			return false
		}
	}
	return true
}
