package txnfile

import "github.com/MuhamedEssam/tinychain/pkg/types"

// BlockSet is the value type stored behind a TxnFile's listing and
// mutated locks. It is always replaced wholesale (never mutated in
// place) so that two txns sharing a TxnLock snapshot never alias the
// same underlying map.
type BlockSet map[types.BlockID]struct{}

func (s BlockSet) Clone() BlockSet {
	out := make(BlockSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

func (s BlockSet) Has(id types.BlockID) bool {
	_, ok := s[id]
	return ok
}

func (s BlockSet) With(id types.BlockID) BlockSet {
	out := s.Clone()
	out[id] = struct{}{}
	return out
}

func (s BlockSet) Without(id types.BlockID) BlockSet {
	out := s.Clone()
	delete(out, id)
	return out
}

func (s BlockSet) Slice() []types.BlockID {
	out := make([]types.BlockID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}
