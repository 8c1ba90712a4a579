package btree

import (
	"github.com/goccy/go-json"

	"github.com/MuhamedEssam/tinychain/pkg/collate"
	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
)

// item is one multiset entry. seq breaks ties between duplicate keys
// so google/btree, which requires strict ordering, can hold repeated
// keys as distinct items (spec §4.5: "duplicate keys are appended").
type item struct {
	Key     collate.Key `json:"key"`
	Seq     uint64      `json:"seq"`
	Deleted bool        `json:"deleted,omitempty"`
}

// nodeBlock is the on-disk representation of this tree's single root
// node: every live and tombstoned item, JSON-encoded via goccy/go-json.
type nodeBlock struct {
	items []item
	raw   []byte
}

func newNodeBlock(items []item) (*nodeBlock, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, tcerr.Wrap(tcerr.Internal, err, "encoding btree node")
	}
	return &nodeBlock{items: items, raw: raw}, nil
}

func (n *nodeBlock) MarshalBinary() ([]byte, error) { return n.raw, nil }
func (n *nodeBlock) Size() int                      { return len(n.raw) }

func decodeNodeBlock(raw []byte) (*nodeBlock, error) {
	var items []item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, tcerr.Wrap(tcerr.BadData, err, "decoding btree node")
	}
	cp := append([]byte{}, raw...)
	return &nodeBlock{items: items, raw: cp}, nil
}
