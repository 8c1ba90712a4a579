package types

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
)

// Uint128 is a fixed-width 128-bit unsigned integer, used for the
// nanosecond timestamp half of a TxnID. Go has no native u128; this is
// the minimal hi/lo pair needed for monotonic comparison and decimal
// formatting, nothing more.
type Uint128 struct {
	Hi, Lo uint64
}

// Uint128FromUint64 lifts a plain uint64 (e.g. time.Now().UnixNano())
// into a Uint128 with a zero high word.
func Uint128FromUint64(v uint64) Uint128 { return Uint128{Lo: v} }

// Cmp returns -1, 0, or 1 as a is less than, equal to, or greater than
// b.
func (a Uint128) Cmp(b Uint128) int {
	switch {
	case a.Hi != b.Hi:
		if a.Hi < b.Hi {
			return -1
		}
		return 1
	case a.Lo != b.Lo:
		if a.Lo < b.Lo {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Add64 returns a + v, carrying into the high word on overflow.
func (a Uint128) Add64(v uint64) Uint128 {
	lo := a.Lo + v
	hi := a.Hi
	if lo < a.Lo {
		hi++
	}
	return Uint128{Hi: hi, Lo: lo}
}

// two64 is 2^64, used to reassemble a Uint128 into decimal via math/big
// only on the (practically unreachable) path where Hi != 0.
var two64 = new(big.Int).Lsh(big.NewInt(1), 64)

func (a Uint128) String() string {
	if a.Hi == 0 {
		return strconv.FormatUint(a.Lo, 10)
	}

	v := new(big.Int).Mul(big.NewInt(0).SetUint64(a.Hi), two64)
	v.Add(v, new(big.Int).SetUint64(a.Lo))
	return v.String()
}

// TxnID is a totally ordered, monotonic transaction identifier:
// (timestamp_ns, nonce). Its lexical form "{ts}-{nonce}" is the
// on-disk version directory name under a TxnFile.
type TxnID struct {
	Timestamp Uint128
	Nonce     uint16
}

// NewTxnID builds a TxnID from a nanosecond timestamp and nonce.
func NewTxnID(timestampNanos uint64, nonce uint16) TxnID {
	return TxnID{Timestamp: Uint128FromUint64(timestampNanos), Nonce: nonce}
}

// Compare orders TxnIDs by timestamp then nonce.
func (t TxnID) Compare(other TxnID) int {
	if c := t.Timestamp.Cmp(other.Timestamp); c != 0 {
		return c
	}
	switch {
	case t.Nonce < other.Nonce:
		return -1
	case t.Nonce > other.Nonce:
		return 1
	default:
		return 0
	}
}

func (t TxnID) Less(other TxnID) bool  { return t.Compare(other) < 0 }
func (t TxnID) Equal(other TxnID) bool { return t.Compare(other) == 0 }
func (t TxnID) String() string         { return fmt.Sprintf("%s-%d", t.Timestamp, t.Nonce) }

// ParseTxnID parses the "{ts}-{nonce}" on-disk directory name back
// into a TxnID.
func ParseTxnID(s string) (TxnID, error) {
	idx := strings.LastIndex(s, "-")
	if idx < 0 {
		return TxnID{}, tcerr.BadRequestf("malformed txn id %q", s)
	}

	tsPart, noncePart := s[:idx], s[idx+1:]
	ts, err := strconv.ParseUint(tsPart, 10, 64)
	if err != nil {
		return TxnID{}, tcerr.BadRequestf("malformed txn id timestamp %q: %v", tsPart, err)
	}
	nonce, err := strconv.ParseUint(noncePart, 10, 16)
	if err != nil {
		return TxnID{}, tcerr.BadRequestf("malformed txn id nonce %q: %v", noncePart, err)
	}

	return NewTxnID(ts, uint16(nonce)), nil
}
