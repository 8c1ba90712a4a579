package types

// NumberType is the scalar element type of a tensor or collator
// column. A Collator accepts only the ordered integer types and
// String (spec §4.5); Bool, Float32 and Float64 are tensor dtypes.
type NumberType int

const (
	Bool NumberType = iota
	Int32
	Int64
	UInt32
	UInt64
	Float32
	Float64
	String
)

func (t NumberType) String() string {
	switch t {
	case Bool:
		return "Bool"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case UInt32:
		return "UInt32"
	case UInt64:
		return "UInt64"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case String:
		return "String"
	default:
		return "Unknown"
	}
}

// ByteWidth returns the fixed encoded width of the type, in bytes.
// String has no fixed width and returns 0; callers that need a
// variable-width encoding (only the sparse B-tree value column) must
// handle it separately.
func (t NumberType) ByteWidth() int {
	switch t {
	case Bool:
		return 1
	case Int32, UInt32, Float32:
		return 4
	case Int64, UInt64, Float64:
		return 8
	default:
		return 0
	}
}

// IsOrderedInteger reports whether the type is one of the Collator's
// supported ordered integer kinds.
func (t NumberType) IsOrderedInteger() bool {
	switch t {
	case Int32, Int64, UInt32, UInt64:
		return true
	default:
		return false
	}
}
