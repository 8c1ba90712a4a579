/*
Package collate implements the Collator (spec §4.5, component C5): a
typed, multi-column key ordering used by the B-tree index. A Collator
is constructed from a schema (one NumberType per column, widened here
from the original's int32/uint64-only pair to the full ordered-integer
family plus string, per spec §4.5's "ordered integer types and
strings") and compares keys lexicographically, column by column, only
moving to the next column on a tie.

bisect and bisect_left binary-search a slice that is already sorted by
this Collator's ordering, giving the B-tree the two positions it needs
to implement range slicing without re-comparing every element.
*/
package collate
