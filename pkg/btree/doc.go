/*
Package btree implements the persistent B-tree index (spec §4.5,
component C6): an ordered, Collator-sorted multiset of keys whose
durable state lives in a TxnFile block, so that every mutation commits
and finalizes atomically along with the rest of a transaction.

Ordering and range queries are implemented by rebuilding an in-memory
google/btree.BTreeG from the txn's current key snapshot on demand; the
snapshot itself is the txn's own version of the root block in the
backing TxnFile (copy-on-first-access under .versions/{txn}), not the
google/btree structure, so isolation between concurrent transactions
comes from the TxnFile machinery. google/btree is used purely as the
sort/merge/iterate engine for a single node's worth of keys — this
tree keeps its whole live set in one TxnFile block rather than paging
across many, a deliberate simplification from a multi-node on-disk
tree (see DESIGN.md).

Deletes are soft: delete(range) marks matching entries tombstoned
rather than physically removing them, matching the spec's literal
"mark keys in range as deleted".
*/
package btree
