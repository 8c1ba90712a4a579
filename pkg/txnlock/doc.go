/*
Package txnlock implements the per-value transactional lock (spec §4.2,
component C2): a single value T that presents a different view to each
transaction. Every mutable piece of state in tinychain — a TxnFile's
block listing, its mutated set, a TxnDir's child listing — sits behind one of
these instead of a bare mutex.

A TxnLock tracks three kinds of version for a value: committed
versions (one per TxnID that has called Commit, kept in ascending
order), pending versions (one per TxnID that has an open write guard
or an uncommitted write), and active guards (readers and writers
currently holding a view, used only to order concurrent operations).

Read(A) waits until no writer with a smaller TxnID still has an
uncommitted pending version, then returns A's own pending version if
it has one, otherwise the value committed at or before A. Write(A) waits until no reader or writer with a smaller
TxnID is still active, then hands back a mutable view seeded from the
current committed value (copy-on-first-access, matching how TxnFile
materializes per-txn block versions). Commit and Finalize are
idempotent, matching the source's drop-safe semantics.
*/
package txnlock
