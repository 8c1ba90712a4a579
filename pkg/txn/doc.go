/*
Package txn implements the transaction coordinator (spec §4.8,
component C8): it allocates TxnIds, tracks which resources a
transaction has mutated, and drives commit/finalize (or rollback) over
that set in the deterministic order resources were touched.

A journal (pkg/txn/journal.go), adapted from the teacher's BoltDB
entity store into a generic commit-record log, makes the coordinator's
own decision — did this TxnID finish committing before a crash? —
durable and crash-recoverable, independent of whatever TxnFile/TxnDir
state a partially-applied commit left on disk.
*/
package txn
