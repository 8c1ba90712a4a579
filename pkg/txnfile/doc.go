/*
Package txnfile implements TxnFile and TxnDir (spec §4.3, §4.4,
components C3/C4): a versioned collection of named blocks backed by a
plain directory on disk.

# Layout

	P/{block_id}                    canonical committed block
	P/.versions/{txn_id}/{block_id} per-txn pending copy

A block is read or written through the cache (pkg/cache) at whichever
path is appropriate for the calling txn; the first get/get-mut for a
given (txn, id) copies the canonical bytes into the version path if no
version exists yet, so every subsequent access in that txn sees its own
isolated copy.

Listing (the set of block ids known to the file) and mutated (the set
dirtied by the current txn) are each guarded by a txnlock.TxnLock, so
isolation and ordering across concurrent transactions comes from
pkg/txnlock rather than from anything TxnFile does itself.

Commit flushes every mutated block's cached version to disk and copies
it over the canonical file, holding a gofrs/flock advisory lock on the
directory for the duration so a concurrent commit from another process
observes a consistent canonical state. Finalize deletes the per-txn
version directory and drops the corresponding cache entries.
*/
package txnfile
