/*
Package cache implements tinychain's block cache (spec §4.1, component
C1): a single, size-bounded map from filesystem path to a decoded,
reader/writer-locked block. Every TxnFile and tensor block reader goes
through this cache instead of touching the filesystem directly, so a
hot block is decoded once no matter how many transactions read it.

# Accounting and eviction

Cache tracks a running byte total against MaxSize. Ordering for
eviction is tracked with a hashicorp/golang-lru/v2 Cache configured
with an effectively unbounded capacity (so it never evicts on its own);
its internal access-order list is used purely as the "frequency rank"
sequence described in spec §4.1 — every hit or write moves the entry to
the most-recently-used end (not one slot forward, as a swap-based LFU
bump would), and eviction walks the list from the
least-recently-touched end, skipping any entry whose reference count is
still above one.

Filesystem errors other than "not found" surface as tcerr.Internal;
a block that fails to decode surfaces as tcerr.BadData. Neither is
retried here — the caller (TxnFile) decides what to do next.
*/
package cache
