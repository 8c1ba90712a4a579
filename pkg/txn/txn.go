package txn

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/MuhamedEssam/tinychain/pkg/log"
	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

// Resource is anything a transaction can mutate and must later commit
// or finalize: TxnFile, TxnDir, BTree and the tensor layouts all
// satisfy this shape already (spec §4.8's "resources touched").
type Resource interface {
	Commit(ctx context.Context, txn types.TxnID) error
	Finalize(txn types.TxnID) error
}

// Txn tracks the resources one in-flight transaction has touched, in
// the order they were first touched — commit and finalize replay that
// same order, deterministically.
type Txn struct {
	ID types.TxnID

	mu        sync.Mutex
	resources []Resource
	seen      map[Resource]struct{}
}

// Touch registers r as mutated by this transaction. Idempotent: a
// resource touched twice only commits once, in its first-touch
// position.
func (t *Txn) Touch(r Resource) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seen[r]; ok {
		return
	}
	t.seen[r] = struct{}{}
	t.resources = append(t.resources, r)
}

func (t *Txn) snapshotResources() []Resource {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Resource(nil), t.resources...)
}

// Coordinator allocates TxnIDs and drives commit/rollback over the
// resource set a Txn collected (spec §4.8).
type Coordinator struct {
	journal *Journal
	nonce   atomic.Uint64
	logger  zerolog.Logger
}

// NewCoordinator opens (or creates) the durable journal under dataDir
// and returns a ready Coordinator.
func NewCoordinator(dataDir string) (*Coordinator, error) {
	j, err := OpenJournal(dataDir)
	if err != nil {
		return nil, err
	}
	return &Coordinator{journal: j, logger: log.WithComponent("txn")}, nil
}

func (c *Coordinator) Close() error { return c.journal.Close() }

// Journal exposes the underlying commit-record log directly, for
// recovery tooling and tests that need to inspect or seed raw records.
func (c *Coordinator) Journal() *Journal { return c.journal }

// Begin allocates a fresh, monotonically increasing TxnID and returns
// an empty Txn ready to accumulate resources (spec §3: "timestamp_ns
// plus a nonce disambiguates same-nanosecond allocations").
func (c *Coordinator) Begin() *Txn {
	ts := uint64(time.Now().UnixNano())
	n := c.nonce.Add(1)
	return &Txn{
		ID:   types.NewTxnID(ts, uint16(n%(1<<16))),
		seen: make(map[Resource]struct{}),
	}
}

// Request is the external new_txn(request) input of spec §6:
// AuthToken is carried but not yet checked (auth is interface-only per
// spec §1's scope); TxnID, if set, pins the allocation instead of
// minting a fresh one — used by a caller resuming a transaction it
// already announced (e.g. after a client-side retry).
type Request struct {
	AuthToken string
	TxnID     *types.TxnID
}

// NewTxn implements spec §6's new_txn(request): allocates a fresh TxnID
// unless req.TxnID is set, in which case that id is reused verbatim.
func (c *Coordinator) NewTxn(req Request) *Txn {
	if req.TxnID != nil {
		return &Txn{ID: *req.TxnID, seen: make(map[Resource]struct{})}
	}
	return c.Begin()
}

// Commit commits every resource txn touched, in touch order, then
// finalizes all of them regardless of outcome. A mid-commit failure
// marks the transaction rolled back in the journal and still finalizes
// every resource — commit is not atomic across resources, and skipping
// finalize on failure would leak a resource's temporary version state
// forever (spec §4.8).
func (c *Coordinator) Commit(ctx context.Context, txn *Txn) error {
	resources := txn.snapshotResources()

	commitErr := c.commitAll(ctx, txn.ID, resources)

	status := StatusCommitted
	if commitErr != nil {
		status = StatusRolledBack
	}
	if err := c.journal.Put(Record{TxnID: txn.ID.String(), Status: status}); err != nil {
		c.logger.Warn().Str("txn_id", txn.ID.String()).Err(err).Msg("failed to journal commit outcome")
	}

	for _, r := range resources {
		if err := r.Finalize(txn.ID); err != nil {
			c.logger.Warn().Str("txn_id", txn.ID.String()).Err(err).Msg("resource finalize failed")
		}
	}

	if err := c.journal.Put(Record{TxnID: txn.ID.String(), Status: status, Finalized: true}); err != nil {
		c.logger.Warn().Str("txn_id", txn.ID.String()).Err(err).Msg("failed to journal finalize outcome")
	}

	return commitErr
}

func (c *Coordinator) commitAll(ctx context.Context, id types.TxnID, resources []Resource) error {
	for _, r := range resources {
		if err := r.Commit(ctx, id); err != nil {
			return tcerr.Wrap(tcerr.Internal, err, "committing transaction %s", id)
		}
	}
	return nil
}

// Rollback abandons txn without committing any resource: every
// touched resource is finalized directly, which drops its pending
// version state (TxnLock.Finalize deletes pending[a] even absent a
// prior Commit) and unblocks any reader waiting behind this TxnID.
func (c *Coordinator) Rollback(txn *Txn) error {
	resources := txn.snapshotResources()

	for _, r := range resources {
		_ = r.Finalize(txn.ID)
	}

	return c.journal.Put(Record{TxnID: txn.ID.String(), Status: StatusRolledBack, Finalized: true})
}

// Recover returns every transaction the journal shows as committed but
// not yet finalized (a crash between the two journal writes in
// Commit) so the caller can re-run Finalize for affected resources on
// startup.
func (c *Coordinator) Recover() ([]Record, error) {
	return c.journal.Pending()
}
