package txn_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamedEssam/tinychain/pkg/cache"
	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/txnfile"
	"github.com/MuhamedEssam/tinychain/pkg/types"

	"github.com/MuhamedEssam/tinychain/pkg/txn"
)

type fakeResource struct {
	name       string
	commits    []types.TxnID
	finalizes  []types.TxnID
	commitErr  error
}

func (f *fakeResource) Commit(_ context.Context, id types.TxnID) error {
	f.commits = append(f.commits, id)
	return f.commitErr
}

func (f *fakeResource) Finalize(id types.TxnID) error {
	f.finalizes = append(f.finalizes, id)
	return nil
}

func newCoordinator(t *testing.T) *txn.Coordinator {
	t.Helper()
	c, err := txn.NewCoordinator(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCoordinator_BeginAllocatesIncreasingTxnIDs(t *testing.T) {
	c := newCoordinator(t)

	a := c.Begin()
	b := c.Begin()

	assert.True(t, a.ID.Compare(b.ID) <= 0)
}

func TestCoordinator_CommitTouchesResourcesInOrderThenFinalizes(t *testing.T) {
	c := newCoordinator(t)
	tx := c.Begin()

	r1 := &fakeResource{name: "r1"}
	r2 := &fakeResource{name: "r2"}
	tx.Touch(r1)
	tx.Touch(r2)
	tx.Touch(r1) // re-touch is idempotent

	require.NoError(t, c.Commit(context.Background(), tx))

	require.Len(t, r1.commits, 1)
	require.Len(t, r2.commits, 1)
	assert.Equal(t, tx.ID, r1.commits[0])
	assert.Equal(t, tx.ID, r2.commits[0])
	assert.Len(t, r1.finalizes, 1)
	assert.Len(t, r2.finalizes, 1)
}

func TestCoordinator_CommitFailureStillFinalizesEveryResource(t *testing.T) {
	c := newCoordinator(t)
	tx := c.Begin()

	ok := &fakeResource{name: "ok"}
	bad := &fakeResource{name: "bad", commitErr: errors.New("disk full")}
	tx.Touch(ok)
	tx.Touch(bad)

	err := c.Commit(context.Background(), tx)
	require.Error(t, err)

	assert.Len(t, ok.finalizes, 1, "every touched resource must still be finalized after a mid-commit failure")
	assert.Len(t, bad.finalizes, 1)
}

func TestCoordinator_RollbackFinalizesWithoutCommitting(t *testing.T) {
	c := newCoordinator(t)
	tx := c.Begin()

	r := &fakeResource{name: "r"}
	tx.Touch(r)

	require.NoError(t, c.Rollback(tx))

	assert.Empty(t, r.commits)
	assert.Len(t, r.finalizes, 1)
}

func TestCoordinator_NewTxnReusesExplicitTxnID(t *testing.T) {
	c := newCoordinator(t)

	pinned := types.NewTxnID(42, 7)
	tx := c.NewTxn(txn.Request{TxnID: &pinned})

	assert.True(t, pinned.Equal(tx.ID))
}

func TestCoordinator_NewTxnAllocatesWhenNoTxnIDGiven(t *testing.T) {
	c := newCoordinator(t)

	tx := c.NewTxn(txn.Request{AuthToken: "tok"})

	assert.NotZero(t, tx.ID.Timestamp.Lo)
}

func TestCoordinator_RecoverReturnsCommittedUnfinalizedTxns(t *testing.T) {
	dir := t.TempDir()

	c, err := txn.NewCoordinator(dir)
	require.NoError(t, err)

	require.NoError(t, c.Journal().Put(txn.Record{TxnID: "crash-mid-finalize", Status: txn.StatusCommitted}))
	require.NoError(t, c.Journal().Put(txn.Record{TxnID: "already-done", Status: txn.StatusCommitted, Finalized: true}))
	require.NoError(t, c.Close())

	reopened, err := txn.NewCoordinator(dir)
	require.NoError(t, err)
	defer reopened.Close()

	pending, err := reopened.Recover()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "crash-mid-finalize", pending[0].TxnID)
}

type versionBlock byte

func (b versionBlock) MarshalBinary() ([]byte, error) { return []byte{byte(b)}, nil }
func (b versionBlock) Size() int                      { return 1 }

func decodeVersionBlock(raw []byte) (versionBlock, error) {
	if len(raw) != 1 {
		return 0, tcerr.BadDataf("expected 1 byte")
	}
	return versionBlock(raw[0]), nil
}

// TestCoordinator_S6_CommitThenCrashFinalize recreates the journal's
// half of a real commit-crash-recover cycle: a resource is committed
// to disk and journaled as committed, but the process "crashes" before
// the second (finalized) journal write and before Finalize runs. On
// restart, canonical state already equals committed state, the pending
// record is the only trace of the interruption, and re-running
// Finalize removes the resource's .versions/{txn} directory.
func TestCoordinator_S6_CommitThenCrashFinalize(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	c := cache.New(1 << 20)
	f := txnfile.New(filepath.Join(dataDir, "blocks"), c)

	coordinator, err := txn.NewCoordinator(dataDir)
	require.NoError(t, err)

	tx := coordinator.Begin()
	require.NoError(t, txnfile.CreateBlock(ctx, f, tx.ID, "a", versionBlock(0xAB)))
	require.NoError(t, f.Commit(ctx, tx.ID))

	// Simulate the crash window: committed is journaled, but Finalize
	// never runs and the "finalized" record never follows.
	require.NoError(t, coordinator.Journal().Put(txn.Record{
		TxnID:  tx.ID.String(),
		Status: txn.StatusCommitted,
	}))
	require.NoError(t, coordinator.Close())

	versionDir := filepath.Join(f.Path, ".versions", tx.ID.String())
	_, err = os.Stat(versionDir)
	require.NoError(t, err, "version directory must still exist immediately after the simulated crash")

	raw, err := os.ReadFile(filepath.Join(f.Path, "a"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB}, raw, "canonical state already reflects the committed write before any finalize runs")

	// Restart: reopen the journal and recover the pending record.
	reopened, err := txn.NewCoordinator(dataDir)
	require.NoError(t, err)
	defer reopened.Close()

	pending, err := reopened.Recover()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, tx.ID.String(), pending[0].TxnID)

	// Re-running Finalize against the recovered txn ID completes the
	// interrupted commit: canonical state is unchanged, and the
	// version directory is gone.
	require.NoError(t, f.Finalize(tx.ID))
	require.NoError(t, reopened.Journal().Put(txn.Record{
		TxnID:     pending[0].TxnID,
		Status:    pending[0].Status,
		Finalized: true,
	}))

	_, err = os.Stat(versionDir)
	assert.True(t, os.IsNotExist(err), ".versions/{txn} must be removed once finalize completes")

	raw, err = os.ReadFile(filepath.Join(f.Path, "a"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB}, raw)

	stillPending, err := reopened.Recover()
	require.NoError(t, err)
	assert.Empty(t, stillPending)
}
