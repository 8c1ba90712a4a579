package txnlock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
	"github.com/MuhamedEssam/tinychain/pkg/txnlock"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

func txnID(ts uint64, nonce uint16) types.TxnID {
	return types.NewTxnID(ts, nonce)
}

func TestTxnLock_ReadSeesSeedValueBeforeAnyCommit(t *testing.T) {
	l := txnlock.New("test", 0)

	g, err := l.Read(context.Background(), txnID(1, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, g.Value())
	g.Release()
}

func TestTxnLock_WriteThenCommitIsVisibleToLaterReaders(t *testing.T) {
	l := txnlock.New("test", 0)
	a := txnID(1, 0)
	b := txnID(2, 0)

	wg, err := l.Write(context.Background(), a)
	require.NoError(t, err)
	wg.Set(42)
	wg.Release()
	l.Commit(a)

	rg, err := l.Read(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 42, rg.Value())
	rg.Release()
}

// S3-style serializability: if B reads before A commits, B must not
// observe A's write even though A < B.
func TestTxnLock_Serializability_ReadBeforeCommitMissesWrite(t *testing.T) {
	l := txnlock.New("test", 0)
	a := txnID(1, 0)
	b := txnID(2, 0)

	rg, err := l.Read(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 0, rg.Value())
	rg.Release()

	wg, err := l.Write(context.Background(), a)
	require.NoError(t, err)
	wg.Set(99)
	wg.Release()
	l.Commit(a)

	rg2, err := l.Read(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 99, rg2.Value())
	rg2.Release()
}

func TestTxnLock_WriteOlderThanCommittedConflicts(t *testing.T) {
	l := txnlock.New("test", 0)
	a := txnID(5, 0)
	b := txnID(1, 0)

	wg, err := l.Write(context.Background(), a)
	require.NoError(t, err)
	wg.Set(1)
	wg.Release()
	l.Commit(a)

	_, err = l.Write(context.Background(), b)
	require.Error(t, err)
	assert.Equal(t, tcerr.Conflict, tcerr.Of(err))
}

func TestTxnLock_WriteBlocksUntilOlderReaderReleases(t *testing.T) {
	l := txnlock.New("test", 0)
	older := txnID(1, 0)
	newer := txnID(2, 0)

	rg, err := l.Read(context.Background(), older)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		wg, err := l.Write(ctx, newer)
		require.NoError(t, err)
		wg.Release()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("write should not have proceeded while older reader is active")
	case <-time.After(50 * time.Millisecond):
	}

	rg.Release()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write never proceeded after older reader released")
	}
}

func TestTxnLock_FinalizeDropsOldCommittedVersions(t *testing.T) {
	l := txnlock.New("test", 0)
	a := txnID(1, 0)
	b := txnID(2, 0)

	wg, _ := l.Write(context.Background(), a)
	wg.Set(1)
	wg.Release()
	l.Commit(a)

	wg2, _ := l.Write(context.Background(), b)
	wg2.Set(2)
	wg2.Release()
	l.Commit(b)

	l.Finalize(b)

	rg, err := l.Read(context.Background(), txnID(3, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, rg.Value())
	rg.Release()
}

func TestTxnLock_CommitAndFinalizeAreIdempotent(t *testing.T) {
	l := txnlock.New("test", 0)
	a := txnID(1, 0)

	wg, _ := l.Write(context.Background(), a)
	wg.Set(7)
	wg.Release()

	l.Commit(a)
	l.Commit(a) // no pending value left; must not panic or change state
	l.Finalize(a)
	l.Finalize(a)

	rg, err := l.Read(context.Background(), txnID(2, 0))
	require.NoError(t, err)
	assert.Equal(t, 7, rg.Value())
	rg.Release()
}

func TestTxnLock_ReadTimesOutWhenOlderWriterNeverCommits(t *testing.T) {
	l := txnlock.New("test", 0)
	older := txnID(1, 0)
	newer := txnID(2, 0)

	wg, err := l.Write(context.Background(), older)
	require.NoError(t, err)
	wg.Set(5) // pending, never committed or released

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = l.Read(ctx, newer)
	require.Error(t, err)
	assert.Equal(t, tcerr.Timeout, tcerr.Of(err))

	wg.Release()
}
