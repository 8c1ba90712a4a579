package txn

import (
	"fmt"
	"path/filepath"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"

	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
)

var bucketCommits = []byte("commits")

// Status is the durable outcome of a transaction, recorded once
// commit or rollback has been decided so a crash between "committed"
// and "finalized" can be resolved on restart (spec §8 S6).
type Status string

const (
	StatusCommitted  Status = "committed"
	StatusRolledBack Status = "rolled_back"
)

// Record is the journal's entry for one transaction.
type Record struct {
	TxnID     string `json:"txn_id"`
	Status    Status `json:"status"`
	Finalized bool   `json:"finalized"`
}

// Journal is a crash-consistent log of transaction outcomes, backed by
// a single BoltDB file (adapted from the teacher's per-entity
// bucket store: here there is exactly one bucket, keyed by TxnID,
// holding the coordinator's own commit/finalize bookkeeping rather
// than any collection's data).
type Journal struct {
	db *bolt.DB
}

// OpenJournal opens (creating if absent) the journal file under dataDir.
func OpenJournal(dataDir string) (*Journal, error) {
	dbPath := filepath.Join(dataDir, "tinychain.journal")

	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, tcerr.Wrap(tcerr.Internal, err, "opening transaction journal at %s", dbPath)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCommits)
		return err
	})
	if err != nil {
		db.Close()
		return nil, tcerr.Wrap(tcerr.Internal, err, "initializing transaction journal")
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// Put records rec, overwriting any prior record for the same TxnID.
func (j *Journal) Put(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return tcerr.Wrap(tcerr.Internal, err, "encoding journal record")
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCommits).Put([]byte(rec.TxnID), data)
	})
}

// Get returns the record for txnID, if one was ever written.
func (j *Journal) Get(txnID string) (Record, bool, error) {
	var rec Record
	found := false
	err := j.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketCommits).Get([]byte(txnID))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return Record{}, false, tcerr.Wrap(tcerr.Internal, err, "reading journal record for %s", txnID)
	}
	return rec, found, nil
}

// Pending returns every journaled transaction that committed but was
// never marked finalized — the recovery set a coordinator must drain
// on startup (spec §8 S6: "on restart, canonical state equals
// committed state and .versions/{T} is removed on first finalize").
func (j *Journal) Pending() ([]Record, error) {
	var out []Record
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCommits).ForEach(func(_, data []byte) error {
			var rec Record
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("decoding journal record: %w", err)
			}
			if rec.Status == StatusCommitted && !rec.Finalized {
				out = append(out, rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, tcerr.Wrap(tcerr.Internal, err, "scanning transaction journal")
	}
	return out, nil
}
