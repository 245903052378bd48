package ldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/cashlabs/cashspv/infrastructure/db/database"
)

// LevelDBTransaction reads from a snapshot taken at Begin and collects
// writes in a batch that Commit applies atomically. Its own writes are not
// visible to its reads.
type LevelDBTransaction struct {
	db       *LevelDB
	snapshot *leveldb.Snapshot
	batch    *leveldb.Batch
	isClosed bool
}

// Begin starts a transaction.
func (db *LevelDB) Begin() (database.Transaction, error) {
	snapshot, err := db.ldb.GetSnapshot()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &LevelDBTransaction{
		db:       db,
		snapshot: snapshot,
		batch:    new(leveldb.Batch),
	}, nil
}

func (tx *LevelDBTransaction) checkOpen(operation string) error {
	if tx.isClosed {
		return errors.Errorf("cannot %s a closed transaction", operation)
	}
	return nil
}

func (tx *LevelDBTransaction) close() {
	tx.isClosed = true
	tx.snapshot.Release()
}

// Commit writes the batch and closes the transaction.
func (tx *LevelDBTransaction) Commit() error {
	if err := tx.checkOpen("commit"); err != nil {
		return err
	}
	tx.close()
	return errors.WithStack(tx.db.ldb.Write(tx.batch, nil))
}

// Rollback drops the batch and closes the transaction.
func (tx *LevelDBTransaction) Rollback() error {
	if err := tx.checkOpen("rollback"); err != nil {
		return err
	}
	tx.close()
	tx.batch.Reset()
	return nil
}

// RollbackUnlessClosed rolls back unless Commit or Rollback already ran.
func (tx *LevelDBTransaction) RollbackUnlessClosed() error {
	if tx.isClosed {
		return nil
	}
	return tx.Rollback()
}

// Put queues a write of value under key.
func (tx *LevelDBTransaction) Put(key *database.Key, value []byte) error {
	if err := tx.checkOpen("put into"); err != nil {
		return err
	}
	tx.batch.Put(key.Bytes(), value)
	return nil
}

// Delete queues the removal of key.
func (tx *LevelDBTransaction) Delete(key *database.Key) error {
	if err := tx.checkOpen("delete from"); err != nil {
		return err
	}
	tx.batch.Delete(key.Bytes())
	return nil
}

// Get reads key from the snapshot.
func (tx *LevelDBTransaction) Get(key *database.Key) ([]byte, error) {
	if err := tx.checkOpen("get from"); err != nil {
		return nil, err
	}
	return get(tx.snapshot, key)
}

// Has checks key in the snapshot.
func (tx *LevelDBTransaction) Has(key *database.Key) (bool, error) {
	if err := tx.checkOpen("read from"); err != nil {
		return false, err
	}
	return has(tx.snapshot, key)
}

// Cursor opens a cursor over bucket in the snapshot.
func (tx *LevelDBTransaction) Cursor(bucket *database.Bucket) (database.Cursor, error) {
	if err := tx.checkOpen("open a cursor on"); err != nil {
		return nil, err
	}
	return newCursor(tx.snapshot, bucket), nil
}
