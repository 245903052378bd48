package ldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldbErrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/cashlabs/cashspv/infrastructure/db/database"
)

// LevelDB implements database.Database on top of goleveldb.
type LevelDB struct {
	ldb *leveldb.DB
}

// NewLevelDB opens, or creates, the database at path. cacheSizeMiB sizes
// the block cache, and half of it is used as the write buffer.
func NewLevelDB(path string, cacheSizeMiB int) (*LevelDB, error) {
	options := Options()
	options.BlockCacheCapacity = cacheSizeMiB * opt.MiB
	options.WriteBuffer = (cacheSizeMiB * opt.MiB) / 2

	ldb, err := leveldb.OpenFile(path, options)
	if ldbErrors.IsCorrupted(err) {
		log.Warnf("LevelDB at %s is corrupted, recovering: %s", path, err)
		var recoverErr error
		ldb, recoverErr = leveldb.RecoverFile(path, nil)
		if recoverErr != nil {
			return nil, errors.Wrapf(err, "failed recovering from "+
				"database corruption: %s", recoverErr)
		}
		log.Warnf("LevelDB at %s recovered", path)
		err = nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &LevelDB{ldb: ldb}, nil
}

// Close closes the underlying leveldb instance.
func (db *LevelDB) Close() error {
	return errors.WithStack(db.ldb.Close())
}

// Put stores value under key.
func (db *LevelDB) Put(key *database.Key, value []byte) error {
	return errors.WithStack(db.ldb.Put(key.Bytes(), value, nil))
}

// Get returns the value under key.
func (db *LevelDB) Get(key *database.Key) ([]byte, error) {
	return get(db.ldb, key)
}

// Has returns whether key is present.
func (db *LevelDB) Has(key *database.Key) (bool, error) {
	return has(db.ldb, key)
}

// Delete removes key.
func (db *LevelDB) Delete(key *database.Key) error {
	return errors.WithStack(db.ldb.Delete(key.Bytes(), nil))
}

// Cursor opens a cursor over bucket.
func (db *LevelDB) Cursor(bucket *database.Bucket) (database.Cursor, error) {
	return newCursor(db.ldb, bucket), nil
}

// reader is the read side shared by *leveldb.DB and *leveldb.Snapshot.
type reader interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	Has(key []byte, ro *opt.ReadOptions) (bool, error)
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

func get(r reader, key *database.Key) ([]byte, error) {
	data, err := r.Get(key.Bytes(), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, errors.Wrapf(database.ErrNotFound, "key %s not found", key)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

func has(r reader, key *database.Key) (bool, error) {
	exists, err := r.Has(key.Bytes(), nil)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return exists, nil
}
