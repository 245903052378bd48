package headerstore

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/infrastructure/db/database"
)

var (
	bucketName   = []byte("block-headers")
	countKeyName = []byte("block-headers-count")
	tipKeyName   = []byte("block-headers-tip")
)

// LevelDBStore is a HeaderStore persisted in a database.Database. Headers of
// different networks can share one database under different prefixes.
type LevelDBStore struct {
	db       database.Database
	bucket   *database.Bucket
	countKey *database.Key
	tipKey   *database.Key

	// lock serializes writers and guards tip and count.
	lock  sync.RWMutex
	tip   *model.StoredHeader
	count uint64
}

// NewLevelDBStore opens the header store kept under prefix in db, loading
// its header count and tip.
func NewLevelDBStore(db database.Database, prefix []byte) (*LevelDBStore, error) {
	store := &LevelDBStore{
		db:       db,
		bucket:   database.MakeBucket(prefix).Bucket(bucketName),
		countKey: database.MakeBucket(prefix).Key(countKeyName),
		tipKey:   database.MakeBucket(prefix).Key(tipKeyName),
	}

	err := store.initializeCount()
	if err != nil {
		return nil, err
	}
	err = store.initializeTip()
	if err != nil {
		return nil, err
	}

	return store, nil
}

func (ls *LevelDBStore) initializeCount() error {
	hasCountBytes, err := ls.db.Has(ls.countKey)
	if err != nil {
		return &model.StoreError{Op: "load count", Err: err}
	}
	if !hasCountBytes {
		count, err := ls.countHeaders()
		if err != nil {
			return &model.StoreError{Op: "count headers", Err: err}
		}
		ls.count = count
		return nil
	}

	countBytes, err := ls.db.Get(ls.countKey)
	if err != nil {
		return &model.StoreError{Op: "load count", Err: err}
	}
	ls.count, err = deserializeCount(countBytes)
	if err != nil {
		return &model.StoreError{Op: "load count", Err: err}
	}
	return nil
}

// countHeaders counts the headers of the bucket, for databases that hold
// headers but no count.
func (ls *LevelDBStore) countHeaders() (count uint64, err error) {
	cursor, err := ls.db.Cursor(ls.bucket)
	if err != nil {
		return 0, err
	}
	defer func() {
		closeErr := cursor.Close()
		if err == nil {
			err = closeErr
		}
	}()

	for cursor.Next() {
		count++
	}
	if count > 0 {
		log.Infof("Counted %d stored headers", count)
	}
	return count, nil
}

func (ls *LevelDBStore) initializeTip() error {
	hasTip, err := ls.db.Has(ls.tipKey)
	if err != nil {
		return &model.StoreError{Op: "load tip", Err: err}
	}
	if !hasTip {
		return nil
	}
	tipBytes, err := ls.db.Get(ls.tipKey)
	if err != nil {
		return &model.StoreError{Op: "load tip", Err: err}
	}
	tipHash, err := deserializeHash(tipBytes)
	if err != nil {
		return &model.StoreError{Op: "load tip", Err: err}
	}
	tip, err := ls.Get(tipHash)
	if err != nil {
		return err
	}
	ls.tip = tip
	log.Debugf("Loaded %d headers, tip %s at height %d", ls.count, tip.Hash(), tip.Height)
	return nil
}

// Get returns the header with the given hash.
func (ls *LevelDBStore) Get(hash *chainhash.Hash) (*model.StoredHeader, error) {
	headerBytes, err := ls.db.Get(ls.hashAsKey(hash))
	if database.IsNotFoundError(err) {
		return nil, &model.StoreError{Op: "get", Hash: *hash, Err: model.ErrNotFound}
	}
	if err != nil {
		return nil, &model.StoreError{Op: "get", Hash: *hash, Err: err}
	}

	header, err := deserializeHeader(headerBytes)
	if err != nil {
		return nil, &model.StoreError{Op: "get", Hash: *hash, Err: err}
	}
	return header, nil
}

// AncestorAtHeight returns the ancestor of from at the given height.
func (ls *LevelDBStore) AncestorAtHeight(from *model.StoredHeader, height uint32) (*model.StoredHeader, error) {
	return model.WalkToHeight(ls, from, height)
}

// Has returns whether a header with the given hash is stored.
func (ls *LevelDBStore) Has(hash *chainhash.Hash) (bool, error) {
	exists, err := ls.db.Has(ls.hashAsKey(hash))
	if err != nil {
		return false, &model.StoreError{Op: "has", Hash: *hash, Err: err}
	}
	return exists, nil
}

// Put stores header and its updated header count in one transaction.
func (ls *LevelDBStore) Put(header *model.StoredHeader) error {
	ls.lock.Lock()
	defer ls.lock.Unlock()

	key := ls.hashAsKey(header.Hash())
	exists, err := ls.db.Has(key)
	if err != nil {
		return &model.StoreError{Op: "put", Hash: *header.Hash(), Err: err}
	}
	if exists {
		return nil
	}

	headerBytes, err := serializeHeader(header)
	if err != nil {
		return &model.StoreError{Op: "put", Hash: *header.Hash(), Err: err}
	}

	dbTx, err := ls.db.Begin()
	if err != nil {
		return &model.StoreError{Op: "put", Hash: *header.Hash(), Err: err}
	}
	defer dbTx.RollbackUnlessClosed()

	err = dbTx.Put(key, headerBytes)
	if err != nil {
		return &model.StoreError{Op: "put", Hash: *header.Hash(), Err: err}
	}
	err = dbTx.Put(ls.countKey, serializeCount(ls.count+1))
	if err != nil {
		return &model.StoreError{Op: "put", Hash: *header.Hash(), Err: err}
	}
	err = dbTx.Commit()
	if err != nil {
		return &model.StoreError{Op: "put", Hash: *header.Hash(), Err: err}
	}

	ls.count++
	return nil
}

// Tip returns the tip of the active chain.
func (ls *LevelDBStore) Tip() (*model.StoredHeader, error) {
	ls.lock.RLock()
	defer ls.lock.RUnlock()

	if ls.tip == nil {
		return nil, &model.StoreError{Op: "tip", Err: model.ErrNotFound}
	}
	return ls.tip, nil
}

// SetTip makes the stored header with the given hash the active tip.
func (ls *LevelDBStore) SetTip(hash *chainhash.Hash) error {
	ls.lock.Lock()
	defer ls.lock.Unlock()

	tip, err := ls.Get(hash)
	if err != nil {
		return err
	}
	err = ls.db.Put(ls.tipKey, hash[:])
	if err != nil {
		return &model.StoreError{Op: "set tip", Hash: *hash, Err: err}
	}
	ls.tip = tip
	return nil
}

// Count returns the number of stored headers.
func (ls *LevelDBStore) Count() uint64 {
	ls.lock.RLock()
	defer ls.lock.RUnlock()

	return ls.count
}

func (ls *LevelDBStore) hashAsKey(hash *chainhash.Hash) *database.Key {
	return ls.bucket.Key(hash[:])
}
