package headerstore

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/cashlabs/cashspv/domain/consensus/model"
)

// MemoryStore is a HeaderStore kept entirely in memory. It supports any
// number of concurrent readers alongside a single writer.
type MemoryStore struct {
	lock    sync.RWMutex
	headers map[chainhash.Hash]*model.StoredHeader
	tip     *model.StoredHeader
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		headers: make(map[chainhash.Hash]*model.StoredHeader),
	}
}

// Get returns the header with the given hash.
func (ms *MemoryStore) Get(hash *chainhash.Hash) (*model.StoredHeader, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	header, ok := ms.headers[*hash]
	if !ok {
		return nil, &model.StoreError{Op: "get", Hash: *hash, Err: model.ErrNotFound}
	}
	return header, nil
}

// AncestorAtHeight returns the ancestor of from at the given height.
func (ms *MemoryStore) AncestorAtHeight(from *model.StoredHeader, height uint32) (*model.StoredHeader, error) {
	return model.WalkToHeight(ms, from, height)
}

// Has returns whether a header with the given hash is stored.
func (ms *MemoryStore) Has(hash *chainhash.Hash) (bool, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	_, ok := ms.headers[*hash]
	return ok, nil
}

// Put stores header.
func (ms *MemoryStore) Put(header *model.StoredHeader) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	if _, ok := ms.headers[*header.Hash()]; !ok {
		ms.headers[*header.Hash()] = header
	}
	return nil
}

// Tip returns the tip of the active chain.
func (ms *MemoryStore) Tip() (*model.StoredHeader, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	if ms.tip == nil {
		return nil, &model.StoreError{Op: "tip", Err: model.ErrNotFound}
	}
	return ms.tip, nil
}

// SetTip makes the stored header with the given hash the active tip.
func (ms *MemoryStore) SetTip(hash *chainhash.Hash) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	header, ok := ms.headers[*hash]
	if !ok {
		return &model.StoreError{Op: "set tip", Hash: *hash, Err: model.ErrNotFound}
	}
	ms.tip = header
	return nil
}

// Len returns the number of stored headers.
func (ms *MemoryStore) Len() int {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	return len(ms.headers)
}
