package headerstore

import (
	"sync/atomic"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightninglabs/neutrino/cache"
	"github.com/lightninglabs/neutrino/cache/lru"
	"github.com/pkg/errors"

	"github.com/cashlabs/cashspv/domain/consensus/model"
)

// DefaultCacheSize is the number of headers a CachedStore keeps by default.
// It covers a DAA window and a median time past window several times over.
const DefaultCacheSize = 2016

// cachedHeader is the LRU cache entry of a stored header.
type cachedHeader struct {
	*model.StoredHeader
}

// Size returns the "size" of an entry.
func (c *cachedHeader) Size() (uint64, error) {
	return 1, nil
}

// CachedStore is a read-through LRU cache in front of another HeaderStore.
// Stored headers are immutable, so cached entries never go stale.
type CachedStore struct {
	model.HeaderStore

	cache  *lru.Cache[chainhash.Hash, *cachedHeader]
	hits   uint64
	misses uint64
}

// NewCachedStore wraps store with an LRU cache of up to size headers.
func NewCachedStore(store model.HeaderStore, size uint64) *CachedStore {
	return &CachedStore{
		HeaderStore: store,
		cache:       lru.NewCache[chainhash.Hash, *cachedHeader](size),
	}
}

// Get returns the header with the given hash, from the cache if possible.
func (cs *CachedStore) Get(hash *chainhash.Hash) (*model.StoredHeader, error) {
	entry, err := cs.cache.Get(*hash)
	if err == nil {
		atomic.AddUint64(&cs.hits, 1)
		return entry.StoredHeader, nil
	}
	if !errors.Is(err, cache.ErrElementNotFound) {
		return nil, err
	}
	atomic.AddUint64(&cs.misses, 1)

	header, err := cs.HeaderStore.Get(hash)
	if err != nil {
		return nil, err
	}
	_, err = cs.cache.Put(*hash, &cachedHeader{header})
	if err != nil {
		return nil, err
	}
	return header, nil
}

// AncestorAtHeight returns the ancestor of from at the given height, reading
// through the cache.
func (cs *CachedStore) AncestorAtHeight(from *model.StoredHeader, height uint32) (*model.StoredHeader, error) {
	return model.WalkToHeight(cs, from, height)
}

// Has returns whether a header with the given hash is stored.
func (cs *CachedStore) Has(hash *chainhash.Hash) (bool, error) {
	if _, err := cs.cache.Get(*hash); err == nil {
		return true, nil
	}
	return cs.HeaderStore.Has(hash)
}

// Put stores header in the underlying store and caches it.
func (cs *CachedStore) Put(header *model.StoredHeader) error {
	err := cs.HeaderStore.Put(header)
	if err != nil {
		return err
	}
	_, err = cs.cache.Put(*header.Hash(), &cachedHeader{header})
	return err
}

// Stats returns the number of cache hits and misses of Get so far.
func (cs *CachedStore) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&cs.hits), atomic.LoadUint64(&cs.misses)
}

// Len returns the number of cached headers.
func (cs *CachedStore) Len() int {
	return cs.cache.Len()
}
