package model

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// ChainStore is the read-only view of accepted headers that the difficulty
// engine walks. Implementations must be safe for concurrent reads.
type ChainStore interface {
	// Get returns the header with the given hash. Missing headers fail
	// with a StoreError wrapping ErrNotFound.
	Get(hash *chainhash.Hash) (*StoredHeader, error)

	// AncestorAtHeight returns the ancestor of from at the given height,
	// which may be from itself. Heights above from fail with ErrNotFound.
	AncestorAtHeight(from *StoredHeader, height uint32) (*StoredHeader, error)
}

// HeaderStore is a ChainStore that headers can be added to and that tracks
// the tip of the active chain.
type HeaderStore interface {
	ChainStore

	// Put stores header. Storing a header that is already present is a
	// no-op.
	Put(header *StoredHeader) error

	// Has returns whether a header with the given hash is stored.
	Has(hash *chainhash.Hash) (bool, error)

	// Tip returns the tip of the active chain, or a StoreError wrapping
	// ErrNotFound when no tip was set yet.
	Tip() (*StoredHeader, error)

	// SetTip makes the stored header with the given hash the tip of the
	// active chain.
	SetTip(hash *chainhash.Hash) error
}

// Parent returns the stored parent of header. The parent of a genesis
// header is never found.
func Parent(store ChainStore, header *StoredHeader) (*StoredHeader, error) {
	return store.Get(header.PrevHash())
}

// WalkToHeight resolves the ancestor of from at height by following
// previous-hash links through store. ChainStore implementations without a
// height index use it for AncestorAtHeight.
func WalkToHeight(store ChainStore, from *StoredHeader, height uint32) (*StoredHeader, error) {
	if height > from.Height {
		return nil, &StoreError{
			Op:   "ancestor",
			Hash: *from.Hash(),
			Err:  errAncestorAbove(height, from.Height),
		}
	}
	current := from
	for current.Height > height {
		parent, err := Parent(store, current)
		if err != nil {
			return nil, err
		}
		current = parent
	}
	return current, nil
}
