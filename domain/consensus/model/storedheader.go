package model

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/cashlabs/cashspv/domain/consensus/utils/math"
	"github.com/cashlabs/cashspv/wire"
)

// StoredHeader is a block header accepted into a ChainStore together with
// its height and the cumulative work of the chain it ends. StoredHeaders are
// immutable once stored and safe to share between goroutines.
type StoredHeader struct {
	Header    wire.BlockHeader
	Height    uint32
	ChainWork *big.Int

	hash chainhash.Hash
}

// NewStoredHeader returns the StoredHeader for header built on top of
// parent: one block higher, with parent's chain work plus the header's own
// work.
func NewStoredHeader(header *wire.BlockHeader, parent *StoredHeader) *StoredHeader {
	chainWork := new(big.Int).Add(parent.ChainWork, math.CalcWork(header.Bits))
	return NewCheckpointStoredHeader(header, parent.Height+1, chainWork)
}

// NewGenesisStoredHeader returns the StoredHeader of a genesis header.
func NewGenesisStoredHeader(header *wire.BlockHeader) *StoredHeader {
	return NewCheckpointStoredHeader(header, 0, math.CalcWork(header.Bits))
}

// NewCheckpointStoredHeader returns a StoredHeader whose height and chain
// work are supplied by the caller, as for a trusted checkpoint.
func NewCheckpointStoredHeader(header *wire.BlockHeader, height uint32, chainWork *big.Int) *StoredHeader {
	return &StoredHeader{
		Header:    *header,
		Height:    height,
		ChainWork: new(big.Int).Set(chainWork),
		hash:      header.BlockHash(),
	}
}

// Hash returns the block hash of the stored header.
func (sh *StoredHeader) Hash() *chainhash.Hash {
	return &sh.hash
}

// PrevHash returns the hash of the stored header's parent.
func (sh *StoredHeader) PrevHash() *chainhash.Hash {
	return &sh.Header.PrevBlock
}

// Timestamp returns the header time in unix seconds.
func (sh *StoredHeader) Timestamp() int64 {
	return sh.Header.Timestamp
}

// Bits returns the compact target of the header.
func (sh *StoredHeader) Bits() uint32 {
	return sh.Header.Bits
}

// Work returns the work contributed by this header alone.
func (sh *StoredHeader) Work() *big.Int {
	return math.CalcWork(sh.Header.Bits)
}

// MoreWorkThan reports whether sh ends a chain with strictly more work than
// other.
func (sh *StoredHeader) MoreWorkThan(other *StoredHeader) bool {
	return sh.ChainWork.Cmp(other.ChainWork) > 0
}
