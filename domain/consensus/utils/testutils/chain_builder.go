package testutils

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/cashlabs/cashspv/domain/consensus/datastructures/headerstore"
	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/wire"
)

// ChainBuilder grows a single chain of synthetic headers in a MemoryStore.
// Headers are not mined; tests that use it must skip proof of work.
type ChainBuilder struct {
	t     testing.TB
	Store *headerstore.MemoryStore
	Chain []*model.StoredHeader
}

// NewChainBuilder starts a chain at the given genesis header.
func NewChainBuilder(t testing.TB, genesis *wire.BlockHeader) *ChainBuilder {
	return newChainBuilder(t, model.NewGenesisStoredHeader(genesis))
}

// NewChainBuilderAt starts a chain at a trusted base header with the given
// height and chain work, as a checkpoint bootstrap would.
func NewChainBuilderAt(t testing.TB, timestamp int64, bits uint32, height uint32) *ChainBuilder {
	base := &wire.BlockHeader{
		Version:    4,
		PrevBlock:  chainhash.Hash{0x01},
		MerkleRoot: chainhash.Hash{0x02},
		Timestamp:  timestamp,
		Bits:       bits,
		Nonce:      height,
	}
	chainWork := new(big.Int).Mul(big.NewInt(int64(height)+1), model.NewGenesisStoredHeader(base).Work())
	return newChainBuilder(t, model.NewCheckpointStoredHeader(base, height, chainWork))
}

func newChainBuilder(t testing.TB, base *model.StoredHeader) *ChainBuilder {
	store := headerstore.NewMemoryStore()
	err := store.Put(base)
	if err != nil {
		t.Fatalf("Put: %s", err)
	}
	err = store.SetTip(base.Hash())
	if err != nil {
		t.Fatalf("SetTip: %s", err)
	}
	return &ChainBuilder{t: t, Store: store, Chain: []*model.StoredHeader{base}}
}

// Tip returns the last header of the chain.
func (cb *ChainBuilder) Tip() *model.StoredHeader {
	return cb.Chain[len(cb.Chain)-1]
}

// Base returns the first header of the chain.
func (cb *ChainBuilder) Base() *model.StoredHeader {
	return cb.Chain[0]
}

// At returns the header of the chain at the given height.
func (cb *ChainBuilder) At(height uint32) *model.StoredHeader {
	return cb.Chain[height-cb.Base().Height]
}

// NextHeader returns a header that extends the current tip without storing
// it.
func (cb *ChainBuilder) NextHeader(timestamp int64, bits uint32, version int32) *wire.BlockHeader {
	tip := cb.Tip()
	return &wire.BlockHeader{
		Version:    version,
		PrevBlock:  *tip.Hash(),
		MerkleRoot: chainhash.Hash{byte(tip.Height), byte(tip.Height >> 8), byte(tip.Height >> 16)},
		Timestamp:  timestamp,
		Bits:       bits,
		Nonce:      tip.Height + 1,
	}
}

// Add stores a header with the given fields on top of the tip and makes it
// the new tip.
func (cb *ChainBuilder) Add(timestamp int64, bits uint32, version int32) *model.StoredHeader {
	stored := model.NewStoredHeader(cb.NextHeader(timestamp, bits, version), cb.Tip())
	err := cb.Store.Put(stored)
	if err != nil {
		cb.t.Fatalf("Put: %s", err)
	}
	err = cb.Store.SetTip(stored.Hash())
	if err != nil {
		cb.t.Fatalf("SetTip: %s", err)
	}
	cb.Chain = append(cb.Chain, stored)
	return stored
}

// Extend adds count headers spaced spacing seconds apart, all with the
// given bits, and returns the new tip.
func (cb *ChainBuilder) Extend(count int, spacing int64, bits uint32) *model.StoredHeader {
	for i := 0; i < count; i++ {
		cb.Add(cb.Tip().Timestamp()+spacing, bits, 4)
	}
	return cb.Tip()
}
