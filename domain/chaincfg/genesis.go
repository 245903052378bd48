// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/cashlabs/cashspv/wire"
)

// genesisMerkleRoot is the hash of the first transaction in the genesis
// block for the main network, test network and regression test network.
var genesisMerkleRoot = *newHashFromStr("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b")

// genesisHeader defines the genesis block header for the main network.
var genesisHeader = wire.BlockHeader{
	Version:    1,
	PrevBlock:  chainhash.Hash{},
	MerkleRoot: genesisMerkleRoot,
	Timestamp:  1231006505, // 2009-01-03 18:15:05 +0000 UTC
	Bits:       0x1d00ffff,
	Nonce:      0x7c2bac1d, // 2083236893
}

// genesisHash is the hash of the first block in the block chain for the main
// network.
var genesisHash = *newHashFromStr("000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f")

// testnet3GenesisHeader defines the genesis block header for the version 3
// test network.
var testnet3GenesisHeader = wire.BlockHeader{
	Version:    1,
	PrevBlock:  chainhash.Hash{},
	MerkleRoot: genesisMerkleRoot,
	Timestamp:  1296688602, // 2011-02-02 23:16:42 +0000 UTC
	Bits:       0x1d00ffff,
	Nonce:      0x18aea41a, // 414098458
}

// testnet3GenesisHash is the hash of the first block in the block chain for
// the version 3 test network.
var testnet3GenesisHash = *newHashFromStr("000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943")

// regtestGenesisHeader defines the genesis block header for the regression
// test network.
var regtestGenesisHeader = wire.BlockHeader{
	Version:    1,
	PrevBlock:  chainhash.Hash{},
	MerkleRoot: genesisMerkleRoot,
	Timestamp:  1296688602, // 2011-02-02 23:16:42 +0000 UTC
	Bits:       0x207fffff,
	Nonce:      2,
}

// regtestGenesisHash is the hash of the first block in the block chain for
// the regression test network.
var regtestGenesisHash = *newHashFromStr("0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206")

// unitTestGenesisHeader is the regression test genesis header carrying the
// unit test network's proof of work limit, so that its descendants start
// within range. It is not mined.
var unitTestGenesisHeader = wire.BlockHeader{
	Version:    1,
	PrevBlock:  chainhash.Hash{},
	MerkleRoot: genesisMerkleRoot,
	Timestamp:  1296688602,
	Bits:       0x1d00ffff,
	Nonce:      2,
}

var unitTestGenesisHash = *newHashFromStr("4b8ea0a00404f9ce966f3f828bffdb51d3be1d74177df254cecc945f9e3d19c3")

// newHashFromStr converts the passed big-endian hex string into a
// chainhash.Hash. It only differs from the one available in chainhash in that
// it panics on an error since it will only (and must only) be called with
// hard-coded, and therefore known good, hashes.
func newHashFromStr(hexStr string) *chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}
	return hash
}
