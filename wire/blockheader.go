// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/hex"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

// BlockHeaderPayload is the number of bytes a block header takes on the wire.
// Version 4 bytes + PrevBlock 32 bytes + MerkleRoot 32 bytes + Timestamp 4
// bytes + Bits 4 bytes + Nonce 4 bytes.
const BlockHeaderPayload = 16 + (chainhash.HashSize * 2)

// BlockHeader defines information about a block and is used in the block and
// headers messages. Only the fields the consensus engine consumes are kept.
type BlockHeader struct {
	// Version of the block. This is not the same as the protocol version.
	Version int32

	// Hash of the previous block header in the chain.
	PrevBlock chainhash.Hash

	// Merkle tree reference to hash of all transactions for the block.
	MerkleRoot chainhash.Hash

	// Time the block was created, in unix seconds. This is encoded as a
	// uint32 on the wire and therefore is limited to 2106.
	Timestamp int64

	// Difficulty target for the block, in compact form.
	Bits uint32

	// Nonce used to generate the block.
	Nonce uint32
}

// BlockHash computes the block identifier hash for the given block header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	// Encode the header and double sha256 everything. Ignore the error
	// returns since there is no way the encode could fail except being out
	// of memory which would cause a run-time panic.
	buf := bytes.NewBuffer(make([]byte, 0, BlockHeaderPayload))
	_ = writeBlockHeader(buf, h)

	return chainhash.DoubleHashH(buf.Bytes())
}

// IsGenesis returns whether the header has no parent.
func (h *BlockHeader) IsGenesis() bool {
	return h.PrevBlock == (chainhash.Hash{})
}

// Deserialize decodes a block header from r into the receiver.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	return readBlockHeader(r, h)
}

// Serialize encodes the block header into w.
func (h *BlockHeader) Serialize(w io.Writer) error {
	return writeBlockHeader(w, h)
}

// Bytes returns the 80-byte serialization of the header.
func (h *BlockHeader) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, BlockHeaderPayload))
	_ = writeBlockHeader(buf, h)
	return buf.Bytes()
}

// NewBlockHeader returns a new BlockHeader using the provided version,
// previous block hash, merkle root hash, timestamp, difficulty bits, and
// nonce.
func NewBlockHeader(version int32, prevHash, merkleRootHash *chainhash.Hash,
	timestamp int64, bits uint32, nonce uint32) *BlockHeader {

	return &BlockHeader{
		Version:    version,
		PrevBlock:  *prevHash,
		MerkleRoot: *merkleRootHash,
		Timestamp:  timestamp,
		Bits:       bits,
		Nonce:      nonce,
	}
}

// DeserializeBlockHeader decodes a header from its 80-byte serialization.
func DeserializeBlockHeader(serialized []byte) (*BlockHeader, error) {
	if len(serialized) != BlockHeaderPayload {
		return nil, errors.Errorf("block header must be %d bytes, got %d",
			BlockHeaderPayload, len(serialized))
	}
	header := &BlockHeader{}
	err := header.Deserialize(bytes.NewReader(serialized))
	if err != nil {
		return nil, err
	}
	return header, nil
}

// NewBlockHeaderFromStr decodes a header from the hex encoding of its
// serialization.
func NewBlockHeaderFromStr(hexHeader string) (*BlockHeader, error) {
	serialized, err := hex.DecodeString(hexHeader)
	if err != nil {
		return nil, errors.Wrap(err, "malformed block header hex")
	}
	return DeserializeBlockHeader(serialized)
}

// readBlockHeader reads a block header from r.
func readBlockHeader(r io.Reader, bh *BlockHeader) error {
	var timestamp uint32Time
	err := readElements(r, &bh.Version, &bh.PrevBlock, &bh.MerkleRoot,
		&timestamp, &bh.Bits, &bh.Nonce)
	if err != nil {
		return err
	}
	bh.Timestamp = int64(timestamp)
	return nil
}

// writeBlockHeader writes a block header to w.
func writeBlockHeader(w io.Writer, bh *BlockHeader) error {
	sec := uint32(bh.Timestamp)
	return writeElements(w, bh.Version, &bh.PrevBlock, &bh.MerkleRoot,
		sec, bh.Bits, bh.Nonce)
}
