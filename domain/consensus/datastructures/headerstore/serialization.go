package headerstore

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"

	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/wire"
)

// A serialized StoredHeader is the 80 byte wire header, the height as a
// little endian uint32 and the big endian bytes of the chain work.
const minSerializedHeaderSize = wire.BlockHeaderPayload + 4

func serializeHeader(header *model.StoredHeader) ([]byte, error) {
	chainWork := header.ChainWork.Bytes()
	buf := bytes.NewBuffer(make([]byte, 0, minSerializedHeaderSize+len(chainWork)))

	err := header.Header.Serialize(buf)
	if err != nil {
		return nil, err
	}
	var height [4]byte
	binary.LittleEndian.PutUint32(height[:], header.Height)
	buf.Write(height[:])
	buf.Write(chainWork)

	return buf.Bytes(), nil
}

func deserializeHeader(headerBytes []byte) (*model.StoredHeader, error) {
	if len(headerBytes) < minSerializedHeaderSize {
		return nil, errors.Errorf("serialized header must be at least %d bytes, got %d",
			minSerializedHeaderSize, len(headerBytes))
	}

	header, err := wire.DeserializeBlockHeader(headerBytes[:wire.BlockHeaderPayload])
	if err != nil {
		return nil, err
	}
	height := binary.LittleEndian.Uint32(headerBytes[wire.BlockHeaderPayload:minSerializedHeaderSize])
	chainWork := new(big.Int).SetBytes(headerBytes[minSerializedHeaderSize:])

	return model.NewCheckpointStoredHeader(header, height, chainWork), nil
}

func serializeCount(count uint64) []byte {
	var countBytes [8]byte
	binary.LittleEndian.PutUint64(countBytes[:], count)
	return countBytes[:]
}

func deserializeCount(countBytes []byte) (uint64, error) {
	if len(countBytes) != 8 {
		return 0, errors.Errorf("serialized header count must be 8 bytes, got %d", len(countBytes))
	}
	return binary.LittleEndian.Uint64(countBytes), nil
}

func deserializeHash(hashBytes []byte) (*chainhash.Hash, error) {
	return chainhash.NewHash(hashBytes)
}
