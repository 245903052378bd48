package pow

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/cashlabs/cashspv/domain/consensus/utils/math"
	"github.com/cashlabs/cashspv/wire"
)

// CheckProofOfWorkWithTarget check's if the block has a valid PoW according to the provided target
// it does not check if the difficulty itself is valid or less than the maximum for the appropriate network
func CheckProofOfWorkWithTarget(header *wire.BlockHeader, target *big.Int) bool {
	hash := header.BlockHash()

	// The block hash must be less or equal than the claimed target.
	return HashToBig(&hash).Cmp(target) <= 0
}

// CheckProofOfWorkByBits check's if the block has a valid PoW according to its Bits field
// it does not check if the difficulty itself is valid or less than the maximum for the appropriate network
func CheckProofOfWorkByBits(header *wire.BlockHeader) bool {
	return CheckProofOfWorkWithTarget(header, math.CompactToBig(header.Bits))
}

// HashToBig converts a chainhash.Hash into a big.Int that can be used to
// perform math comparisons. The hash is stored little endian.
func HashToBig(hash *chainhash.Hash) *big.Int {
	// A Hash is in little-endian, but the big package wants the bytes in
	// big-endian, so reverse them.
	buf := *hash
	blen := len(buf)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = buf[blen-1-i], buf[i]
	}

	return new(big.Int).SetBytes(buf[:])
}
