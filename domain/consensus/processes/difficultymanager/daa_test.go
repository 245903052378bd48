package difficultymanager

import (
	"math/big"
	"testing"

	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/domain/consensus/utils/math"
	"github.com/cashlabs/cashspv/wire"
)

func headerAt(timestamp int64, nonce uint32) *model.StoredHeader {
	return model.NewGenesisStoredHeader(&wire.BlockHeader{Version: 4, Timestamp: timestamp, Bits: 0x1d00ffff, Nonce: nonce})
}

func TestMedianOfThreeOrderInsensitive(t *testing.T) {
	low := headerAt(1000, 1)
	mid := headerAt(2000, 2)
	high := headerAt(3000, 3)

	permutations := [][3]*model.StoredHeader{
		{low, mid, high},
		{low, high, mid},
		{mid, low, high},
		{mid, high, low},
		{high, low, mid},
		{high, mid, low},
	}
	for i, blocks := range permutations {
		if median := medianOfThree(blocks); median != mid {
			t.Errorf("TestMedianOfThreeOrderInsensitive: permutation %d picked timestamp %d",
				i, median.Timestamp())
		}
	}
}

func TestComputeDAATargetClamps(t *testing.T) {
	powLimit := math.CompactToBig(0x1d00ffff)
	const bits = 0x1b0404cb
	blockWork := math.CalcWork(bits)

	makeAnchors := func(timespan int64) (*model.StoredHeader, *model.StoredHeader) {
		header := &wire.BlockHeader{Version: 4, Bits: bits}
		first := model.NewCheckpointStoredHeader(header, 1000, blockWork)
		header.Timestamp = timespan
		header.Nonce = 1
		lastWork := new(big.Int).Mul(blockWork, big.NewInt(daaWindow+1))
		last := model.NewCheckpointStoredHeader(header, 1000+daaWindow, lastWork)
		return first, last
	}

	tests := []struct {
		name         string
		timespan     int64
		expectedBits uint32
	}{
		{"on schedule", daaWindow * 600, bits},
		{"twice as fast", daaWindow * 300, 0x1b020265},
		{"ten times as fast clamps", daaWindow * 60, 0x1b020265},
		{"twice as slow", daaWindow * 1200, 0x1b080996},
		{"ten times as slow clamps", daaWindow * 6000, 0x1b080996},
	}
	for _, test := range tests {
		first, last := makeAnchors(test.timespan)
		target := computeDAATarget(first, last, 600, powLimit)
		if got := math.BigToCompact(target); got != test.expectedBits {
			t.Errorf("TestComputeDAATargetClamps: %s: got bits %08x, want %08x", test.name, got, test.expectedBits)
		}
	}

	// No work at all is treated as the easiest possible target.
	first, _ := makeAnchors(0)
	target := computeDAATarget(first, first, 600, powLimit)
	if target.Cmp(powLimit) != 0 {
		t.Errorf("TestComputeDAATargetClamps: zero work: got %x, want the pow limit", target)
	}
}
