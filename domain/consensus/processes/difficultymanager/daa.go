package difficultymanager

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/domain/consensus/utils/math"
)

const (
	// daaWindow is the number of blocks between the two anchors of the
	// DAA.
	daaWindow = 144

	// daaMinTimespanBlocks and daaMaxTimespanBlocks bound the measured
	// anchor timespan, in target spacings.
	daaMinTimespanBlocks = daaWindow / 2
	daaMaxTimespanBlocks = daaWindow * 2
)

// daaBits computes the bits of the child of parent from the work done and
// the time taken between two anchors daaWindow blocks apart.
func (rc *ruleChecker) daaBits(parent *model.StoredHeader, store model.ChainStore) (uint32, error) {
	// Both anchors look two blocks further back for their median.
	if parent.Height < daaWindow+2 {
		err := errors.Wrapf(model.ErrNotFound, "the DAA needs %d ancestors, the parent at height %d has fewer",
			daaWindow+2, parent.Height)
		return 0, &model.StoreError{Op: "ancestor", Hash: *parent.Hash(), Err: err}
	}

	last, err := suitableBlock(store, parent)
	if err != nil {
		return 0, err
	}
	firstCandidate, err := store.AncestorAtHeight(parent, parent.Height-daaWindow)
	if err != nil {
		return 0, err
	}
	first, err := suitableBlock(store, firstCandidate)
	if err != nil {
		return 0, err
	}

	target := computeDAATarget(first, last, rc.params.TargetSpacingSeconds(), rc.params.PowLimit)
	newTargetBits := math.BigToCompact(target)
	log.Tracef("DAA at height %d: anchors %d and %d, bits %08x",
		parent.Height+1, first.Height, last.Height, newTargetBits)

	return newTargetBits, nil
}

// suitableBlock returns the median by timestamp of header and its two
// predecessors, which protects the anchors against a single skewed
// timestamp.
func suitableBlock(store model.ChainStore, header *model.StoredHeader) (*model.StoredHeader, error) {
	var blocks [3]*model.StoredHeader
	blocks[2] = header

	var err error
	blocks[1], err = model.Parent(store, blocks[2])
	if err != nil {
		return nil, err
	}
	blocks[0], err = model.Parent(store, blocks[1])
	if err != nil {
		return nil, err
	}

	return medianOfThree(blocks), nil
}

// medianOfThree sorts blocks by timestamp with a three element sorting
// network and returns the middle one.
func medianOfThree(blocks [3]*model.StoredHeader) *model.StoredHeader {
	if blocks[0].Timestamp() > blocks[2].Timestamp() {
		blocks[0], blocks[2] = blocks[2], blocks[0]
	}
	if blocks[0].Timestamp() > blocks[1].Timestamp() {
		blocks[0], blocks[1] = blocks[1], blocks[0]
	}
	if blocks[1].Timestamp() > blocks[2].Timestamp() {
		blocks[1], blocks[2] = blocks[2], blocks[1]
	}
	return blocks[1]
}

// computeDAATarget projects the work done between first and last onto one
// target spacing and converts it back to a target:
//
//	work = (last.ChainWork - first.ChainWork) * spacing / timespan
//	target = (2^256 - work) / work
//
// where timespan is clamped to [72, 288] target spacings.
func computeDAATarget(first, last *model.StoredHeader, targetSpacing int64, powLimit *big.Int) *big.Int {
	work := new(big.Int).Sub(last.ChainWork, first.ChainWork)
	work.Mul(work, big.NewInt(targetSpacing))

	actualTimespan := last.Timestamp() - first.Timestamp()
	if actualTimespan > daaMaxTimespanBlocks*targetSpacing {
		actualTimespan = daaMaxTimespanBlocks * targetSpacing
	} else if actualTimespan < daaMinTimespanBlocks*targetSpacing {
		actualTimespan = daaMinTimespanBlocks * targetSpacing
	}
	work.Div(work, big.NewInt(actualTimespan))

	target := math.WorkToTarget(work)
	if target == nil || target.Cmp(powLimit) > 0 {
		return new(big.Int).Set(powLimit)
	}
	return target
}
