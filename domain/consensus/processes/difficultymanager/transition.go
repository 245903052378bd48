// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package difficultymanager

import (
	"math/big"

	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/domain/consensus/utils/math"
)

// transitionPointBits calculates the bits of the first block of a retarget
// interval from the time the previous interval took to mine.
func (rc *ruleChecker) transitionPointBits(parent *model.StoredHeader, store model.ChainStore) (uint32, error) {
	// Get the block node at the beginning of the window
	// (RetargetInterval - 1 blocks back from the parent).
	firstHeight := parent.Height - (rc.params.RetargetInterval - 1)
	first, err := store.AncestorAtHeight(parent, firstHeight)
	if err != nil {
		return 0, err
	}

	// Limit the amount of adjustment that can occur to the previous
	// difficulty.
	targetTimespan := rc.params.TargetTimespanSeconds()
	minTimespan := targetTimespan / 4
	maxTimespan := targetTimespan * 4
	actualTimespan := parent.Timestamp() - first.Timestamp()
	adjustedTimespan := actualTimespan
	if actualTimespan < minTimespan {
		adjustedTimespan = minTimespan
	} else if actualTimespan > maxTimespan {
		adjustedTimespan = maxTimespan
	}

	// Calculate new target difficulty as:
	//  currentDifficulty * (adjustedTimespan / targetTimespan)
	// The result uses integer division which means it will be slightly
	// rounded down.
	newTarget := math.CompactToBig(parent.Bits())
	newTarget.Mul(newTarget, big.NewInt(adjustedTimespan))
	newTarget.Div(newTarget, big.NewInt(targetTimespan))

	// Limit new value to the proof of work limit.
	if newTarget.Cmp(rc.params.PowLimit) > 0 {
		newTarget.Set(rc.params.PowLimit)
	}

	newTargetBits := math.BigToCompact(newTarget)
	log.Debugf("Difficulty retarget at height %d: old bits %08x, new bits %08x, "+
		"actual timespan %ds, adjusted timespan %ds, target timespan %ds",
		parent.Height+1, parent.Bits(), newTargetBits, actualTimespan, adjustedTimespan, targetTimespan)

	return newTargetBits, nil
}
