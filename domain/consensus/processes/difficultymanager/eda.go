package difficultymanager

import (
	"math/big"

	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/domain/consensus/utils/math"
)

const (
	// edaWindow is the number of blocks whose production time triggers
	// the emergency difficulty adjustment.
	edaWindow = 6

	// edaThreshold is the median time past difference over edaWindow
	// blocks from which the adjustment applies.
	edaThreshold = 12 * 60 * 60
)

// emergencyAdjustmentBits keeps the parent's bits unless producing the last
// six blocks took twelve hours or more of median time past, in which case
// the target grows by a quarter, up to the proof of work limit.
func (rc *ruleChecker) emergencyAdjustmentBits(parent *model.StoredHeader, store model.ChainStore) (uint32, error) {
	if parent.Height < edaWindow {
		return parent.Bits(), nil
	}

	ancestor, err := store.AncestorAtHeight(parent, parent.Height-edaWindow)
	if err != nil {
		return 0, err
	}
	parentMedianTime, err := rc.pastMedianTimeManager.PastMedianTime(store, parent)
	if err != nil {
		return 0, err
	}
	ancestorMedianTime, err := rc.pastMedianTimeManager.PastMedianTime(store, ancestor)
	if err != nil {
		return 0, err
	}

	if parentMedianTime-ancestorMedianTime < edaThreshold {
		return parent.Bits(), nil
	}

	target := math.CompactToBig(parent.Bits())
	target.Add(target, new(big.Int).Rsh(target, 2))
	if target.Cmp(rc.params.PowLimit) > 0 {
		target.Set(rc.params.PowLimit)
	}
	newTargetBits := math.BigToCompact(target)
	log.Debugf("Emergency difficulty adjustment at height %d: the last %d blocks took %ds, "+
		"bits %08x -> %08x", parent.Height+1, edaWindow, parentMedianTime-ancestorMedianTime,
		parent.Bits(), newTargetBits)

	return newTargetBits, nil
}
