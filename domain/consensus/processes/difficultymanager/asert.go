package difficultymanager

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/cashlabs/cashspv/domain/chaincfg"
	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/domain/consensus/utils/math"
)

// asertRadix is the fixed point radix of the ASERT exponent: 16
// fractional bits.
const asertRadix = 1 << 16

// asertBits schedules the target of the child of parent relative to the
// ASERT anchor block.
func (rc *ruleChecker) asertBits(parent *model.StoredHeader, store model.ChainStore) (uint32, error) {
	anchor := rc.params.ASERTAnchor
	parentMedianTime, err := rc.pastMedianTimeManager.PastMedianTime(store, parent)
	if err != nil {
		return 0, err
	}

	anchorMedianTime, err := rc.anchorParentMedianTime(parent, store)
	if err != nil {
		return 0, err
	}

	heightDiff := int64(parent.Height) - int64(anchor.Height)
	timeDiff := parentMedianTime - anchorMedianTime
	target := calculateASERT(math.CompactToBig(anchor.Bits), rc.params.TargetSpacingSeconds(),
		timeDiff, heightDiff, rc.params.ASERTHalfLifeSeconds(), rc.params.PowLimit)

	newTargetBits := math.BigToCompact(target)
	log.Tracef("ASERT at height %d: height diff %d, time diff %ds, bits %08x",
		parent.Height+1, heightDiff, timeDiff, newTargetBits)

	return newTargetBits, nil
}

// anchorParentMedianTime returns the median time past of the anchor's
// parent, so that both ends of the ASERT time difference are median times.
// Unless the parameters carry it, it is computed from the ancestor of parent
// at the anchor's parent height, whose timestamp must match the anchor. The
// anchor is fixed for a network, so the result is kept once resolved.
func (rc *ruleChecker) anchorParentMedianTime(parent *model.StoredHeader, store model.ChainStore) (int64, error) {
	anchor := rc.params.ASERTAnchor
	if anchor.ParentMedianTime != 0 {
		return anchor.ParentMedianTime, nil
	}

	rc.anchorLock.RLock()
	medianTime, ok := rc.anchorMedianTime, rc.anchorMedianTimeSet
	rc.anchorLock.RUnlock()
	if ok {
		return medianTime, nil
	}

	anchorParent, err := store.AncestorAtHeight(parent, anchor.Height-1)
	if err != nil {
		return 0, err
	}
	if anchorParent.Timestamp() != anchor.ParentTime {
		return 0, errors.Wrapf(chaincfg.ErrInconsistentParams, "block %s at height %d has timestamp %d, "+
			"the ASERT anchor expects its parent at %d", anchorParent.Hash(), anchorParent.Height,
			anchorParent.Timestamp(), anchor.ParentTime)
	}
	medianTime, err = rc.pastMedianTimeManager.PastMedianTime(store, anchorParent)
	if err != nil {
		return 0, err
	}
	log.Debugf("ASERT anchor parent %s has median time past %d", anchorParent.Hash(), medianTime)

	rc.anchorLock.Lock()
	rc.anchorMedianTime, rc.anchorMedianTimeSet = medianTime, true
	rc.anchorLock.Unlock()

	return medianTime, nil
}

// calculateASERT implements aserti3-2d:
//
//	target = refTarget * 2^((timeDiff - targetSpacing*(heightDiff+1)) / halfLife)
//
// The exponent is a fixed point number with 16 fractional bits. Its integer
// part becomes a shift and its fractional part is approximated by a cubic
// polynomial, so the result is reproducible bit for bit. The result is
// clamped to [1, powLimit].
func calculateASERT(refTarget *big.Int, targetSpacing, timeDiff, heightDiff, halfLife int64,
	powLimit *big.Int) *big.Int {

	// Go integer division truncates toward zero, as the reference
	// implementation does.
	exponent := ((timeDiff - targetSpacing*(heightDiff+1)) * asertRadix) / halfLife

	// The integer part is an arithmetic shift, which floors for negative
	// exponents and leaves a fractional part in [0, 65535].
	shifts := exponent >> 16
	frac := uint64(uint16(exponent))

	// 2^x ~= 1 + 0.695502049*x + 0.2262698*x^2 + 0.0782318*x^3 for 0 <= x < 1,
	// in 48 bit fixed point, rounded, plus the integer one in 16 bit fixed
	// point.
	factor := int64(asertRadix + ((195766423245049*frac +
		971821376*frac*frac +
		5127*frac*frac*frac +
		(1 << 47)) >> 48))

	nextTarget := new(big.Int).Mul(refTarget, big.NewInt(factor))

	// Drop the 16 fractional bits of the factor along with the shift.
	shifts -= 16
	switch {
	case shifts > 256:
		return new(big.Int).Set(powLimit)
	case shifts < -512:
		return big.NewInt(1)
	case shifts <= 0:
		nextTarget.Rsh(nextTarget, uint(-shifts))
	default:
		nextTarget.Lsh(nextTarget, uint(shifts))
	}

	if nextTarget.Sign() == 0 {
		return big.NewInt(1)
	}
	if nextTarget.Cmp(powLimit) > 0 {
		return new(big.Int).Set(powLimit)
	}
	return nextTarget
}
