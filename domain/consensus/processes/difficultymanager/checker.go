package difficultymanager

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/cashlabs/cashspv/domain/chaincfg"
	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/wire"
)

// ruleChecker computes the bits each Rule mandates. It is shared by every
// pool of a factory. Apart from the resolved ASERT anchor time it only reads
// its fields.
type ruleChecker struct {
	params                *chaincfg.Params
	pastMedianTimeManager model.PastMedianTimeManager

	anchorLock          sync.RWMutex
	anchorMedianTime    int64
	anchorMedianTimeSet bool
}

// expectedBits returns the bits rule mandates for candidate, the child of
// parent. checked is false for rules that accept any bits.
func (rc *ruleChecker) expectedBits(rule Rule, candidate *wire.BlockHeader, parent *model.StoredHeader,
	store model.ChainStore) (bits uint32, checked bool, err error) {

	switch rule {
	case RuleRegTest:
		return 0, false, nil
	case RuleDifficultyTransitionPoint:
		bits, err = rc.transitionPointBits(parent, store)
	case RuleLastNonMinimalDifficulty:
		bits, err = rc.lastNonMinimalBits(candidate, parent, store)
	case RuleMinimalDifficultyNoChange, RuleMinimalDifficulty:
		bits = rc.params.PowLimitBits
	case RuleEmergencyDifficultyAdjustment:
		bits, err = rc.emergencyAdjustmentBits(parent, store)
	case RuleDAA:
		bits, err = rc.daaBits(parent, store)
	case RuleASERT:
		bits, err = rc.asertBits(parent, store)
	default:
		return 0, false, errors.Errorf("unknown difficulty rule %s", rule)
	}
	if err != nil {
		return 0, false, err
	}
	return bits, true, nil
}

// isStalled reports whether candidate arrives more than two target spacings
// after parent.
func (rc *ruleChecker) isStalled(candidate *wire.BlockHeader, parent *model.StoredHeader) bool {
	return candidate.Timestamp > parent.Timestamp()+2*rc.params.TargetSpacingSeconds()
}
