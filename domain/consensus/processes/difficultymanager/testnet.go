package difficultymanager

import (
	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/wire"
)

// lastNonMinimalBits implements the test network exception of the EDA era.
// A stalled candidate may be mined at the proof of work limit. Any other
// candidate must carry the bits of the most recent ancestor that was not
// mined under that exception, looking no further back than the start of the
// retarget interval or genesis.
func (rc *ruleChecker) lastNonMinimalBits(candidate *wire.BlockHeader, parent *model.StoredHeader,
	store model.ChainStore) (uint32, error) {

	if rc.isStalled(candidate, parent) {
		return rc.params.PowLimitBits, nil
	}

	current := parent
	for current.Height != 0 && current.Height%rc.params.RetargetInterval != 0 &&
		current.Bits() == rc.params.PowLimitBits {

		var err error
		current, err = model.Parent(store, current)
		if err != nil {
			return 0, err
		}
	}
	return current.Bits(), nil
}
