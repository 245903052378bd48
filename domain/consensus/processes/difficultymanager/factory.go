package difficultymanager

import (
	"github.com/cashlabs/cashspv/domain/chaincfg"
	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/domain/consensus/processes/pastmediantimemanager"
	"github.com/cashlabs/cashspv/wire"
)

// RuleCheckerFactory selects the era a candidate header belongs to and
// builds the RuleCheckerPool that validates its difficulty bits. A factory
// only reads its parameters and is safe for concurrent use.
type RuleCheckerFactory struct {
	params      *chaincfg.Params
	checker     *ruleChecker
	regTestPool *RuleCheckerPool
}

// NewRuleCheckerFactory returns a RuleCheckerFactory for the given network.
func NewRuleCheckerFactory(params *chaincfg.Params) *RuleCheckerFactory {
	checker := &ruleChecker{
		params:                params,
		pastMedianTimeManager: pastmediantimemanager.New(pastmediantimemanager.DefaultWindowSize),
	}
	return &RuleCheckerFactory{
		params:  params,
		checker: checker,
		regTestPool: &RuleCheckerPool{
			era:     EraRegTest,
			rules:   []Rule{RuleRegTest},
			checker: checker,
		},
	}
}

// Params returns the network parameters of the factory.
func (f *RuleCheckerFactory) Params() *chaincfg.Params {
	return f.params
}

// SelectEra returns the era that governs the child of parent. ASERT is
// chosen by the median time past of parent, DAA by its height.
func (f *RuleCheckerFactory) SelectEra(parent *model.StoredHeader, store model.ChainStore) (Era, error) {
	if f.params.IsRegTest() {
		return EraRegTest, nil
	}
	if f.params.ASERTActivationTime != 0 {
		parentMedianTime, err := f.checker.pastMedianTimeManager.PastMedianTime(store, parent)
		if err != nil {
			return 0, err
		}
		if f.params.IsASERTEnabled(parentMedianTime) {
			return EraASERT, nil
		}
	}
	if parent.Height >= f.params.DAAUpdateHeight {
		return EraDAA, nil
	}
	return EraEDA, nil
}

// RuleCheckerPool builds the pool of rules for candidate, the child of
// parent.
func (f *RuleCheckerFactory) RuleCheckerPool(candidate *wire.BlockHeader, parent *model.StoredHeader,
	store model.ChainStore) (*RuleCheckerPool, error) {

	era, err := f.SelectEra(parent, store)
	if err != nil {
		return nil, err
	}

	var rules []Rule
	switch era {
	case EraRegTest:
		return f.regTestPool, nil
	case EraASERT:
		rules = f.asertRules(candidate, parent)
	case EraDAA:
		rules = f.daaRules(candidate, parent)
	default:
		rules = f.edaRules(parent)
	}
	log.Tracef("Height %d is in the %s era, rules %v", parent.Height+1, era, rules)

	return &RuleCheckerPool{era: era, rules: rules, checker: f.checker}, nil
}

// CheckDifficulty builds the pool for candidate and validates candidate
// against it.
func (f *RuleCheckerFactory) CheckDifficulty(candidate *wire.BlockHeader, parent *model.StoredHeader,
	store model.ChainStore) error {

	pool, err := f.RuleCheckerPool(candidate, parent, store)
	if err != nil {
		return err
	}
	return pool.Validate(candidate, parent, store)
}

// edaRules builds the rules in force before the DAA, including the
// emergency difficulty adjustment.
func (f *RuleCheckerFactory) edaRules(parent *model.StoredHeader) []Rule {
	if f.isDifficultyTransitionPoint(parent) {
		return []Rule{RuleDifficultyTransitionPoint}
	}
	if f.allowsMinDifficultyBlocks() {
		return []Rule{RuleLastNonMinimalDifficulty}
	}
	if parent.Bits() == f.params.PowLimitBits {
		return []Rule{RuleMinimalDifficultyNoChange}
	}
	return []Rule{RuleEmergencyDifficultyAdjustment}
}

func (f *RuleCheckerFactory) daaRules(candidate *wire.BlockHeader, parent *model.StoredHeader) []Rule {
	if f.allowsMinDifficultyBlocks() && f.checker.isStalled(candidate, parent) {
		return []Rule{RuleMinimalDifficulty}
	}
	return []Rule{RuleDAA}
}

func (f *RuleCheckerFactory) asertRules(candidate *wire.BlockHeader, parent *model.StoredHeader) []Rule {
	if f.allowsMinDifficultyBlocks() && f.checker.isStalled(candidate, parent) {
		return []Rule{RuleMinimalDifficulty}
	}
	return []Rule{RuleASERT}
}

// isDifficultyTransitionPoint reports whether the child of parent starts a
// new retarget interval.
func (f *RuleCheckerFactory) isDifficultyTransitionPoint(parent *model.StoredHeader) bool {
	return (parent.Height+1)%f.params.RetargetInterval == 0
}

func (f *RuleCheckerFactory) allowsMinDifficultyBlocks() bool {
	return f.params.IsTestNetwork() && f.params.AllowMinDifficultyBlocks
}
