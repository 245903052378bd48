package difficultymanager

import "fmt"

// Era is a span of chain history governed by one retargeting algorithm.
type Era uint8

// The eras, in activation order, plus the regression test network which
// never checks difficulty.
const (
	EraEDA Era = iota
	EraDAA
	EraASERT
	EraRegTest
)

var eraStrings = [...]string{
	EraEDA:     "EDA",
	EraDAA:     "DAA",
	EraASERT:   "ASERT",
	EraRegTest: "RegTest",
}

func (e Era) String() string {
	if int(e) < len(eraStrings) {
		return eraStrings[e]
	}
	return fmt.Sprintf("Era(%d)", uint8(e))
}

// Rule is a single difficulty check. A RuleCheckerPool applies an ordered
// list of Rules to one candidate header.
type Rule uint8

// The difficulty rules.
const (
	// RuleRegTest accepts any bits.
	RuleRegTest Rule = iota

	// RuleDifficultyTransitionPoint is the classic retarget over the last
	// retarget interval, limited to a factor of four either way.
	RuleDifficultyTransitionPoint

	// RuleLastNonMinimalDifficulty is the test network exception of the
	// EDA era: a stalled candidate must carry the minimum difficulty,
	// any other candidate the bits of the last block mined at real
	// difficulty.
	RuleLastNonMinimalDifficulty

	// RuleMinimalDifficultyNoChange requires the minimum difficulty once
	// the parent is already at it.
	RuleMinimalDifficultyNoChange

	// RuleEmergencyDifficultyAdjustment lowers the difficulty by a fifth
	// when the last six blocks took twelve hours or more, and otherwise
	// keeps the parent's bits.
	RuleEmergencyDifficultyAdjustment

	// RuleMinimalDifficulty is the test network exception of the DAA and
	// ASERT eras: a stalled candidate must carry the minimum difficulty.
	RuleMinimalDifficulty

	// RuleDAA is the windowed cw-144 algorithm.
	RuleDAA

	// RuleASERT is the aserti3-2d exponential algorithm.
	RuleASERT
)

var ruleStrings = [...]string{
	RuleRegTest:                       "RegTest",
	RuleDifficultyTransitionPoint:     "DifficultyTransitionPoint",
	RuleLastNonMinimalDifficulty:      "LastNonMinimalDifficulty",
	RuleMinimalDifficultyNoChange:     "MinimalDifficultyNoChange",
	RuleEmergencyDifficultyAdjustment: "EmergencyDifficultyAdjustment",
	RuleMinimalDifficulty:             "MinimalDifficulty",
	RuleDAA:                           "DAA",
	RuleASERT:                         "ASERT",
}

func (r Rule) String() string {
	if int(r) < len(ruleStrings) {
		return ruleStrings[r]
	}
	return fmt.Sprintf("Rule(%d)", uint8(r))
}
