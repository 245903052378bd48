package difficultymanager

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/domain/consensus/ruleerrors"
	"github.com/cashlabs/cashspv/domain/consensus/utils/math"
	"github.com/cashlabs/cashspv/wire"
)

// RuleCheckerPool is the ordered list of rules that apply to one candidate
// header. Pools are built by a RuleCheckerFactory and hold no state of
// their own beyond the rule list.
type RuleCheckerPool struct {
	era     Era
	rules   []Rule
	checker *ruleChecker
}

// Era returns the era the pool was built for.
func (p *RuleCheckerPool) Era() Era {
	return p.era
}

// Rules returns the rules of the pool in evaluation order.
func (p *RuleCheckerPool) Rules() []Rule {
	rules := make([]Rule, len(p.rules))
	copy(rules, p.rules)
	return rules
}

// Validate applies every rule of the pool to candidate, whose parent is the
// stored header parent. The first failing rule stops validation. Rule
// violations are returned as ruleerrors.RuleError; anything else is a store
// failure.
func (p *RuleCheckerPool) Validate(candidate *wire.BlockHeader, parent *model.StoredHeader,
	store model.ChainStore) error {

	for _, rule := range p.rules {
		expectedBits, checked, err := p.checker.expectedBits(rule, candidate, parent, store)
		if err != nil {
			return err
		}
		if !checked {
			log.Tracef("Rule %s accepts bits %08x at height %d", rule, candidate.Bits, parent.Height+1)
			continue
		}

		err = p.checker.checkCandidateBits(candidate.Bits)
		if err != nil {
			return err
		}
		if candidate.Bits != expectedBits {
			log.Debugf("Rule %s rejects bits %08x at height %d, expected %08x",
				rule, candidate.Bits, parent.Height+1, expectedBits)
			return ruleerrors.NewErrUnexpectedDifficulty(expectedBits, candidate.Bits,
				fmt.Sprintf("%s rule at height %d", rule, parent.Height+1))
		}
		log.Tracef("Rule %s accepts bits %08x at height %d", rule, candidate.Bits, parent.Height+1)
	}
	return nil
}

// ExpectedBits returns the bits the pool's last checking rule mandates for
// candidate. ok is false when no rule of the pool constrains the bits.
func (p *RuleCheckerPool) ExpectedBits(candidate *wire.BlockHeader, parent *model.StoredHeader,
	store model.ChainStore) (bits uint32, ok bool, err error) {

	for _, rule := range p.rules {
		ruleBits, checked, ruleErr := p.checker.expectedBits(rule, candidate, parent, store)
		if ruleErr != nil {
			return 0, false, ruleErr
		}
		if checked {
			bits, ok = ruleBits, true
		}
	}
	return bits, ok, nil
}

// checkCandidateBits makes sure bits decode to a target in [1, PowLimit].
func (rc *ruleChecker) checkCandidateBits(bits uint32) error {
	target, err := math.CompactToTarget(bits)
	if errors.Is(err, math.ErrNegativeCompact) {
		return errors.Wrapf(ruleerrors.ErrNegativeTarget, "bits %08x", bits)
	}
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrTargetOutOfRange, "bits %08x: %s", bits, err)
	}
	if target.Sign() <= 0 || target.Cmp(rc.params.PowLimit) > 0 {
		return errors.Wrapf(ruleerrors.ErrTargetOutOfRange, "bits %08x decode to a target outside "+
			"of [1, %064x]", bits, rc.params.PowLimit)
	}
	return nil
}
