package headerchain

import (
	"github.com/pkg/errors"

	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/domain/consensus/model/pow"
	"github.com/cashlabs/cashspv/domain/consensus/processes/versiontally"
	"github.com/cashlabs/cashspv/domain/consensus/ruleerrors"
	"github.com/cashlabs/cashspv/infrastructure/logger"
	"github.com/cashlabs/cashspv/wire"
)

// ProcessHeader validates header against the chain and stores it. Headers
// that violate a consensus rule are rejected with a ruleerrors.RuleError;
// any other error comes from the store.
func (hc *HeaderChain) ProcessHeader(header *wire.BlockHeader) (*AcceptedHeader, error) {
	hc.lock.Lock()
	defer hc.lock.Unlock()

	accepted, err := hc.processHeader(header)
	if err != nil {
		hc.metrics.reject(err)
		if ruleerrors.IsRuleError(err) {
			log.Warnf("Rejected header %s: %s", header.BlockHash(), err)
		}
		return nil, err
	}
	hc.metrics.accept(accepted)
	return accepted, nil
}

// ProcessHeaders processes headers in order, stopping at the first
// rejected header.
func (hc *HeaderChain) ProcessHeaders(headers []*wire.BlockHeader) ([]*AcceptedHeader, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ProcessHeaders")
	defer onEnd()

	accepted := make([]*AcceptedHeader, 0, len(headers))
	for i, header := range headers {
		acceptedHeader, err := hc.ProcessHeader(header)
		if err != nil {
			return accepted, errors.Wrapf(err, "header %d of %d", i+1, len(headers))
		}
		accepted = append(accepted, acceptedHeader)
	}
	return accepted, nil
}

func (hc *HeaderChain) processHeader(header *wire.BlockHeader) (*AcceptedHeader, error) {
	hash := header.BlockHash()
	exists, err := hc.store.Has(&hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Wrapf(ruleerrors.ErrDuplicateBlock, "header %s is already stored", hash)
	}

	parent, err := hc.lookupParent(header)
	if err != nil {
		return nil, err
	}

	err = hc.checkProofOfWork(header)
	if err != nil {
		return nil, err
	}

	tally, err := hc.tallyFor(parent)
	if err != nil {
		return nil, err
	}
	err = versiontally.CheckOutdatedVersion(hc.params, header, tally)
	if err != nil {
		return nil, err
	}
	flags := versiontally.BlockVerificationFlags(hc.params, header, tally)

	err = hc.difficultyManager.CheckDifficulty(header, parent, hc.store)
	if err != nil {
		return nil, err
	}

	stored := model.NewStoredHeader(header, parent)
	err = hc.store.Put(stored)
	if err != nil {
		return nil, err
	}
	tally.Add(header.Version)
	hc.tallyTip = stored.Hash()

	isNewTip, err := hc.maybeSetTip(stored)
	if err != nil {
		return nil, err
	}
	log.Debugf("Accepted header %s at height %d (new tip: %t, flags: %s)",
		stored.Hash(), stored.Height, isNewTip, flags)

	return &AcceptedHeader{Header: stored, Flags: flags, IsNewTip: isNewTip}, nil
}

func (hc *HeaderChain) lookupParent(header *wire.BlockHeader) (*model.StoredHeader, error) {
	parent, err := hc.store.Get(&header.PrevBlock)
	if model.IsNotFoundError(err) {
		return nil, ruleerrors.NewErrMissingParent(&header.PrevBlock)
	}
	return parent, err
}

// checkProofOfWork makes sure the header hash is at or below the target its
// bits encode. The bits themselves are checked by the difficulty rules.
func (hc *HeaderChain) checkProofOfWork(header *wire.BlockHeader) error {
	if hc.params.SkipProofOfWork {
		return nil
	}
	if !pow.CheckProofOfWorkByBits(header) {
		return errors.Wrapf(ruleerrors.ErrInvalidPoW, "block hash %s is higher than the target "+
			"of bits %08x", header.BlockHash(), header.Bits)
	}
	return nil
}

func (hc *HeaderChain) maybeSetTip(header *model.StoredHeader) (bool, error) {
	tip, err := hc.store.Tip()
	if err != nil && !model.IsNotFoundError(err) {
		return false, err
	}
	if tip != nil && !header.MoreWorkThan(tip) {
		return false, nil
	}

	err = hc.store.SetTip(header.Hash())
	if err != nil {
		return false, err
	}
	if tip != nil && *header.PrevHash() != *tip.Hash() {
		log.Infof("Reorganized the chain tip from %s at height %d to %s at height %d",
			tip.Hash(), tip.Height, header.Hash(), header.Height)
	}
	hc.metrics.setTip(header)
	return true, nil
}
