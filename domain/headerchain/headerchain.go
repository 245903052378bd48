package headerchain

import (
	"math/big"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"

	"github.com/cashlabs/cashspv/domain/chaincfg"
	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/domain/consensus/processes/difficultymanager"
	"github.com/cashlabs/cashspv/domain/consensus/processes/versiontally"
	"github.com/cashlabs/cashspv/domain/consensus/ruleerrors"
	"github.com/cashlabs/cashspv/wire"
)

// HeaderChain extends a header chain kept in a HeaderStore. Every header is
// checked for proof of work, an outdated version and its difficulty bits
// before it is stored, and the tip follows the chain with the most work.
//
// ProcessHeader and ImportTrusted are serialized; CheckCandidates and Tip may
// run concurrently with them.
type HeaderChain struct {
	params            *chaincfg.Params
	store             model.HeaderStore
	difficultyManager model.DifficultyManager
	metrics           *Metrics

	lock sync.Mutex

	// tally holds the versions of tallyTip and its ancestors.
	tally    *versiontally.VersionTally
	tallyTip *chainhash.Hash
}

// AcceptedHeader is the result of accepting a header into the chain.
type AcceptedHeader struct {
	Header *model.StoredHeader

	// Flags are the validation flags that apply to the block's contents.
	Flags versiontally.VerifyFlags

	// IsNewTip is true when the header became the tip of the chain.
	IsNewTip bool
}

// Option configures a HeaderChain.
type Option func(*HeaderChain)

// WithMetrics makes the HeaderChain report to metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(hc *HeaderChain) {
		hc.metrics = metrics
	}
}

// WithDifficultyManager replaces the difficulty rules of the network.
func WithDifficultyManager(difficultyManager model.DifficultyManager) Option {
	return func(hc *HeaderChain) {
		hc.difficultyManager = difficultyManager
	}
}

// New returns a HeaderChain for the network described by params, backed by
// store. An empty store is seeded with the network's genesis header, if it
// has one. Otherwise the chain must be bootstrapped with ImportTrusted.
func New(params *chaincfg.Params, store model.HeaderStore, options ...Option) (*HeaderChain, error) {
	err := params.Validate()
	if err != nil {
		return nil, err
	}

	hc := &HeaderChain{
		params:            params,
		store:             store,
		difficultyManager: difficultymanager.NewRuleCheckerFactory(params),
		tally:             versiontally.New(params.MajorityWindow),
	}
	for _, option := range options {
		option(hc)
	}

	tip, err := store.Tip()
	if model.IsNotFoundError(err) {
		if params.GenesisHeader == nil {
			log.Infof("No headers stored for %s, waiting for a trusted checkpoint", params.Name)
			return hc, nil
		}
		tip = model.NewGenesisStoredHeader(params.GenesisHeader)
		err = hc.storeAndSetTip(tip)
		if err != nil {
			return nil, err
		}
		log.Infof("Initialized the %s header chain at genesis %s", params.Name, tip.Hash())
	} else if err != nil {
		return nil, err
	}

	err = hc.resetTally(tip)
	if err != nil {
		return nil, err
	}
	hc.metrics.setTip(tip)
	log.Infof("Header chain tip %s at height %d", tip.Hash(), tip.Height)

	return hc, nil
}

// Params returns the network parameters of the chain.
func (hc *HeaderChain) Params() *chaincfg.Params {
	return hc.params
}

// Store returns the store backing the chain.
func (hc *HeaderChain) Store() model.HeaderStore {
	return hc.store
}

// Tip returns the header at the tip of the chain.
func (hc *HeaderChain) Tip() (*model.StoredHeader, error) {
	return hc.store.Tip()
}

// ImportTrusted stores header as a trusted checkpoint at the given height
// with the given chain work. The checkpoint's ancestors are never
// requested, so its descendants can be validated once enough of them are
// stored for the difficulty rules of the network.
func (hc *HeaderChain) ImportTrusted(header *wire.BlockHeader, height uint32, chainWork *big.Int) (*model.StoredHeader, error) {
	hc.lock.Lock()
	defer hc.lock.Unlock()

	if chainWork == nil || chainWork.Sign() <= 0 {
		return nil, errors.Wrapf(ruleerrors.ErrUntrustedCheckpoint, "checkpoint at height %d has no chain work", height)
	}

	stored := model.NewCheckpointStoredHeader(header, height, chainWork)
	tip, err := hc.store.Tip()
	if err != nil && !model.IsNotFoundError(err) {
		return nil, err
	}
	if tip != nil && !stored.MoreWorkThan(tip) {
		err = hc.store.Put(stored)
		if err != nil {
			return nil, err
		}
		log.Infof("Imported trusted header %s at height %d", stored.Hash(), height)
		return stored, nil
	}

	err = hc.storeAndSetTip(stored)
	if err != nil {
		return nil, err
	}
	err = hc.resetTally(stored)
	if err != nil {
		return nil, err
	}
	hc.metrics.setTip(stored)
	log.Infof("Imported trusted header %s at height %d as the new tip", stored.Hash(), height)

	return stored, nil
}

// AppendTrusted stores header on top of its stored parent without
// validating it. It lets a checkpoint bootstrap import the ancestors the
// difficulty rules need before regular validation can take over.
func (hc *HeaderChain) AppendTrusted(header *wire.BlockHeader) (*model.StoredHeader, error) {
	hc.lock.Lock()
	defer hc.lock.Unlock()

	parent, err := hc.lookupParent(header)
	if err != nil {
		return nil, err
	}
	stored := model.NewStoredHeader(header, parent)
	err = hc.store.Put(stored)
	if err != nil {
		return nil, err
	}
	if hc.tallyTip != nil && *hc.tallyTip == *parent.Hash() {
		hc.tally.Add(header.Version)
		hc.tallyTip = stored.Hash()
	}
	_, err = hc.maybeSetTip(stored)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (hc *HeaderChain) storeAndSetTip(header *model.StoredHeader) error {
	err := hc.store.Put(header)
	if err != nil {
		return err
	}
	return hc.store.SetTip(header.Hash())
}

// resetTally rebuilds the version tally from tip and its ancestors.
func (hc *HeaderChain) resetTally(tip *model.StoredHeader) error {
	err := hc.tally.Initialize(hc.store, tip)
	if err != nil {
		return err
	}
	hc.tallyTip = tip.Hash()
	return nil
}

// tallyFor makes the tally describe parent and its ancestors, rebuilding it
// when parent is not the last header the tally saw.
func (hc *HeaderChain) tallyFor(parent *model.StoredHeader) (*versiontally.VersionTally, error) {
	if hc.tallyTip == nil || *hc.tallyTip != *parent.Hash() {
		log.Debugf("Rebuilding the version tally at %s, height %d", parent.Hash(), parent.Height)
		err := hc.resetTally(parent)
		if err != nil {
			return nil, err
		}
	}
	return hc.tally, nil
}
