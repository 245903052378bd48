package headerchain

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cashlabs/cashspv/domain/consensus/ruleerrors"
	"github.com/cashlabs/cashspv/wire"
)

// DefaultCandidateConcurrency is the number of candidates CheckCandidates
// validates at the same time when no limit is given.
const DefaultCandidateConcurrency = 8

// CheckCandidates validates independent candidate headers whose parents are
// already stored, without storing them. The returned slice holds the rule
// violation of each candidate, or nil for a valid one. Any other error
// aborts the check and is returned on its own.
func (hc *HeaderChain) CheckCandidates(ctx context.Context, candidates []*wire.BlockHeader,
	concurrency int) ([]error, error) {

	if concurrency <= 0 {
		concurrency = DefaultCandidateConcurrency
	}

	results := make([]error, len(candidates))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for i, candidate := range candidates {
		if groupCtx.Err() != nil {
			break
		}

		i, candidate := i, candidate
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			err := hc.checkCandidate(candidate)
			if ruleerrors.IsRuleError(err) {
				results[i] = err
				return nil
			}
			return err
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (hc *HeaderChain) checkCandidate(candidate *wire.BlockHeader) error {
	parent, err := hc.lookupParent(candidate)
	if err != nil {
		return err
	}
	err = hc.checkProofOfWork(candidate)
	if err != nil {
		return err
	}
	return hc.difficultyManager.CheckDifficulty(candidate, parent, hc.store)
}
