package testutils

import (
	"testing"

	"github.com/cashlabs/cashspv/domain/chaincfg"
)

// ForAllNets runs the passed testFunc with all available networks.
// If skipPow is set, proof of work checks are disabled on the copy of
// the parameters handed to testFunc.
func ForAllNets(t *testing.T, skipPow bool, testFunc func(*testing.T, *chaincfg.Params)) {
	allParams := []chaincfg.Params{
		chaincfg.MainnetParams,
		chaincfg.Testnet3Params,
		chaincfg.Testnet4Params,
		chaincfg.ScalenetParams,
		chaincfg.RegtestParams,
		chaincfg.UnitTestParams,
	}

	for _, params := range allParams {
		params := params
		t.Run(params.Name, func(t *testing.T) {
			t.Parallel()
			params.SkipProofOfWork = params.SkipProofOfWork || skipPow
			testFunc(t, &params)
		})
	}
}
