package config

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/cashlabs/cashspv/domain/chaincfg"
	"github.com/cashlabs/cashspv/domain/consensus/utils/math"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Testnet            bool   `long:"testnet" description:"Use the test network (testnet3)"`
	Testnet4           bool   `long:"testnet4" description:"Use the testnet4 test network"`
	Scalenet           bool   `long:"scalenet" description:"Use the scaling test network"`
	Regtest            bool   `long:"regtest" description:"Use the regression test network"`
	Unittest           bool   `long:"unittest" description:"Use the unit test network"`
	OverrideParamsFile string `long:"override-params-file" description:"Overrides network params from a JSON file (allowed only on regtest and unittest)"`

	ActiveNetParams *chaincfg.Params
}

type overrideParamsConfig struct {
	PowLimit                    *string `json:"powLimit"`
	TargetSpacingSeconds        *int64  `json:"targetSpacingSeconds"`
	TargetTimespanSeconds       *int64  `json:"targetTimespanSeconds"`
	RetargetInterval            *uint32 `json:"retargetInterval"`
	DAAUpdateHeight             *uint32 `json:"daaUpdateHeight"`
	ASERTActivationTime         *int64  `json:"asertActivationTime"`
	ASERTAnchorHeight           *uint32 `json:"asertAnchorHeight"`
	ASERTAnchorBits             *uint32 `json:"asertAnchorBits"`
	ASERTAnchorParentTime       *int64  `json:"asertAnchorParentTime"`
	ASERTAnchorParentMedianTime *int64  `json:"asertAnchorParentMedianTime"`
	ASERTHalfLifeSeconds        *int64  `json:"asertHalfLifeSeconds"`
	MajorityEnforceBlockUpgrade *int    `json:"majorityEnforceBlockUpgrade"`
	MajorityRejectBlockOutdated *int    `json:"majorityRejectBlockOutdated"`
	MajorityWindow              *int    `json:"majorityWindow"`
	AllowMinDifficultyBlocks    *bool   `json:"allowMinDifficultyBlocks"`
	SkipProofOfWork             *bool   `json:"skipProofOfWork"`
}

// ResolveNetwork parses the network command line argument and sets ActiveNetParams accordingly.
// It returns error if more than one network was selected, or if the selected
// parameters, after any overrides, are inconsistent.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	// ActiveNetParams holds the selected network parameters. Default value is main-net.
	selected := &chaincfg.MainnetParams
	// Multiple networks can't be selected simultaneously.
	numNets := 0
	// Count number of network flags passed; assign active network params
	// while we're at it
	if networkFlags.Testnet {
		numNets++
		selected = &chaincfg.Testnet3Params
	}
	if networkFlags.Testnet4 {
		numNets++
		selected = &chaincfg.Testnet4Params
	}
	if networkFlags.Scalenet {
		numNets++
		selected = &chaincfg.ScalenetParams
	}
	if networkFlags.Regtest {
		numNets++
		selected = &chaincfg.RegtestParams
	}
	if networkFlags.Unittest {
		numNets++
		selected = &chaincfg.UnitTestParams
	}
	if numNets > 1 {
		message := "Multiple networks parameters (testnet, testnet4, scalenet, regtest, etc.) cannot be " +
			"used together. Please choose only one network"
		err := errors.Errorf(message)
		if parser != nil {
			fmt.Fprintln(os.Stderr, err)
			parser.WriteHelp(os.Stderr)
		}
		return err
	}

	// The registered parameters are shared, so overrides apply to a copy.
	params := *selected
	networkFlags.ActiveNetParams = &params

	err := networkFlags.overrideParams()
	if err != nil {
		return err
	}
	return networkFlags.ActiveNetParams.Validate()
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *chaincfg.Params {
	return networkFlags.ActiveNetParams
}

func (networkFlags *NetworkFlags) overrideParams() error {
	if networkFlags.OverrideParamsFile == "" {
		return nil
	}

	if !networkFlags.Regtest && !networkFlags.Unittest {
		return errors.Errorf("override-params-file is allowed only when using regtest or unittest")
	}

	overrideParamsFile, err := os.Open(networkFlags.OverrideParamsFile)
	if err != nil {
		return errors.WithStack(err)
	}
	defer overrideParamsFile.Close()

	decoder := json.NewDecoder(overrideParamsFile)
	decoder.DisallowUnknownFields()
	config := &overrideParamsConfig{}
	err = decoder.Decode(config)
	if err != nil {
		return errors.Wrapf(err, "couldn't parse %s", networkFlags.OverrideParamsFile)
	}

	return config.apply(networkFlags.ActiveNetParams)
}

func (config *overrideParamsConfig) apply(params *chaincfg.Params) error {
	if config.PowLimit != nil {
		powLimit, ok := big.NewInt(0).SetString(*config.PowLimit, 16)
		if !ok {
			return errors.Errorf("couldn't convert %s to big int", *config.PowLimit)
		}
		params.PowLimit = powLimit
		params.PowLimitBits = math.BigToCompact(powLimit)
	}

	if config.TargetSpacingSeconds != nil {
		params.TargetSpacing = time.Duration(*config.TargetSpacingSeconds) * time.Second
	}

	if config.TargetTimespanSeconds != nil {
		params.TargetTimespan = time.Duration(*config.TargetTimespanSeconds) * time.Second
	}

	if config.RetargetInterval != nil {
		params.RetargetInterval = *config.RetargetInterval
	}

	if config.DAAUpdateHeight != nil {
		params.DAAUpdateHeight = *config.DAAUpdateHeight
	}

	if config.ASERTActivationTime != nil {
		params.ASERTActivationTime = *config.ASERTActivationTime
	}

	if config.ASERTAnchorHeight != nil || config.ASERTAnchorBits != nil || config.ASERTAnchorParentTime != nil {
		if config.ASERTAnchorHeight == nil || config.ASERTAnchorBits == nil || config.ASERTAnchorParentTime == nil {
			return errors.Errorf("asertAnchorHeight, asertAnchorBits and asertAnchorParentTime " +
				"must be overridden together")
		}
		params.ASERTAnchor = &chaincfg.ASERTAnchor{
			Height:     *config.ASERTAnchorHeight,
			Bits:       *config.ASERTAnchorBits,
			ParentTime: *config.ASERTAnchorParentTime,
		}
		if config.ASERTAnchorParentMedianTime != nil {
			params.ASERTAnchor.ParentMedianTime = *config.ASERTAnchorParentMedianTime
		}
	} else if config.ASERTAnchorParentMedianTime != nil {
		return errors.Errorf("asertAnchorParentMedianTime requires asertAnchorHeight, asertAnchorBits " +
			"and asertAnchorParentTime")
	}

	if config.ASERTHalfLifeSeconds != nil {
		params.ASERTHalfLife = time.Duration(*config.ASERTHalfLifeSeconds) * time.Second
	}

	if config.MajorityEnforceBlockUpgrade != nil {
		params.MajorityEnforceBlockUpgrade = *config.MajorityEnforceBlockUpgrade
	}

	if config.MajorityRejectBlockOutdated != nil {
		params.MajorityRejectBlockOutdated = *config.MajorityRejectBlockOutdated
	}

	if config.MajorityWindow != nil {
		params.MajorityWindow = *config.MajorityWindow
	}

	if config.AllowMinDifficultyBlocks != nil {
		params.AllowMinDifficultyBlocks = *config.AllowMinDifficultyBlocks
	}

	if config.SkipProofOfWork != nil {
		params.SkipProofOfWork = *config.SkipProofOfWork
	}

	return nil
}
