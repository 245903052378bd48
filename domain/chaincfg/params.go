// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"

	utilsMath "github.com/cashlabs/cashspv/domain/consensus/utils/math"
	"github.com/cashlabs/cashspv/wire"
)

// Network identities. They are the stable names by which networks are
// looked up and the values carried in Params.ID.
const (
	MainnetID  = "org.bitcoincash.production"
	TestnetID  = "org.bitcoincash.test"
	Testnet4ID = "org.bitcoincash.test4"
	ScalenetID = "org.bitcoincash.scalenet"
	RegtestID  = "org.bitcoincash.regtest"
	UnitTestID = "org.bitcoincashj.unittest"
)

// These variables are the chain proof-of-work limit parameters for each
// default network.
var (
	// bigOne is 1 represented as a big.Int. It is defined here to avoid
	// the overhead of creating it multiple times.
	bigOne = big.NewInt(1)

	// mainPowLimit is the highest proof of work value a block can have for
	// the main network and the public test networks. It is the value
	// 0x00000000ffff0000000000000000000000000000000000000000000000000000,
	// the target encoded by 0x1d00ffff.
	mainPowLimit = new(big.Int).Lsh(big.NewInt(0xffff), 208)

	// regressionPowLimit is the highest proof of work value a block can
	// have for the regression test network. It is the value 2^255 - 1,
	// which only survives the compact encoding as 0x207fffff.
	regressionPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)
)

const (
	targetSpacing    = 10 * time.Minute
	targetTimespan   = 14 * 24 * time.Hour
	retargetInterval = uint32(targetTimespan / targetSpacing)

	// november2018ActivationTime is the median time past at which the
	// CHECKDATASIG upgrade activated on every network.
	november2018ActivationTime = 1542300000

	// bip16EnforceTime is the block time from which pay-to-script-hash
	// rules are enforced.
	bip16EnforceTime = 1333238400

	// asertActivationTime is the median time past of the November 2020
	// upgrade, from which the ASERT retarget is in force.
	asertActivationTime = 1605441600
)

// ASERTAnchor is the block that the ASERT retarget schedules every later
// target from.
type ASERTAnchor struct {
	// Height is the height of the anchor block.
	Height uint32

	// Bits is the compact target of the anchor block.
	Bits uint32

	// ParentTime is the timestamp of the anchor block's parent. It
	// identifies that block on a chain.
	ParentTime int64

	// ParentMedianTime is the median time past of the anchor block's
	// parent, the time the ASERT schedule is measured from. Zero means it
	// is computed from the anchor's parent on the chain being validated.
	ParentMedianTime int64
}

// Params defines a Bitcoin Cash network by its parameters. These parameters
// are read by the difficulty engine, the version tally and the header chain;
// they are never modified once a network is registered.
type Params struct {
	// ID is the stable network identity, e.g. "org.bitcoincash.production".
	ID string

	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network, in the
	// order they appear on the wire.
	Net uint32

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// GenesisHeader is the first header of the chain. Networks without one
	// start from a trusted checkpoint.
	GenesisHeader *wire.BlockHeader

	// GenesisHash is the hash of GenesisHeader, nil when it is absent.
	GenesisHash *chainhash.Hash

	// PowLimit defines the highest allowed proof of work value for a block
	// as a uint256.
	PowLimit *big.Int

	// PowLimitBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowLimitBits uint32

	// TargetSpacing is the desired amount of time to generate each block.
	TargetSpacing time.Duration

	// TargetTimespan is the desired amount of time that should elapse
	// before the block difficulty requirement is examined to determine how
	// it should be changed in order to maintain the desired block
	// generation rate under the classic retarget.
	TargetTimespan time.Duration

	// RetargetInterval is the number of blocks between classic retargets.
	RetargetInterval uint32

	// UAHFHeight is the height of the first block on the Bitcoin Cash side
	// of the August 2017 split.
	UAHFHeight uint32

	// DAAUpdateHeight is the parent height from which the windowed DAA is
	// in force.
	DAAUpdateHeight uint32

	// ASERTActivationTime is the parent median time past from which the
	// ASERT retarget is in force. Zero disables ASERT.
	ASERTActivationTime int64

	// ASERTAnchor is the ASERT reference block. It must be set when
	// ASERTActivationTime is not zero.
	ASERTAnchor *ASERTAnchor

	// ASERTHalfLife is the time it takes the ASERT target to double (or
	// halve) when blocks run late (or early) on schedule.
	ASERTHalfLife time.Duration

	// These fields gate soft-fork validation flags by block version
	// majority.
	//
	// MajorityEnforceBlockUpgrade is the number of blocks in the last
	// MajorityWindow that must carry a new version before its rules are
	// enforced on new-version blocks.
	//
	// MajorityRejectBlockOutdated is the number of blocks in the last
	// MajorityWindow that must carry a new version before older versions
	// are rejected.
	//
	// MajorityWindow is the number of most recent blocks inspected.
	MajorityEnforceBlockUpgrade int
	MajorityRejectBlockOutdated int
	MajorityWindow              int

	// BIP16Time is the block time from which pay-to-script-hash is enforced.
	BIP16Time int64

	// CheckDataSigActivationTime is the block time from which CHECKDATASIG
	// is enforced.
	CheckDataSigActivationTime int64

	// AllowMinDifficultyBlocks defines whether the network should allow
	// minimum difficulty blocks when blocks stall. It only has an effect on
	// the public test networks.
	AllowMinDifficultyBlocks bool

	// SkipProofOfWork disables the header hash check against its target.
	SkipProofOfWork bool
}

// IsTestNetwork reports whether p is one of the public test networks on
// which the minimum difficulty exceptions may apply.
func (p *Params) IsTestNetwork() bool {
	switch p.ID {
	case TestnetID, Testnet4ID, ScalenetID:
		return true
	}
	return false
}

// IsRegTest reports whether p is the regression test network, which accepts
// any difficulty.
func (p *Params) IsRegTest() bool {
	return p.ID == RegtestID
}

// IsASERTEnabled reports whether a block whose parent has the given median
// time past is governed by ASERT.
func (p *Params) IsASERTEnabled(parentMedianTime int64) bool {
	return p.ASERTActivationTime != 0 && parentMedianTime >= p.ASERTActivationTime
}

// TargetSpacingSeconds returns TargetSpacing in whole seconds.
func (p *Params) TargetSpacingSeconds() int64 {
	return int64(p.TargetSpacing / time.Second)
}

// TargetTimespanSeconds returns TargetTimespan in whole seconds.
func (p *Params) TargetTimespanSeconds() int64 {
	return int64(p.TargetTimespan / time.Second)
}

// ASERTHalfLifeSeconds returns ASERTHalfLife in whole seconds.
func (p *Params) ASERTHalfLifeSeconds() int64 {
	return int64(p.ASERTHalfLife / time.Second)
}

// MainnetParams defines the network parameters for the main Bitcoin Cash
// network.
var MainnetParams = Params{
	ID:          MainnetID,
	Name:        "mainnet",
	Net:         0xe3e1f3e8,
	DefaultPort: "8333",

	// Chain parameters
	GenesisHeader:    &genesisHeader,
	GenesisHash:      &genesisHash,
	PowLimit:         mainPowLimit,
	PowLimitBits:     0x1d00ffff,
	TargetSpacing:    targetSpacing,
	TargetTimespan:   targetTimespan,
	RetargetInterval: retargetInterval,

	// Hard fork activations
	UAHFHeight:          478559,
	DAAUpdateHeight:     504031,
	ASERTActivationTime: asertActivationTime,
	ASERTAnchor: &ASERTAnchor{
		Height:     661647,
		Bits:       0x1804dafe,
		ParentTime: 1605447844,
	},
	ASERTHalfLife: 2 * 24 * time.Hour,

	// Block version majorities
	MajorityEnforceBlockUpgrade: 750,
	MajorityRejectBlockOutdated: 950,
	MajorityWindow:              1000,

	BIP16Time:                  bip16EnforceTime,
	CheckDataSigActivationTime: november2018ActivationTime,
}

// Testnet3Params defines the network parameters for the version 3 test
// network.
var Testnet3Params = Params{
	ID:          TestnetID,
	Name:        "testnet3",
	Net:         0xf4e5f3f4,
	DefaultPort: "18333",

	// Chain parameters
	GenesisHeader:    &testnet3GenesisHeader,
	GenesisHash:      &testnet3GenesisHash,
	PowLimit:         mainPowLimit,
	PowLimitBits:     0x1d00ffff,
	TargetSpacing:    targetSpacing,
	TargetTimespan:   targetTimespan,
	RetargetInterval: retargetInterval,

	// Hard fork activations
	UAHFHeight:          1155876,
	DAAUpdateHeight:     1188697,
	ASERTActivationTime: asertActivationTime,
	ASERTAnchor: &ASERTAnchor{
		Height:     1421481,
		Bits:       0x1d00ffff,
		ParentTime: 1605445400,
	},
	ASERTHalfLife: time.Hour,

	// Block version majorities
	MajorityEnforceBlockUpgrade: 51,
	MajorityRejectBlockOutdated: 75,
	MajorityWindow:              100,

	BIP16Time:                  bip16EnforceTime,
	CheckDataSigActivationTime: november2018ActivationTime,
	AllowMinDifficultyBlocks:   true,
}

// Testnet4Params defines the network parameters for the version 4 test
// network. It has no hard-coded genesis header and is bootstrapped from a
// trusted checkpoint.
var Testnet4Params = Params{
	ID:          Testnet4ID,
	Name:        "testnet4",
	Net:         0xe2b7daaf,
	DefaultPort: "28333",

	// Chain parameters
	PowLimit:         mainPowLimit,
	PowLimitBits:     0x1d00ffff,
	TargetSpacing:    targetSpacing,
	TargetTimespan:   targetTimespan,
	RetargetInterval: retargetInterval,

	// Hard fork activations
	UAHFHeight:          6,
	DAAUpdateHeight:     3000,
	ASERTActivationTime: asertActivationTime,
	ASERTAnchor: &ASERTAnchor{
		Height:     16844,
		Bits:       0x1d00ffff,
		ParentTime: 1605451779,
	},
	ASERTHalfLife: time.Hour,

	// Block version majorities
	MajorityEnforceBlockUpgrade: 51,
	MajorityRejectBlockOutdated: 75,
	MajorityWindow:              100,

	BIP16Time:                  bip16EnforceTime,
	CheckDataSigActivationTime: november2018ActivationTime,
	AllowMinDifficultyBlocks:   true,
}

// ScalenetParams defines the network parameters for the scaling test
// network. Like testnet4 it is bootstrapped from a trusted checkpoint.
var ScalenetParams = Params{
	ID:          ScalenetID,
	Name:        "scalenet",
	Net:         0xc3afe1a2,
	DefaultPort: "38333",

	// Chain parameters
	PowLimit:         mainPowLimit,
	PowLimitBits:     0x1d00ffff,
	TargetSpacing:    targetSpacing,
	TargetTimespan:   targetTimespan,
	RetargetInterval: retargetInterval,

	// Hard fork activations
	UAHFHeight:          6,
	DAAUpdateHeight:     3000,
	ASERTActivationTime: asertActivationTime,
	ASERTAnchor: &ASERTAnchor{
		Height:     16868,
		Bits:       0x1d00ffff,
		ParentTime: 1605452424,
	},
	ASERTHalfLife: 2 * 24 * time.Hour,

	// Block version majorities
	MajorityEnforceBlockUpgrade: 51,
	MajorityRejectBlockOutdated: 75,
	MajorityWindow:              100,

	BIP16Time:                  bip16EnforceTime,
	CheckDataSigActivationTime: november2018ActivationTime,
	AllowMinDifficultyBlocks:   true,
}

// RegtestParams defines the network parameters for the regression test
// network. Difficulty is never checked on it.
var RegtestParams = Params{
	ID:          RegtestID,
	Name:        "regtest",
	Net:         0xdab5bffa,
	DefaultPort: "18444",

	// Chain parameters
	GenesisHeader:    &regtestGenesisHeader,
	GenesisHash:      &regtestGenesisHash,
	PowLimit:         regressionPowLimit,
	PowLimitBits:     0x207fffff,
	TargetSpacing:    targetSpacing,
	TargetTimespan:   targetTimespan,
	RetargetInterval: retargetInterval,

	// Block version majorities
	MajorityEnforceBlockUpgrade: 750,
	MajorityRejectBlockOutdated: 950,
	MajorityWindow:              1000,

	BIP16Time:                  bip16EnforceTime,
	CheckDataSigActivationTime: november2018ActivationTime,
	AllowMinDifficultyBlocks:   true,
}

// UnitTestParams defines a small network for unit tests. It stays in the
// EDA era forever, retargets every 10 blocks and does not check proof of
// work, so test chains can be built without mining.
var UnitTestParams = Params{
	ID:          UnitTestID,
	Name:        "unittest",
	Net:         0x0b110907,
	DefaultPort: "18333",

	// Chain parameters
	GenesisHeader:    &unitTestGenesisHeader,
	GenesisHash:      &unitTestGenesisHash,
	PowLimit:         mainPowLimit,
	PowLimitBits:     0x1d00ffff,
	TargetSpacing:    targetSpacing,
	TargetTimespan:   200000000 * time.Second,
	RetargetInterval: 10,

	// Hard fork activations
	DAAUpdateHeight: math.MaxUint32,
	ASERTHalfLife:   time.Hour,

	// Block version majorities
	MajorityEnforceBlockUpgrade: 3,
	MajorityRejectBlockOutdated: 4,
	MajorityWindow:              7,

	BIP16Time:                  bip16EnforceTime,
	CheckDataSigActivationTime: november2018ActivationTime,
	AllowMinDifficultyBlocks:   true,
	SkipProofOfWork:            true,
}

// ErrInconsistentParams describes network parameters whose fields contradict
// one another, such as an ASERT anchor that precedes the DAA activation.
var ErrInconsistentParams = errors.New("inconsistent network parameters")

// Validate checks that the parameters describe a coherent network: positive
// timing constants, a proof of work limit that matches its compact form,
// era activations in EDA, DAA, ASERT order, and sane majority thresholds.
func (p *Params) Validate() error {
	inconsistent := func(format string, args ...interface{}) error {
		return errors.Wrapf(ErrInconsistentParams, "%s: "+format, append([]interface{}{p.Name}, args...)...)
	}

	if p.ID == "" {
		return inconsistent("missing network id")
	}
	if p.PowLimit == nil || p.PowLimit.Sign() <= 0 {
		return inconsistent("proof of work limit must be positive")
	}
	if p.PowLimit.BitLen() > 256 {
		return inconsistent("proof of work limit does not fit in 256 bits")
	}
	if compact := utilsMath.BigToCompact(p.PowLimit); compact != p.PowLimitBits {
		return inconsistent("PowLimitBits %08x does not match PowLimit (encodes as %08x)",
			p.PowLimitBits, compact)
	}
	if p.TargetSpacing < time.Second || p.TargetTimespan < p.TargetSpacing {
		return inconsistent("target spacing %s and timespan %s are out of range",
			p.TargetSpacing, p.TargetTimespan)
	}
	if p.RetargetInterval == 0 {
		return inconsistent("retarget interval must be positive")
	}
	if p.UAHFHeight > p.DAAUpdateHeight {
		return inconsistent("UAHF height %d is after the DAA update height %d",
			p.UAHFHeight, p.DAAUpdateHeight)
	}
	if p.ASERTActivationTime != 0 {
		if p.ASERTAnchor == nil {
			return inconsistent("ASERT is enabled without an anchor block")
		}
		if p.ASERTHalfLife < time.Second {
			return inconsistent("ASERT half-life %s is out of range", p.ASERTHalfLife)
		}
		if p.ASERTAnchor.Height == 0 {
			return inconsistent("ASERT anchor must have a parent")
		}
		if p.ASERTAnchor.Height < p.DAAUpdateHeight {
			return inconsistent("ASERT anchor height %d precedes the DAA update height %d",
				p.ASERTAnchor.Height, p.DAAUpdateHeight)
		}
		anchorTarget := utilsMath.CompactToBig(p.ASERTAnchor.Bits)
		if anchorTarget.Sign() <= 0 || anchorTarget.Cmp(p.PowLimit) > 0 {
			return inconsistent("ASERT anchor bits %08x are not a valid target", p.ASERTAnchor.Bits)
		}
	}
	if p.MajorityWindow <= 0 {
		return inconsistent("majority window must be positive")
	}
	if p.MajorityEnforceBlockUpgrade <= 0 ||
		p.MajorityEnforceBlockUpgrade > p.MajorityRejectBlockOutdated ||
		p.MajorityRejectBlockOutdated > p.MajorityWindow {
		return inconsistent("majorities enforce=%d reject=%d window=%d are out of order",
			p.MajorityEnforceBlockUpgrade, p.MajorityRejectBlockOutdated, p.MajorityWindow)
	}
	if p.GenesisHeader != nil {
		if p.GenesisHash == nil || p.GenesisHeader.BlockHash() != *p.GenesisHash {
			return inconsistent("genesis hash does not match the genesis header")
		}
	}
	return nil
}
