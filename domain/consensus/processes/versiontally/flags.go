package versiontally

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/cashlabs/cashspv/domain/chaincfg"
	"github.com/cashlabs/cashspv/domain/consensus/ruleerrors"
	"github.com/cashlabs/cashspv/wire"
)

// Block versions that signal the version gated soft forks.
const (
	BlockVersionBIP34 = 2
	BlockVersionBIP66 = 3
	BlockVersionBIP65 = 4
)

// VerifyFlags is a bitmask of the validation rules that apply to a block's
// contents.
type VerifyFlags uint32

const (
	// VFHeightInCoinbase requires the coinbase to start with the block
	// height (BIP34).
	VFHeightInCoinbase VerifyFlags = 1 << iota

	// VFP2SH enables pay to script hash evaluation (BIP16).
	VFP2SH

	// VFCheckLockTimeVerify enables OP_CHECKLOCKTIMEVERIFY (BIP65).
	VFCheckLockTimeVerify

	// VFCheckDataSig enables OP_CHECKDATASIG.
	VFCheckDataSig

	// VFNone is a convenience value to specifically indicate no flags.
	VFNone VerifyFlags = 0
)

var verifyFlagStrings = []struct {
	flag VerifyFlags
	name string
}{
	{VFHeightInCoinbase, "HEIGHT_IN_COINBASE"},
	{VFP2SH, "P2SH"},
	{VFCheckLockTimeVerify, "CHECKLOCKTIMEVERIFY"},
	{VFCheckDataSig, "CHECKDATASIG"},
}

// Has returns whether every flag of other is set.
func (f VerifyFlags) Has(other VerifyFlags) bool {
	return f&other == other
}

func (f VerifyFlags) String() string {
	if f == VFNone {
		return "NONE"
	}
	var names []string
	for _, flag := range verifyFlagStrings {
		if f.Has(flag.flag) {
			names = append(names, flag.name)
			f &^= flag.flag
		}
	}
	if f != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(f)))
	}
	return strings.Join(names, "|")
}

// BlockVerificationFlags returns the flags that apply to a block with the
// given header, given the tally of the versions of its ancestors. A tally
// that is not yet full enables no version gated flag.
func BlockVerificationFlags(params *chaincfg.Params, header *wire.BlockHeader, tally *VersionTally) VerifyFlags {
	flags := VFNone

	if header.Version >= BlockVersionBIP34 {
		count, ok := tally.CountAtOrAbove(BlockVersionBIP34)
		if ok && count >= params.MajorityEnforceBlockUpgrade {
			flags |= VFHeightInCoinbase
		}
	}

	if header.Timestamp >= params.BIP16Time {
		flags |= VFP2SH
	}

	// CLTV enforcement begins strictly above the enforcement majority.
	if header.Version >= BlockVersionBIP65 {
		count, ok := tally.CountAtOrAbove(BlockVersionBIP65)
		if ok && count > params.MajorityEnforceBlockUpgrade {
			flags |= VFCheckLockTimeVerify
		}
	}

	if header.Timestamp >= params.CheckDataSigActivationTime {
		flags |= VFCheckDataSig
	}

	return flags
}

// CheckOutdatedVersion rejects a header whose version has been superseded by
// a reject majority of its ancestors.
func CheckOutdatedVersion(params *chaincfg.Params, header *wire.BlockHeader, tally *VersionTally) error {
	for _, version := range []int32{BlockVersionBIP34, BlockVersionBIP66, BlockVersionBIP65} {
		if header.Version >= version {
			continue
		}
		count, ok := tally.CountAtOrAbove(version)
		if ok && count >= params.MajorityRejectBlockOutdated {
			return errors.Wrapf(ruleerrors.ErrBlockVersionTooOld, "block version %d is outdated: "+
				"%d of the last %d blocks have version %d or newer",
				header.Version, count, tally.Size(), version)
		}
	}
	return nil
}
