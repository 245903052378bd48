package chaincfg

import (
	"math/big"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestDefaultNetworksValidate(t *testing.T) {
	for _, params := range []*Params{
		&MainnetParams, &Testnet3Params, &Testnet4Params,
		&ScalenetParams, &RegtestParams, &UnitTestParams,
	} {
		if err := params.Validate(); err != nil {
			t.Errorf("TestDefaultNetworksValidate: %s: %s", params.Name, err)
		}
	}
}

func TestGenesisHashes(t *testing.T) {
	for _, params := range []*Params{&MainnetParams, &Testnet3Params, &RegtestParams} {
		hash := params.GenesisHeader.BlockHash()
		if !hash.IsEqual(params.GenesisHash) {
			t.Errorf("TestGenesisHashes: %s: genesis hash %s, want %s",
				params.Name, hash, params.GenesisHash)
		}
		if !params.GenesisHeader.IsGenesis() {
			t.Errorf("TestGenesisHashes: %s: genesis header has a parent", params.Name)
		}
	}
	if Testnet4Params.GenesisHeader != nil || ScalenetParams.GenesisHeader != nil {
		t.Errorf("TestGenesisHashes: checkpoint networks must not carry a genesis header")
	}
}

func TestPowLimits(t *testing.T) {
	want := new(big.Int)
	want.SetString("00000000ffff0000000000000000000000000000000000000000000000000000", 16)
	if MainnetParams.PowLimit.Cmp(want) != 0 {
		t.Errorf("TestPowLimits: mainnet pow limit %x, want %x", MainnetParams.PowLimit, want)
	}
	if MainnetParams.RetargetInterval != 2016 {
		t.Errorf("TestPowLimits: mainnet retarget interval %d, want 2016", MainnetParams.RetargetInterval)
	}
}

func TestNetworkKinds(t *testing.T) {
	tests := []struct {
		params   *Params
		testnet  bool
		regtest  bool
		asertOn  bool
		asertMTP int64
	}{
		{&MainnetParams, false, false, true, 1605441600},
		{&MainnetParams, false, false, false, 1605441599},
		{&Testnet3Params, true, false, true, 1605441600},
		{&Testnet4Params, true, false, true, 1700000000},
		{&ScalenetParams, true, false, false, 1600000000},
		{&RegtestParams, false, true, false, 1700000000},
		{&UnitTestParams, false, false, false, 1700000000},
	}
	for _, test := range tests {
		if got := test.params.IsTestNetwork(); got != test.testnet {
			t.Errorf("TestNetworkKinds: %s: IsTestNetwork %t, want %t", test.params.Name, got, test.testnet)
		}
		if got := test.params.IsRegTest(); got != test.regtest {
			t.Errorf("TestNetworkKinds: %s: IsRegTest %t, want %t", test.params.Name, got, test.regtest)
		}
		if got := test.params.IsASERTEnabled(test.asertMTP); got != test.asertOn {
			t.Errorf("TestNetworkKinds: %s: IsASERTEnabled(%d) %t, want %t",
				test.params.Name, test.asertMTP, got, test.asertOn)
		}
	}
}

func TestValidateInconsistent(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Params)
	}{
		{"no id", func(p *Params) { p.ID = "" }},
		{"no pow limit", func(p *Params) { p.PowLimit = nil }},
		{"pow limit bits mismatch", func(p *Params) { p.PowLimitBits = 0x1d00fffe }},
		{"zero spacing", func(p *Params) { p.TargetSpacing = 0 }},
		{"zero interval", func(p *Params) { p.RetargetInterval = 0 }},
		{"uahf after daa", func(p *Params) { p.UAHFHeight = p.DAAUpdateHeight + 1 }},
		{"asert without anchor", func(p *Params) { p.ASERTAnchor = nil }},
		{"asert before daa", func(p *Params) {
			anchor := *p.ASERTAnchor
			anchor.Height = p.DAAUpdateHeight - 1
			p.ASERTAnchor = &anchor
		}},
		{"asert anchor without parent", func(p *Params) {
			anchor := *p.ASERTAnchor
			anchor.Height = 0
			p.ASERTAnchor = &anchor
			p.UAHFHeight = 0
			p.DAAUpdateHeight = 0
		}},
		{"asert anchor above limit", func(p *Params) {
			anchor := *p.ASERTAnchor
			anchor.Bits = 0x1d01ffff
			p.ASERTAnchor = &anchor
		}},
		{"asert zero half-life", func(p *Params) { p.ASERTHalfLife = 0 }},
		{"zero window", func(p *Params) { p.MajorityWindow = 0 }},
		{"enforce above reject", func(p *Params) { p.MajorityEnforceBlockUpgrade = p.MajorityRejectBlockOutdated + 1 }},
		{"reject above window", func(p *Params) { p.MajorityRejectBlockOutdated = p.MajorityWindow + 1 }},
		{"genesis hash mismatch", func(p *Params) { p.GenesisHash = &testnet3GenesisHash }},
	}
	for _, test := range tests {
		params := MainnetParams
		test.modify(&params)
		err := params.Validate()
		if !errors.Is(err, ErrInconsistentParams) {
			t.Errorf("TestValidateInconsistent: %s: expected ErrInconsistentParams, got %v", test.name, err)
		}
	}

	// Disabling ASERT lifts the anchor requirements.
	params := MainnetParams
	params.ASERTActivationTime = 0
	params.ASERTAnchor = nil
	params.ASERTHalfLife = 0
	if err := params.Validate(); err != nil {
		t.Errorf("TestValidateInconsistent: ASERT disabled: unexpected error %s", err)
	}
}

func TestSecondsHelpers(t *testing.T) {
	if got := MainnetParams.TargetSpacingSeconds(); got != 600 {
		t.Errorf("TargetSpacingSeconds: got %d want 600", got)
	}
	if got := MainnetParams.TargetTimespanSeconds(); got != 1209600 {
		t.Errorf("TargetTimespanSeconds: got %d want 1209600", got)
	}
	if got := MainnetParams.ASERTHalfLifeSeconds(); got != int64(2*24*time.Hour/time.Second) {
		t.Errorf("ASERTHalfLifeSeconds: got %d want 172800", got)
	}
}
