package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/cashlabs/cashspv/domain/chaincfg"
)

func TestResolveNetwork(t *testing.T) {
	tests := []struct {
		name       string
		flags      NetworkFlags
		expectedID string
	}{
		{"default", NetworkFlags{}, chaincfg.MainnetID},
		{"testnet", NetworkFlags{Testnet: true}, chaincfg.TestnetID},
		{"testnet4", NetworkFlags{Testnet4: true}, chaincfg.Testnet4ID},
		{"scalenet", NetworkFlags{Scalenet: true}, chaincfg.ScalenetID},
		{"regtest", NetworkFlags{Regtest: true}, chaincfg.RegtestID},
		{"unittest", NetworkFlags{Unittest: true}, chaincfg.UnitTestID},
	}
	for _, test := range tests {
		networkFlags := test.flags
		err := networkFlags.ResolveNetwork(nil)
		if err != nil {
			t.Fatalf("TestResolveNetwork: %s: unexpected error: %s", test.name, err)
		}
		if networkFlags.NetParams().ID != test.expectedID {
			t.Errorf("TestResolveNetwork: %s: got network %s want %s",
				test.name, networkFlags.NetParams().ID, test.expectedID)
		}
	}
}

func TestResolveNetworkMultipleNetworks(t *testing.T) {
	networkFlags := NetworkFlags{Testnet: true, Regtest: true}
	err := networkFlags.ResolveNetwork(nil)
	if err == nil {
		t.Fatalf("TestResolveNetworkMultipleNetworks: expected an error")
	}
}

func TestResolveNetworkFromCommandLine(t *testing.T) {
	networkFlags := &NetworkFlags{}
	parser := flags.NewParser(networkFlags, flags.None)
	_, err := parser.ParseArgs([]string{"--testnet4"})
	if err != nil {
		t.Fatalf("TestResolveNetworkFromCommandLine: ParseArgs: %s", err)
	}
	err = networkFlags.ResolveNetwork(parser)
	if err != nil {
		t.Fatalf("TestResolveNetworkFromCommandLine: ResolveNetwork: %s", err)
	}
	if networkFlags.NetParams().ID != chaincfg.Testnet4ID {
		t.Errorf("TestResolveNetworkFromCommandLine: got network %s", networkFlags.NetParams().ID)
	}
}

func writeOverrideFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "override.json")
	err := os.WriteFile(path, []byte(content), 0600)
	if err != nil {
		t.Fatalf("writeOverrideFile: %s", err)
	}
	return path
}

func TestOverrideParams(t *testing.T) {
	path := writeOverrideFile(t, `{
		"retargetInterval": 20,
		"targetSpacingSeconds": 60,
		"targetTimespanSeconds": 1200,
		"majorityWindow": 10,
		"majorityRejectBlockOutdated": 8,
		"skipProofOfWork": false
	}`)

	networkFlags := NetworkFlags{Unittest: true, OverrideParamsFile: path}
	err := networkFlags.ResolveNetwork(nil)
	if err != nil {
		t.Fatalf("TestOverrideParams: unexpected error: %s", err)
	}

	params := networkFlags.NetParams()
	if params.RetargetInterval != 20 || params.TargetSpacing != time.Minute ||
		params.TargetTimespan != 20*time.Minute || params.MajorityWindow != 10 ||
		params.MajorityRejectBlockOutdated != 8 || params.SkipProofOfWork {

		t.Errorf("TestOverrideParams: overrides were not applied: %+v", params)
	}

	// The registered parameters are left untouched.
	if chaincfg.UnitTestParams.RetargetInterval == 20 || !chaincfg.UnitTestParams.SkipProofOfWork {
		t.Errorf("TestOverrideParams: the registered unit test parameters were modified")
	}
}

func TestOverrideParamsPowLimit(t *testing.T) {
	path := writeOverrideFile(t, `{"powLimit": "7fffff0000000000000000000000000000000000000000000000000000000000"}`)
	networkFlags := NetworkFlags{Regtest: true, OverrideParamsFile: path}
	err := networkFlags.ResolveNetwork(nil)
	if err != nil {
		t.Fatalf("TestOverrideParamsPowLimit: unexpected error: %s", err)
	}
	if networkFlags.NetParams().PowLimitBits != 0x207fffff {
		t.Errorf("TestOverrideParamsPowLimit: got bits %08x want 207fffff", networkFlags.NetParams().PowLimitBits)
	}
}

func TestOverrideParamsASERTAnchor(t *testing.T) {
	path := writeOverrideFile(t, `{
		"daaUpdateHeight": 100,
		"asertActivationTime": 1600000000,
		"asertAnchorHeight": 200,
		"asertAnchorBits": 486604799,
		"asertAnchorParentTime": 1600000600,
		"asertAnchorParentMedianTime": 1600000000
	}`)
	networkFlags := NetworkFlags{Unittest: true, OverrideParamsFile: path}
	err := networkFlags.ResolveNetwork(nil)
	if err != nil {
		t.Fatalf("TestOverrideParamsASERTAnchor: unexpected error: %s", err)
	}
	expected := chaincfg.ASERTAnchor{Height: 200, Bits: 0x1d00ffff, ParentTime: 1600000600, ParentMedianTime: 1600000000}
	if anchor := networkFlags.NetParams().ASERTAnchor; anchor == nil || *anchor != expected {
		t.Errorf("TestOverrideParamsASERTAnchor: got anchor %+v, want %+v", anchor, expected)
	}
}

func TestOverrideParamsErrors(t *testing.T) {
	tests := []struct {
		name     string
		flags    NetworkFlags
		override string
	}{
		{"not allowed on testnet", NetworkFlags{Testnet: true}, `{}`},
		{"unknown field", NetworkFlags{Regtest: true}, `{"k": 18}`},
		{"malformed json", NetworkFlags{Regtest: true}, `{"retargetInterval": }`},
		{"bad pow limit", NetworkFlags{Regtest: true}, `{"powLimit": "xyz"}`},
		{"partial anchor", NetworkFlags{Regtest: true}, `{"asertAnchorHeight": 100}`},
		{"anchor median time alone", NetworkFlags{Regtest: true}, `{"asertAnchorParentMedianTime": 100}`},
		{"inconsistent", NetworkFlags{Unittest: true}, `{"majorityWindow": 2}`},
	}
	for _, test := range tests {
		networkFlags := test.flags
		networkFlags.OverrideParamsFile = writeOverrideFile(t, test.override)
		err := networkFlags.ResolveNetwork(nil)
		if err == nil {
			t.Errorf("TestOverrideParamsErrors: %s: expected an error", test.name)
		}
	}
}
