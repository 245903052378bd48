package main

import (
	"encoding/hex"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/cashlabs/cashspv/domain/chaincfg"
	"github.com/cashlabs/cashspv/domain/consensus/datastructures/headerstore"
	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/domain/consensus/processes/difficultymanager"
	"github.com/cashlabs/cashspv/infrastructure/db/database/ldb"
	"github.com/cashlabs/cashspv/wire"
)

// buildChain returns count valid unit test network headers on top of its
// genesis.
func buildChain(t *testing.T, count int) []*wire.BlockHeader {
	params := &chaincfg.UnitTestParams
	factory := difficultymanager.NewRuleCheckerFactory(params)
	store := headerstore.NewMemoryStore()
	parent := model.NewGenesisStoredHeader(params.GenesisHeader)
	require.NoError(t, store.Put(parent))

	headers := make([]*wire.BlockHeader, 0, count)
	for i := 0; i < count; i++ {
		header := &wire.BlockHeader{
			Version:   4,
			PrevBlock: *parent.Hash(),
			Timestamp: parent.Timestamp() + 600,
			Nonce:     uint32(i),
		}
		pool, err := factory.RuleCheckerPool(header, parent, store)
		require.NoError(t, err)
		bits, ok, err := pool.ExpectedBits(header, parent, store)
		require.NoError(t, err)
		require.True(t, ok)
		header.Bits = bits

		parent = model.NewStoredHeader(header, parent)
		require.NoError(t, store.Put(parent))
		headers = append(headers, header)
	}
	return headers
}

func writeHeadersFile(t *testing.T, dir string, headers []*wire.BlockHeader) string {
	lines := []string{"# unit test headers", ""}
	for _, header := range headers {
		lines = append(lines, hex.EncodeToString(header.Bytes()))
	}
	path := filepath.Join(dir, "headers.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600))
	return path
}

func storedTip(t *testing.T, dataDir string, params *chaincfg.Params) *model.StoredHeader {
	db, err := ldb.NewLevelDB(dataDir, 8)
	require.NoError(t, err)
	defer db.Close()

	store, err := headerstore.NewLevelDBStore(db, []byte(params.ID))
	require.NoError(t, err)
	tip, err := store.Tip()
	require.NoError(t, err)
	return tip
}

func TestReadHeaders(t *testing.T) {
	headers := buildChain(t, 3)
	input := "# comment\n\n" + hex.EncodeToString(headers[0].Bytes()) + "\n  " +
		hex.EncodeToString(headers[1].Bytes()) + "  \n"
	read, err := readHeaders(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, read, 2)
	require.Equal(t, headers[0].BlockHash(), read[0].BlockHash())
	require.Equal(t, headers[1].BlockHash(), read[1].BlockHash())

	_, err = readHeaders(strings.NewReader(hex.EncodeToString(headers[0].Bytes()) + "\nzz\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 2")

	_, err = readHeaders(strings.NewReader("00ff\n"))
	require.Error(t, err)
}

func TestParseConfig(t *testing.T) {
	dir := t.TempDir()
	headersFile := writeHeadersFile(t, dir, nil)

	cfg, err := parseConfig([]string{"--unittest", "--headers", headersFile, "--datadir", dir})
	require.NoError(t, err)
	require.Equal(t, chaincfg.UnitTestID, cfg.NetParams().ID)
	require.Equal(t, filepath.Join(dir, "unittest"), cfg.DataDir)
	require.Equal(t, uint64(headerstore.DefaultCacheSize), cfg.CacheSize)

	cfg, err = parseConfig([]string{"--unittest", "--headers", headersFile,
		"--trusted", "3", "--start-height", "5000", "--chainwork", "ff00"})
	require.NoError(t, err)
	require.Zero(t, big.NewInt(0xff00).Cmp(cfg.trustedChainWork))

	tests := []struct {
		name string
		args []string
	}{
		{"missing headers flag", []string{"--unittest"}},
		{"missing headers file", []string{"--unittest", "--headers", filepath.Join(dir, "missing")}},
		{"two networks", []string{"--regtest", "--testnet", "--headers", headersFile}},
		{"start height without trusted", []string{"--unittest", "--headers", headersFile, "--start-height", "10"}},
		{"no genesis without trusted", []string{"--testnet4", "--headers", headersFile}},
		{"bad chain work", []string{"--unittest", "--headers", headersFile, "--trusted", "1", "--chainwork", "zz"}},
		{"zero cache", []string{"--unittest", "--headers", headersFile, "--cachesize", "0"}},
	}
	for _, test := range tests {
		_, err := parseConfig(test.args)
		require.Error(t, err, test.name)
	}
}

func TestRunImportsHeaders(t *testing.T) {
	dir := t.TempDir()
	headers := buildChain(t, 15)
	headersFile := writeHeadersFile(t, dir, headers)
	metricsFile := filepath.Join(dir, "metrics.prom")

	args := []string{"--unittest", "--headers", headersFile, "--datadir", dir,
		"--metrics-file", metricsFile, "--cachesize", "4"}
	cfg, err := parseConfig(args)
	require.NoError(t, err)
	require.NoError(t, run(cfg))

	tip := storedTip(t, cfg.DataDir, cfg.NetParams())
	require.Equal(t, uint32(15), tip.Height)
	require.Equal(t, headers[14].BlockHash(), *tip.Hash())

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	require.Contains(t, string(metrics), "headerchain_accepted_headers_total 15")
	require.Contains(t, string(metrics), "headerchain_tip_height 15")

	// A second run skips everything that is already stored.
	cfg, err = parseConfig(args)
	require.NoError(t, err)
	require.NoError(t, run(cfg))
	require.Equal(t, uint32(15), storedTip(t, cfg.DataDir, cfg.NetParams()).Height)
}

func TestRunStopsAtInvalidHeader(t *testing.T) {
	dir := t.TempDir()
	headers := buildChain(t, 6)
	headers[4].Bits = 0x1c7fffff
	headersFile := writeHeadersFile(t, dir, headers)

	cfg, err := parseConfig([]string{"--unittest", "--headers", headersFile, "--datadir", dir})
	require.NoError(t, err)
	err = run(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "header 5 of 6")
	require.Contains(t, err.Error(), "ErrUnexpectedDifficulty")

	require.Equal(t, uint32(4), storedTip(t, cfg.DataDir, cfg.NetParams()).Height)
}

func TestRunFromCheckpoint(t *testing.T) {
	dir := t.TempDir()

	// A checkpoint at height 5000 followed by four trusted and five
	// validated headers, all at the proof of work limit.
	params := &chaincfg.UnitTestParams
	headers := make([]*wire.BlockHeader, 0, 10)
	prevHash := chainhash.Hash{0x42}
	timestamp := int64(1600000000)
	for i := 0; i < 10; i++ {
		header := &wire.BlockHeader{
			Version:   4,
			PrevBlock: prevHash,
			Timestamp: timestamp,
			Bits:      params.PowLimitBits,
			Nonce:     uint32(i),
		}
		headers = append(headers, header)
		prevHash = header.BlockHash()
		timestamp += 600
	}
	headersFile := writeHeadersFile(t, dir, headers)

	cfg, err := parseConfig([]string{"--unittest", "--headers", headersFile, "--datadir", dir,
		"--trusted", "5", "--start-height", "5000", "--chainwork", "100000000000000"})
	require.NoError(t, err)
	require.NoError(t, run(cfg))

	tip := storedTip(t, cfg.DataDir, params)
	require.Equal(t, uint32(5009), tip.Height)
	require.Equal(t, headers[9].BlockHash(), *tip.Hash())

	// More trusted headers than the file holds.
	cfg, err = parseConfig([]string{"--unittest", "--headers", headersFile, "--datadir", t.TempDir(),
		"--trusted", "11", "--start-height", "5000"})
	require.NoError(t, err)
	require.Error(t, run(cfg))
}
