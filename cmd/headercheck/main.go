package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cashlabs/cashspv/domain/consensus/datastructures/headerstore"
	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/domain/consensus/utils/math"
	"github.com/cashlabs/cashspv/domain/headerchain"
	"github.com/cashlabs/cashspv/infrastructure/db/database/ldb"
	"github.com/cashlabs/cashspv/infrastructure/logger"
	"github.com/cashlabs/cashspv/util/panics"
	"github.com/cashlabs/cashspv/wire"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	err = initLog(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing the logger: %s\n", err)
		os.Exit(1)
	}
	defer panics.HandlePanic(log)

	err = run(cfg)
	if err != nil {
		panics.Exit(log, fmt.Sprintf("%+v", err))
	}
	logger.BackendLog.Close()
}

// run imports the headers file of cfg into the header database, validating
// every header that is not trusted.
func run(cfg *configFlags) error {
	params := cfg.NetParams()

	headers, err := readHeadersFile(cfg.HeadersFile)
	if err != nil {
		return err
	}
	log.Infof("Read %d headers from %s", len(headers), cfg.HeadersFile)

	db, err := ldb.NewLevelDB(cfg.DataDir, defaultDBCacheSizeMiB)
	if err != nil {
		return err
	}
	defer func() {
		err := db.Close()
		if err != nil {
			log.Errorf("Error closing the database: %s", err)
		}
	}()

	ldbStore, err := headerstore.NewLevelDBStore(db, []byte(params.ID))
	if err != nil {
		return err
	}
	store := headerstore.NewCachedStore(ldbStore, cfg.CacheSize)

	registry := prometheus.NewRegistry()
	metrics, err := headerchain.NewMetrics(registry)
	if err != nil {
		return err
	}
	chain, err := headerchain.New(params, store, headerchain.WithMetrics(metrics))
	if err != nil {
		return err
	}

	headers, err = importTrusted(chain, cfg, headers)
	if err != nil {
		return err
	}
	headers, err = skipStored(chain.Store(), headers)
	if err != nil {
		return err
	}

	accepted, processErr := chain.ProcessHeaders(headers)
	newTips := 0
	for _, acceptedHeader := range accepted {
		if acceptedHeader.IsNewTip {
			newTips++
		}
	}
	log.Infof("Accepted %d of %d headers, %d of which extended the best chain",
		len(accepted), len(headers), newTips)

	tip, err := chain.Tip()
	if err != nil {
		return err
	}
	hits, misses := store.Stats()
	log.Infof("Tip %s at height %d, %d headers stored (cache hits %d, misses %d)",
		tip.Hash(), tip.Height, ldbStore.Count(), hits, misses)

	if cfg.MetricsFile != "" {
		err := prometheus.WriteToTextfile(cfg.MetricsFile, registry)
		if err != nil {
			return errors.Wrapf(err, "error writing metrics to %s", cfg.MetricsFile)
		}
	}

	return processErr
}

// importTrusted stores the trusted headers at the start of headers without
// validating them and returns the rest. The first one is a checkpoint at
// the configured start height.
func importTrusted(chain *headerchain.HeaderChain, cfg *configFlags,
	headers []*wire.BlockHeader) ([]*wire.BlockHeader, error) {

	if cfg.Trusted == 0 {
		return headers, nil
	}
	if int(cfg.Trusted) > len(headers) {
		return nil, errors.Errorf("--trusted %d exceeds the %d headers of %s",
			cfg.Trusted, len(headers), cfg.HeadersFile)
	}

	checkpoint := headers[0]
	chainWork := cfg.trustedChainWork
	if chainWork == nil {
		chainWork = math.CalcWork(checkpoint.Bits)
	}
	_, err := chain.ImportTrusted(checkpoint, cfg.StartHeight, chainWork)
	if err != nil {
		return nil, err
	}
	for _, header := range headers[1:cfg.Trusted] {
		_, err := chain.AppendTrusted(header)
		if err != nil {
			return nil, err
		}
	}
	log.Infof("Imported %d trusted headers from height %d", cfg.Trusted, cfg.StartHeight)

	return headers[cfg.Trusted:], nil
}

// skipStored drops the leading headers that an earlier run already stored.
func skipStored(store model.HeaderStore, headers []*wire.BlockHeader) ([]*wire.BlockHeader, error) {
	for i, header := range headers {
		hash := header.BlockHash()
		exists, err := store.Has(&hash)
		if err != nil {
			return nil, err
		}
		if !exists {
			if i > 0 {
				log.Infof("Skipped %d headers stored by an earlier run", i)
			}
			return headers[i:], nil
		}
	}
	return nil, nil
}
