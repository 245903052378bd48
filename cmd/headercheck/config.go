package main

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	flags "github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/cashlabs/cashspv/domain/consensus/datastructures/headerstore"
	"github.com/cashlabs/cashspv/infrastructure/config"
)

const (
	defaultLogLevel       = "info"
	defaultLogFilename    = "headercheck.log"
	defaultErrLogFilename = "headercheck_err.log"
	defaultDBCacheSizeMiB = 16
)

var (
	defaultHomeDir = btcutil.AppDataDir("headercheck", false)
	defaultDataDir = filepath.Join(defaultHomeDir, "data")
	defaultLogDir  = filepath.Join(defaultHomeDir, "logs")
)

// configFlags defines the configuration options for headercheck.
type configFlags struct {
	HeadersFile string `short:"i" long:"headers" description:"File with one hex encoded 80-byte header per line" required:"true"`
	DataDir     string `short:"b" long:"datadir" description:"Directory of the header database"`
	Trusted     uint32 `long:"trusted" description:"Number of headers at the start of the file to import without validation, the first one being a checkpoint"`
	StartHeight uint32 `long:"start-height" description:"Height of the first trusted header"`
	ChainWork   string `long:"chainwork" description:"Chain work of the first trusted header, in hex (defaults to the header's own work)"`
	CacheSize   uint64 `long:"cachesize" description:"Number of headers kept in the in-memory cache"`
	LogDir      string `long:"logdir" description:"Directory to log output"`
	LogLevel    string `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	MetricsFile string `long:"metrics-file" description:"Write Prometheus metrics in the text exposition format to this file on exit"`
	config.NetworkFlags

	trustedChainWork *big.Int
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil || !os.IsNotExist(err)
}

// parseConfig parses the command line and validates the result.
func parseConfig(args []string) (*configFlags, error) {
	cfg := &configFlags{
		DataDir:   defaultDataDir,
		CacheSize: headerstore.DefaultCacheSize,
		LogDir:    defaultLogDir,
		LogLevel:  defaultLogLevel,
	}

	parser := flags.NewParser(cfg, flags.Default)
	_, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}

	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	// Each network keeps its own database.
	cfg.DataDir = filepath.Join(cfg.DataDir, cfg.NetParams().Name)

	if !fileExists(cfg.HeadersFile) {
		err := errors.Errorf("The specified headers file [%s] does not exist", cfg.HeadersFile)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, err
	}

	if cfg.CacheSize == 0 {
		return nil, errors.New("--cachesize must be positive")
	}

	if cfg.Trusted == 0 {
		if cfg.StartHeight != 0 || cfg.ChainWork != "" {
			return nil, errors.New("--start-height and --chainwork require --trusted")
		}
		if cfg.NetParams().GenesisHeader == nil {
			return nil, errors.Errorf("%s has no genesis header, use --trusted and --start-height "+
				"to start from a checkpoint", cfg.NetParams().Name)
		}
	}

	if cfg.ChainWork != "" {
		chainWork, ok := new(big.Int).SetString(cfg.ChainWork, 16)
		if !ok || chainWork.Sign() <= 0 {
			return nil, errors.Errorf("--chainwork %s is not a positive hex number", cfg.ChainWork)
		}
		cfg.trustedChainWork = chainWork
	}

	return cfg, nil
}
