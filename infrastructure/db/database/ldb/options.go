package ldb

import "github.com/syndtr/goleveldb/leveldb/opt"

// defaultOptions suit a store of small fixed-size header records that is
// written in batches and read by hash. Cache sizes are set per database by
// NewLevelDB.
var defaultOptions = opt.Options{
	Compression:            opt.NoCompression,
	DisableSeeksCompaction: true,
	Filter:                 nil,
}

// Options returns a fresh copy of the options used to open a database.
func Options() *opt.Options {
	options := defaultOptions
	return &options
}
