package model

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

// ErrNotFound denotes that a requested header is not in the store.
var ErrNotFound = errors.New("not found")

// IsNotFoundError checks whether an error is, or wraps, ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is returned when a ChainStore operation fails. Err holds the
// underlying cause, ErrNotFound for missing records or the I/O error of the
// backing database.
type StoreError struct {
	Op   string
	Hash chainhash.Hash
	Err  error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %s", e.Op, e.Hash, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Cause returns the underlying cause, for github.com/pkg/errors.Cause.
func (e *StoreError) Cause() error {
	return e.Err
}

func errAncestorAbove(height, fromHeight uint32) error {
	return errors.Wrapf(ErrNotFound, "no ancestor at height %d of a header at height %d", height, fromHeight)
}
