package model

import "github.com/cashlabs/cashspv/wire"

// DifficultyManager validates the difficulty bits of a candidate header
// against the chain it extends.
type DifficultyManager interface {
	CheckDifficulty(candidate *wire.BlockHeader, parent *StoredHeader, store ChainStore) error
}
