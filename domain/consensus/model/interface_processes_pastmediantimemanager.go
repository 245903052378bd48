package model

// PastMedianTimeManager provides a method to resolve the
// past median time of a block
type PastMedianTimeManager interface {
	PastMedianTime(store ChainStore, header *StoredHeader) (int64, error)
}
