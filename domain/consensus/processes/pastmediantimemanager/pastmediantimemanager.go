package pastmediantimemanager

import (
	"sort"

	"github.com/cashlabs/cashspv/domain/consensus/model"
)

// DefaultWindowSize is the number of timestamps, the block's own included,
// whose median is the block's past median time.
const DefaultWindowSize = 11

// pastMedianTimeManager provides a method to resolve the
// past median time of a block
type pastMedianTimeManager struct {
	windowSize int
}

// New instantiates a new PastMedianTimeManager
func New(windowSize int) model.PastMedianTimeManager {
	return &pastMedianTimeManager{
		windowSize: windowSize,
	}
}

// PastMedianTime returns the past median time for some block: the median
// timestamp of the block and up to windowSize-1 of its ancestors. Fewer
// timestamps are used only when the walk reaches genesis.
func (pmtm *pastMedianTimeManager) PastMedianTime(store model.ChainStore, header *model.StoredHeader) (int64, error) {
	timestamps := make([]int64, 0, pmtm.windowSize)
	current := header
	for {
		timestamps = append(timestamps, current.Timestamp())
		if len(timestamps) == pmtm.windowSize || current.Height == 0 {
			break
		}
		parent, err := model.Parent(store, current)
		if err != nil {
			return 0, err
		}
		current = parent
	}

	return medianTimestamp(timestamps), nil
}

func medianTimestamp(timestamps []int64) int64 {
	sort.Slice(timestamps, func(i, j int) bool {
		return timestamps[i] < timestamps[j]
	})
	return timestamps[len(timestamps)/2]
}
