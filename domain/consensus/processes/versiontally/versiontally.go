package versiontally

import (
	"github.com/cashlabs/cashspv/domain/consensus/model"
)

// VersionTally keeps the block versions of the most recent headers of a
// chain in a fixed size rolling window. Versions are added in ascending
// height order.
//
// A VersionTally is not safe for concurrent use.
type VersionTally struct {
	versions []int32
	next     int
	added    uint64
}

// New returns an empty VersionTally over a window of size headers.
func New(size int) *VersionTally {
	return &VersionTally{versions: make([]int32, size)}
}

// Add pushes version into the window, evicting the oldest version once the
// window is full.
func (vt *VersionTally) Add(version int32) {
	if len(vt.versions) == 0 {
		return
	}
	vt.versions[vt.next] = version
	vt.next = (vt.next + 1) % len(vt.versions)
	vt.added++
}

// CountAtOrAbove returns the number of versions in the window that are at
// least version. ok is false while the window is not yet full, in which
// case the count is meaningless.
func (vt *VersionTally) CountAtOrAbove(version int32) (count int, ok bool) {
	if vt.added < uint64(len(vt.versions)) {
		return 0, false
	}
	for _, v := range vt.versions {
		if v >= version {
			count++
		}
	}
	return count, true
}

// Size returns the size of the window.
func (vt *VersionTally) Size() int {
	return len(vt.versions)
}

// Reset empties the window.
func (vt *VersionTally) Reset() {
	for i := range vt.versions {
		vt.versions[i] = 0
	}
	vt.next = 0
	vt.added = 0
}

// Initialize resets the window and seeds it with the versions of tip and its
// ancestors, oldest first. A chain shorter than the window leaves it
// partially populated. The walk stops at genesis or at the first ancestor
// missing from store, which is where a chain bootstrapped from a trusted
// checkpoint begins.
func (vt *VersionTally) Initialize(store model.ChainStore, tip *model.StoredHeader) error {
	vt.Reset()

	versions := make([]int32, 0, len(vt.versions))
	current := tip
	for len(versions) < len(vt.versions) {
		versions = append(versions, current.Header.Version)
		if current.Height == 0 {
			break
		}
		parent, err := model.Parent(store, current)
		if model.IsNotFoundError(err) {
			break
		}
		if err != nil {
			return err
		}
		current = parent
	}

	for i := len(versions) - 1; i >= 0; i-- {
		vt.Add(versions[i])
	}
	return nil
}
