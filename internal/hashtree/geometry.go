package hashtree

import (
	"fmt"
	"math/bits"
)

// BlockSize is the leaf granularity of the hash tree: one Fletcher
// digest covers exactly this many bytes of file-data.
const BlockSize = 256

// Geometry is the fixed shape of the hash tree, derived once from the
// size of the file-data region at Open and never recomputed.
type Geometry struct {
	Leaves     int // number of 256-byte blocks in file-data
	Height     int // floor(log2(Leaves))
	TotalNodes int // 2^(Height+1) - 1
}

// NewGeometry derives tree geometry from the file-data region size.
//
// Behavior is unspecified when the leaf count is not a
// power of two (the complete-binary-tree node count 2^(h+1)-1 only
// matches the actual number of leaves when Leaves is itself a power of
// two); this implementation takes the documented option and rejects.
func NewGeometry(fileDataSize int64) (Geometry, error) {
	if fileDataSize <= 0 {
		return Geometry{}, fmt.Errorf("hashtree: file-data size must be positive, got %d", fileDataSize)
	}
	if fileDataSize%BlockSize != 0 {
		return Geometry{}, fmt.Errorf("hashtree: file-data size %d is not a multiple of block size %d", fileDataSize, BlockSize)
	}

	leaves := fileDataSize / BlockSize
	if leaves&(leaves-1) != 0 {
		return Geometry{}, fmt.Errorf("hashtree: leaf count %d is not a power of two", leaves)
	}

	height := bits.Len(uint(leaves)) - 1
	total := (1 << uint(height+1)) - 1

	return Geometry{
		Leaves:     int(leaves),
		Height:     height,
		TotalNodes: total,
	}, nil
}

// LeafIndex returns the hash-tree index of the leaf covering block b.
func (g Geometry) LeafIndex(b int) int {
	return (1 << uint(g.Height)) - 1 + b
}

// parent, left and right implement the standard level-order complete
// binary tree index arithmetic used throughout the tree walk.
func parent(i int) int { return (i - 1) / 2 }
func left(i int) int   { return 2*i + 1 }
func right(i int) int  { return 2*i + 2 }

// BlockRange returns the inclusive [first, last] block indices touched
// by the byte span [offset, offset+changedBytes). An
// implementation must not verify or update a stale trailing block when
// the span ends exactly on a boundary. changedBytes must be positive.
func BlockRange(offset, changedBytes int64) (first, last int) {
	first = int(offset / BlockSize)
	last = int((offset + changedBytes - 1) / BlockSize)
	return first, last
}
