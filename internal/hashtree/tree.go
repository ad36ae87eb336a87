package hashtree

import (
	"github.com/scigolib/filestore/internal/utils"
)

// Tree owns the hash region and the file-data region it covers. It
// exposes full rebuilds, single-block incremental updates with
// ancestor propagation, and bottom-up range verification.
type Tree struct {
	hash     utils.ReadWriterAt
	fileData utils.ReaderAt
	geom     Geometry
}

// New wraps the hash-region and file-data-region backing stores with
// the geometry computed at Open.
func New(hash utils.ReadWriterAt, fileData utils.ReaderAt, geom Geometry) *Tree {
	return &Tree{hash: hash, fileData: fileData, geom: geom}
}

// Geometry returns the tree's fixed shape.
func (t *Tree) Geometry() Geometry {
	return t.geom
}

func (t *Tree) readNode(index int) ([HashSize]byte, error) {
	var out [HashSize]byte
	_, err := t.hash.ReadAt(out[:], int64(index)*HashSize)
	if err != nil {
		return out, utils.WrapError("reading hash node", err)
	}
	return out, nil
}

func (t *Tree) writeNode(index int, h [HashSize]byte) error {
	_, err := t.hash.WriteAt(h[:], int64(index)*HashSize)
	if err != nil {
		return utils.WrapError("writing hash node", err)
	}
	return nil
}

func (t *Tree) leafHash(block int) ([HashSize]byte, error) {
	buf := utils.GetBuffer(BlockSize)
	defer utils.ReleaseBuffer(buf)

	if _, err := t.fileData.ReadAt(buf, int64(block)*BlockSize); err != nil {
		return [HashSize]byte{}, utils.WrapError("reading file-data block", err)
	}
	return Sum128(buf)
}

// combine hashes two child digests in left-then-right order: an
// internal node's hash is H(left_hash || right_hash).
func combine(lhs, rhs [HashSize]byte) ([HashSize]byte, error) {
	var buf [2 * HashSize]byte
	copy(buf[:HashSize], lhs[:])
	copy(buf[HashSize:], rhs[:])
	return Sum128(buf[:])
}

// RebuildAll recomputes every hash node from scratch: leaves first,
// then each level bottom-up to the root.
func (t *Tree) RebuildAll() error {
	for b := 0; b < t.geom.Leaves; b++ {
		h, err := t.leafHash(b)
		if err != nil {
			return err
		}
		if err := t.writeNode(t.geom.LeafIndex(b), h); err != nil {
			return err
		}
	}

	for level := t.geom.Height - 1; level >= 0; level-- {
		first := (1 << uint(level)) - 1
		last := (1 << uint(level+1)) - 2
		for idx := first; idx <= last; idx++ {
			lh, err := t.readNode(left(idx))
			if err != nil {
				return err
			}
			rh, err := t.readNode(right(idx))
			if err != nil {
				return err
			}
			nh, err := combine(lh, rh)
			if err != nil {
				return err
			}
			if err := t.writeNode(idx, nh); err != nil {
				return err
			}
		}
	}
	return nil
}

// UpdateBlock recomputes the leaf for block b from file-data, stores
// it, then walks ancestors up to the root, recombining each with its
// stored sibling.
func (t *Tree) UpdateBlock(b int) error {
	h, err := t.leafHash(b)
	if err != nil {
		return err
	}

	idx := t.geom.LeafIndex(b)
	if err := t.writeNode(idx, h); err != nil {
		return err
	}

	for level := t.geom.Height; level > 0; level-- {
		p := parent(idx)

		var sibling [HashSize]byte
		var nh [HashSize]byte
		if idx%2 == 1 {
			// idx is the left child: sibling is the right child.
			sibling, err = t.readNode(right(p))
			if err != nil {
				return err
			}
			nh, err = combine(h, sibling)
		} else {
			// idx is the right child: sibling is the left child.
			sibling, err = t.readNode(left(p))
			if err != nil {
				return err
			}
			nh, err = combine(sibling, h)
		}
		if err != nil {
			return err
		}

		if err := t.writeNode(p, nh); err != nil {
			return err
		}

		h = nh
		idx = p
	}
	return nil
}

// UpdateRange applies a simple cost heuristic: update only the blocks
// touched by [offset, offset+changedBytes) when that is cheaper than a
// full rebuild, otherwise rebuild everything. This bounds worst-case
// wall time at O(TotalNodes) while keeping small edits cheap.
func (t *Tree) UpdateRange(offset, changedBytes int64) error {
	first, last := BlockRange(offset, changedBytes)
	blocks := last - first + 1

	updateCost := (t.geom.Height + 1) * blocks
	fullRebuildCost := t.geom.TotalNodes

	if updateCost < fullRebuildCost {
		for b := first; b <= last; b++ {
			if err := t.UpdateBlock(b); err != nil {
				return err
			}
		}
		return nil
	}
	return t.RebuildAll()
}

// VerifyRange checks that every block touched by [offset, offset+count)
// is consistent with its stored leaf hash, and that every ancestor up
// to the root recomputes to its stored value. It returns false (not an
// error) on the first mismatch found; errors are reserved for host I/O
// failures.
func (t *Tree) VerifyRange(offset, count int64) (bool, error) {
	first, last := BlockRange(offset, count)

	for b := first; b <= last; b++ {
		computed, err := t.leafHash(b)
		if err != nil {
			return false, err
		}

		idx := t.geom.LeafIndex(b)
		stored, err := t.readNode(idx)
		if err != nil {
			return false, err
		}
		if computed != stored {
			return false, nil
		}

		current := stored
		for level := t.geom.Height; level > 0; level-- {
			p := parent(idx)

			var sibling [HashSize]byte
			var recomputed [HashSize]byte
			if idx%2 == 1 {
				sibling, err = t.readNode(right(p))
				if err != nil {
					return false, err
				}
				recomputed, err = combine(current, sibling)
			} else {
				sibling, err = t.readNode(left(p))
				if err != nil {
					return false, err
				}
				recomputed, err = combine(sibling, current)
			}
			if err != nil {
				return false, err
			}

			storedParent, err := t.readNode(p)
			if err != nil {
				return false, err
			}
			if recomputed != storedParent {
				return false, nil
			}

			current = storedParent
			idx = p
		}
	}
	return true, nil
}
