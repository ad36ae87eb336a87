// Package alloc implements the free-space allocator and repack
// (compaction) routine over the file-data region.
package alloc

import (
	"errors"
	"sort"

	"github.com/scigolib/filestore/internal/directory"
	"github.com/scigolib/filestore/internal/hashtree"
	"github.com/scigolib/filestore/internal/utils"
)

// ErrNoSpace is returned by Allocate when no gap — including the
// gap exposed by a repack — is large enough for the request.
var ErrNoSpace = errors.New("alloc: out of space")

// Allocator finds free regions in the file-data region and compacts
// live entries into a contiguous prefix when first-fit fails. It
// keeps no allocation state of its own: free space is derived fresh
// from the directory on every call, the same no-caching discipline the
// directory itself follows.
type Allocator struct {
	fileData     utils.ReadWriterAt
	fileDataSize int64
	dir          *directory.Index
	tree         *hashtree.Tree
}

// New builds an Allocator over the given file-data region, directory,
// and hash tree. The hash tree is needed because Repack's final step
// is a full rebuild: after many blocks move, that's the cheapest
// correct response.
func New(fileData utils.ReadWriterAt, fileDataSize int64, dir *directory.Index, tree *hashtree.Tree) *Allocator {
	return &Allocator{fileData: fileData, fileDataSize: fileDataSize, dir: dir, tree: tree}
}

func sortedLive(dir *directory.Index) ([]directory.Entry, error) {
	entries, err := dir.EnumerateLive()
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Offset < entries[j].Offset })
	return entries, nil
}

// TotalFree returns size(file-data) - sum(live entry lengths): the
// feasibility bound checked before any write/resize mutates state.
func (a *Allocator) TotalFree() (int64, error) {
	entries, err := a.dir.EnumerateLive()
	if err != nil {
		return 0, err
	}
	var used int64
	for _, e := range entries {
		used += int64(e.Length)
	}
	return a.fileDataSize - used, nil
}

// NextEntryOffset returns the offset of the live entry with the
// smallest offset strictly greater than e's, or the size of file-data
// if e is the last live entry. Used by resize's in-place growth check.
func (a *Allocator) NextEntryOffset(e directory.Entry) (int64, error) {
	entries, err := sortedLive(a.dir)
	if err != nil {
		return 0, err
	}
	next := a.fileDataSize
	for _, o := range entries {
		if int64(o.Offset) > int64(e.Offset) && int64(o.Offset) < next {
			next = int64(o.Offset)
		}
	}
	return next, nil
}

// Allocate finds an offset with at least length+1 bytes of contiguous
// free space via first-fit, repacking once if no gap (including the
// trailing gap) fits. A gap of exactly length is never chosen — the
// strict inequality is part of the on-disk contract, not an incidental
// off-by-one.
func (a *Allocator) Allocate(length int64) (offset int64, didRepack bool, err error) {
	entries, err := sortedLive(a.dir)
	if err != nil {
		return 0, false, err
	}

	next := int64(0)
	for _, e := range entries {
		gap := int64(e.Offset) - next
		if gap > length {
			return next, false, nil
		}
		end := int64(e.Offset) + int64(e.Length)
		if end > next {
			next = end
		}
	}

	trailing := a.fileDataSize - next
	if trailing > length {
		return next, false, nil
	}

	cursor, err := a.Repack()
	if err != nil {
		return 0, false, err
	}
	if a.fileDataSize-cursor >= length+1 {
		return cursor, true, nil
	}
	return 0, false, ErrNoSpace
}

// Repack enumerates live entries in ascending offset order and slides
// each down to the first free byte, rewriting its directory offset as
// it moves. It returns the post-repack cursor (the first free byte),
// then rebuilds the entire hash tree, since a repack typically
// relocates many blocks at once and a full rebuild is the cheapest
// correct response.
func (a *Allocator) Repack() (int64, error) {
	entries, err := sortedLive(a.dir)
	if err != nil {
		return 0, err
	}

	next := int64(0)
	for _, e := range entries {
		if next < int64(e.Offset) {
			if err := a.moveBlock(int64(e.Offset), next, int64(e.Length)); err != nil {
				return 0, err
			}
			if err := a.dir.WriteEntry(e.Slot, e.Name, uint32(next), e.Length); err != nil {
				return 0, err
			}
		}
		next += int64(e.Length)
	}

	if err := a.tree.RebuildAll(); err != nil {
		return 0, err
	}
	return next, nil
}

func (a *Allocator) moveBlock(from, to, length int64) error {
	buf := utils.GetBuffer(int(length))
	defer utils.ReleaseBuffer(buf)

	if _, err := a.fileData.ReadAt(buf, from); err != nil {
		return utils.WrapError("reading file-data block during repack", err)
	}
	if _, err := a.fileData.WriteAt(buf, to); err != nil {
		return utils.WrapError("writing file-data block during repack", err)
	}
	return nil
}
