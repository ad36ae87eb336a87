package filestore

import (
	"github.com/scigolib/filestore/internal/directory"
	"github.com/scigolib/filestore/internal/utils"
)

// Resize changes name's length in place when possible, and by
// relocate-via-repack when the current slot has no room to grow.
func (s *Store) Resize(name string, newLength int64) error {
	e, found, err := s.dir.Locate(name)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	oldLength := int64(e.Length)

	free, err := s.alloc.TotalFree()
	if err != nil {
		return err
	}
	if free+oldLength < newLength {
		return ErrNoSpace
	}

	switch {
	case newLength == oldLength:
		return nil
	case newLength < oldLength:
		return s.shrink(e, oldLength, newLength)
	default:
		return s.grow(e, oldLength, newLength)
	}
}

func (s *Store) shrink(e directory.Entry, oldLength, newLength int64) error {
	if err := s.dir.WriteLength(e.Slot, uint32(newLength)); err != nil {
		return err
	}
	freedOffset := int64(e.Offset) + newLength
	freedLength := oldLength - newLength
	return s.tree.UpdateRange(freedOffset, freedLength)
}

func (s *Store) grow(e directory.Entry, oldLength, newLength int64) error {
	growth := newLength - oldLength

	nextOffset, err := s.alloc.NextEntryOffset(e)
	if err != nil {
		return err
	}

	// Extend in place when the grown footprint still fits before the
	// next live entry (or the end of file-data). Relocation happens only
	// when the grown end strictly exceeds nextOffset, so growth that ends
	// exactly at the next entry stays in place (unlike Allocate, which
	// rejects a gap of exactly the requested size).
	if int64(e.Offset)+newLength <= nextOffset {
		if err := zeroFill(s.fileData, int64(e.Offset)+oldLength, growth); err != nil {
			return err
		}
		if err := s.dir.WriteLength(e.Slot, uint32(newLength)); err != nil {
			return err
		}
		return s.tree.UpdateRange(int64(e.Offset)+oldLength, growth)
	}

	return s.relocateAndGrow(e, oldLength, newLength)
}

// relocateAndGrow saves the entry's current bytes, deletes it, repacks
// the rest of the store, then reallocates the new, larger footprint at
// the post-repack cursor.
func (s *Store) relocateAndGrow(e directory.Entry, oldLength, newLength int64) error {
	saved := utils.GetBuffer(int(oldLength))
	defer utils.ReleaseBuffer(saved)

	if _, err := s.fileData.ReadAt(saved, int64(e.Offset)); err != nil {
		return utils.WrapError("reading entry bytes before relocate", err)
	}

	if err := s.dir.ClearEntry(e.Slot); err != nil {
		return err
	}

	cursor, err := s.alloc.Repack()
	if err != nil {
		return err
	}

	if s.fileDataSize-cursor < newLength {
		return ErrNoSpace
	}

	slot, foundSlot, err := s.dir.FindFreeSlot()
	if err != nil {
		return err
	}
	if !foundSlot {
		return ErrNoSpace
	}

	if _, err := s.fileData.WriteAt(saved, cursor); err != nil {
		return utils.WrapError("writing relocated entry bytes", err)
	}
	if err := zeroFill(s.fileData, cursor+oldLength, newLength-oldLength); err != nil {
		return err
	}

	if err := s.dir.WriteEntry(slot, e.Name, uint32(cursor), uint32(newLength)); err != nil {
		return err
	}

	return s.tree.UpdateRange(cursor, newLength)
}
