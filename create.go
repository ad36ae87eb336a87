package filestore

import (
	"errors"
	"fmt"

	"github.com/scigolib/filestore/internal/alloc"
	"github.com/scigolib/filestore/internal/directory"
	"github.com/scigolib/filestore/internal/utils"
)

// Create allocates space in the file-data region, zero-fills it,
// writes a new directory entry, and brings the hash tree up to date.
// Returns ErrExists if name already has a live entry, or ErrNoSpace if
// no gap — including the one exposed by a repack — is large enough.
func (s *Store) Create(name string, length int64) error {
	if len(name) == 0 || len(name) > directory.NameSize {
		return fmt.Errorf("%w: name must be 1..%d bytes", ErrRangeInvalid, directory.NameSize)
	}

	_, found, err := s.dir.Locate(name)
	if err != nil {
		return err
	}
	if found {
		return ErrExists
	}

	if length > 0 {
		if err := utils.ValidateBufferSize(uint64(length), uint64(s.fileDataSize), "requested file length"); err != nil {
			return ErrNoSpace
		}
	}

	free, err := s.alloc.TotalFree()
	if err != nil {
		return err
	}
	if free < length {
		return ErrNoSpace
	}

	offset, _, err := s.alloc.Allocate(length)
	if err != nil {
		if errors.Is(err, alloc.ErrNoSpace) {
			return ErrNoSpace
		}
		return err
	}

	if err := zeroFill(s.fileData, offset, length); err != nil {
		return err
	}

	slot, found, err := s.dir.FindFreeSlot()
	if err != nil {
		return err
	}
	if !found {
		return ErrNoSpace
	}

	if err := s.dir.WriteEntry(slot, name, uint32(offset), uint32(length)); err != nil {
		return err
	}

	return s.tree.UpdateRange(offset, length)
}
