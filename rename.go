package filestore

import (
	"fmt"

	"github.com/scigolib/filestore/internal/directory"
)

// Rename overwrites the name field of old's slot with new, leaving its
// offset/length untouched. Fails if new exceeds the 64-byte name
// field, new already has a live entry, or old has none.
func (s *Store) Rename(oldName, newName string) error {
	if len(newName) > directory.NameSize {
		return fmt.Errorf("%w: name must be at most %d bytes", ErrRangeInvalid, directory.NameSize)
	}

	_, existsNew, err := s.dir.Locate(newName)
	if err != nil {
		return err
	}
	if existsNew {
		return ErrExists
	}

	old, foundOld, err := s.dir.Locate(oldName)
	if err != nil {
		return err
	}
	if !foundOld {
		return ErrNotFound
	}

	return s.dir.WriteName(old.Slot, newName)
}
