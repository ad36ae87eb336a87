package filestore

import "github.com/scigolib/filestore/internal/utils"

// Write writes count bytes from buf at offset, resizing name on demand
// when the write extends past its current length. Resize
// can relocate the entry, so the destination offset is always
// recomputed from the directory after any resize.
func (s *Store) Write(name string, offset, count int64, buf []byte) error {
	e, found, err := s.dir.Locate(name)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	if offset < 0 || count < 0 {
		return ErrRangeInvalid
	}
	if int64(len(buf)) < count {
		return ErrRangeInvalid
	}
	if offset > int64(e.Length) {
		return ErrRangeInvalid
	}

	neededU64, err := utils.SafeAdd(uint64(offset), uint64(count))
	if err != nil {
		return ErrRangeInvalid
	}
	needed := int64(neededU64)
	if needed > int64(e.Length) {
		if err := s.Resize(name, needed); err != nil {
			return err
		}
		e, found, err = s.dir.Locate(name)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
	}

	if count == 0 {
		return nil
	}

	if _, err := s.fileData.WriteAt(buf[:count], int64(e.Offset)+offset); err != nil {
		return utils.WrapError("writing file-data bytes", err)
	}

	return s.tree.UpdateRange(int64(e.Offset)+offset, count)
}
