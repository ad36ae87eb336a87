package filestore

import "github.com/scigolib/filestore/internal/utils"

// Read verifies the requested byte range against the hash tree before
// copying file-data bytes into buf. Returns ErrIntegrity if the stored
// hashes don't match the bytes currently on disk, rather than silently
// returning corrupted data.
func (s *Store) Read(name string, offset, count int64, buf []byte) error {
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
	end, err := utils.SafeAdd(uint64(offset), uint64(count))
	if err != nil {
		return ErrRangeInvalid
	}
	if end > uint64(e.Length) {
		return ErrRangeInvalid
	}
	if int64(len(buf)) < count {
		return ErrRangeInvalid
	}
	if count == 0 {
		return nil
	}

	ok, err := s.tree.VerifyRange(int64(e.Offset)+offset, count)
	if err != nil {
		return err
	}
	if !ok {
		return ErrIntegrity
	}

	_, err = s.fileData.ReadAt(buf[:count], int64(e.Offset)+offset)
	return utils.WrapError("reading file-data bytes", err)
}
