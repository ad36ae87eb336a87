package filestore

// Delete clears the directory entry for name. File-data bytes are not
// zeroed and the hash tree is not touched — correct because reads
// always go through the directory; a caller that scanned file-data
// directly would see stale hashes over the freed range, which is
// by-design rather than a bug.
func (s *Store) Delete(name string) error {
	e, found, err := s.dir.Locate(name)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return s.dir.ClearEntry(e.Slot)
}
