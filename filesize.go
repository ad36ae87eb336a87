package filestore

// FileSize returns the current length of name. The -1 alongside
// ErrNotFound mirrors the original interface's sentinel-length
// convention for callers bridging from that style.
func (s *Store) FileSize(name string) (int64, error) {
	e, found, err := s.dir.Locate(name)
	if err != nil {
		return -1, err
	}
	if !found {
		return -1, ErrNotFound
	}
	return int64(e.Length), nil
}
