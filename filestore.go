// Package filestore implements a small persistent file store built on
// three fixed-size backing files: a file-data region holding the raw
// bytes of every stored file, a directory table of name/offset/length
// entries, and a hash region holding a Merkle tree over the file-data
// blocks. Every read is verified against the stored tree before it
// returns bytes to the caller.
package filestore

import (
	"os"

	"github.com/scigolib/filestore/internal/alloc"
	"github.com/scigolib/filestore/internal/directory"
	"github.com/scigolib/filestore/internal/hashtree"
	"github.com/scigolib/filestore/internal/utils"
)

// Store is an opaque handle over the three backing files. It owns
// them exclusively for its lifetime: concurrent invocations on the
// same handle are undefined, and all three files are held
// open from Open to Close rather than reopened per call.
type Store struct {
	fileDataPath  string
	directoryPath string
	hashPath      string

	fileData  *os.File
	directory *os.File
	hashFile  *os.File

	fileDataSize  int64
	directorySize int64

	geom hashtree.Geometry
	tree *hashtree.Tree
	dir  *directory.Index
	alloc *alloc.Allocator

	closed bool
}

// Open opens the three backing files, measures their sizes, and
// derives hash-tree geometry from the file-data size.
//
// numProcessors is accepted for interface compatibility with the
// original specification but unused: the update/rebuild cost
// heuristic in the hash tree engine already bounds worst-case work,
// obviating parallel hashing.
func Open(fileDataPath, directoryPath, hashPath string, numProcessors int) (*Store, error) {
	_ = numProcessors

	fd, err := os.OpenFile(fileDataPath, os.O_RDWR, 0)
	if err != nil {
		return nil, utils.WrapError("opening file-data region", err)
	}

	dt, err := os.OpenFile(directoryPath, os.O_RDWR, 0)
	if err != nil {
		_ = fd.Close()
		return nil, utils.WrapError("opening directory table", err)
	}

	hs, err := os.OpenFile(hashPath, os.O_RDWR, 0)
	if err != nil {
		_ = fd.Close()
		_ = dt.Close()
		return nil, utils.WrapError("opening hash region", err)
	}

	s := &Store{
		fileDataPath:  fileDataPath,
		directoryPath: directoryPath,
		hashPath:      hashPath,
		fileData:      fd,
		directory:     dt,
		hashFile:      hs,
	}

	if err := s.init(); err != nil {
		_ = fd.Close()
		_ = dt.Close()
		_ = hs.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) init() error {
	fdInfo, err := s.fileData.Stat()
	if err != nil {
		return utils.WrapError("stat file-data region", err)
	}
	dtInfo, err := s.directory.Stat()
	if err != nil {
		return utils.WrapError("stat directory table", err)
	}
	hsInfo, err := s.hashFile.Stat()
	if err != nil {
		return utils.WrapError("stat hash region", err)
	}

	s.fileDataSize = fdInfo.Size()
	s.directorySize = dtInfo.Size()

	geom, err := hashtree.NewGeometry(s.fileDataSize)
	if err != nil {
		return err
	}

	wantHashSizeU64, err := utils.SafeMultiply(uint64(hashtree.HashSize), uint64(geom.TotalNodes))
	if err != nil {
		return utils.WrapError("computing expected hash region size", err)
	}
	wantHashSize := int64(wantHashSizeU64)
	if hsInfo.Size() != wantHashSize {
		return utils.WrapError("validating hash region size",
			errSizeMismatch(hsInfo.Size(), wantHashSize))
	}

	dirIdx, err := directory.New(s.directory, s.directorySize)
	if err != nil {
		return err
	}

	tree := hashtree.New(s.hashFile, s.fileData, geom)

	s.geom = geom
	s.tree = tree
	s.dir = dirIdx
	s.alloc = alloc.New(s.fileData, s.fileDataSize, dirIdx, tree)
	return nil
}

// Close releases the handle. It is safe to call Close multiple times.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err1 := s.fileData.Close()
	err2 := s.directory.Close()
	err3 := s.hashFile.Close()

	switch {
	case err1 != nil:
		return utils.WrapError("closing file-data region", err1)
	case err2 != nil:
		return utils.WrapError("closing directory table", err2)
	case err3 != nil:
		return utils.WrapError("closing hash region", err3)
	default:
		return nil
	}
}
