// Package directory scans and mutates the fixed-size directory table:
// a sequence of 72-byte entries of name/offset/length, with no
// in-memory cache — every operation reads fresh bytes from the
// backing store.
package directory

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/scigolib/filestore/internal/utils"
)

const (
	// EntrySize is the width, in bytes, of one directory slot.
	EntrySize = 72
	// NameSize is the width of the filename field within a slot.
	NameSize = 64
)

var byteOrder = binary.LittleEndian

// Entry is one live directory slot.
type Entry struct {
	Slot   int
	Name   string
	Offset uint32
	Length uint32
}

// Index wraps the directory backing store for scan/mutate access.
type Index struct {
	store utils.ReadWriterAt
	slots int
}

// New builds an Index over size bytes of directory storage.
func New(store utils.ReadWriterAt, size int64) (*Index, error) {
	if size < 0 || size%EntrySize != 0 {
		return nil, fmt.Errorf("directory: size %d is not a multiple of entry size %d", size, EntrySize)
	}
	return &Index{store: store, slots: int(size / EntrySize)}, nil
}

// NumSlots returns the total number of directory slots.
func (idx *Index) NumSlots() int {
	return idx.slots
}

func (idx *Index) readName(slot int) ([NameSize]byte, error) {
	var raw [NameSize]byte
	if _, err := idx.store.ReadAt(raw[:], int64(slot)*EntrySize); err != nil {
		return raw, utils.WrapError("reading directory name field", err)
	}
	return raw, nil
}

func (idx *Index) readOffsetLength(slot int) (uint32, uint32, error) {
	base := int64(slot)*EntrySize + NameSize
	offset, err := utils.ReadUint32(idx.store, base, byteOrder)
	if err != nil {
		return 0, 0, utils.WrapError("reading directory offset field", err)
	}
	length, err := utils.ReadUint32(idx.store, base+4, byteOrder)
	if err != nil {
		return 0, 0, utils.WrapError("reading directory length field", err)
	}
	return offset, length, nil
}

func isEmpty(raw [NameSize]byte) bool {
	return raw[0] == 0
}

// nameString trims a NUL-padded name field the way strcmp does:
// comparison (and the live string value) stops at the first NUL.
func nameString(raw [NameSize]byte) string {
	if end := bytes.IndexByte(raw[:], 0); end >= 0 {
		return string(raw[:end])
	}
	return string(raw[:])
}

// Locate scans slots 0..N-1 for an exact name match, honoring NUL
// termination the way the original C `strcmp` comparison did. Returns
// ok=false (not an error) when no live slot matches.
func (idx *Index) Locate(name string) (Entry, bool, error) {
	for slot := 0; slot < idx.slots; slot++ {
		raw, err := idx.readName(slot)
		if err != nil {
			return Entry{}, false, err
		}
		if isEmpty(raw) {
			continue
		}
		if nameString(raw) != name {
			continue
		}
		offset, length, err := idx.readOffsetLength(slot)
		if err != nil {
			return Entry{}, false, err
		}
		return Entry{Slot: slot, Name: name, Offset: offset, Length: length}, true, nil
	}
	return Entry{}, false, nil
}

// EnumerateLive returns every slot whose first name byte is non-NUL.
func (idx *Index) EnumerateLive() ([]Entry, error) {
	var entries []Entry
	for slot := 0; slot < idx.slots; slot++ {
		raw, err := idx.readName(slot)
		if err != nil {
			return nil, err
		}
		if isEmpty(raw) {
			continue
		}
		offset, length, err := idx.readOffsetLength(slot)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Slot: slot, Name: nameString(raw), Offset: offset, Length: length})
	}
	return entries, nil
}

// FindFreeSlot returns the lowest slot index whose name begins with
// NUL. ok is false when the directory is full.
func (idx *Index) FindFreeSlot() (int, bool, error) {
	for slot := 0; slot < idx.slots; slot++ {
		raw, err := idx.readName(slot)
		if err != nil {
			return 0, false, err
		}
		if isEmpty(raw) {
			return slot, true, nil
		}
	}
	return 0, false, nil
}

// WriteEntry writes the filename (NUL-padded to 64 bytes, no separate
// terminator when the name is exactly 64 bytes) and the offset/length
// fields of the given slot.
func (idx *Index) WriteEntry(slot int, name string, offset, length uint32) error {
	if len(name) > NameSize {
		return fmt.Errorf("directory: name %q exceeds %d bytes", name, NameSize)
	}

	var raw [NameSize]byte
	copy(raw[:], name)
	if _, err := idx.store.WriteAt(raw[:], int64(slot)*EntrySize); err != nil {
		return utils.WrapError("writing directory name field", err)
	}

	base := int64(slot)*EntrySize + NameSize
	if err := utils.WriteUint32(idx.store, base, offset, byteOrder); err != nil {
		return utils.WrapError("writing directory offset field", err)
	}
	if err := utils.WriteUint32(idx.store, base+4, length, byteOrder); err != nil {
		return utils.WrapError("writing directory length field", err)
	}
	return nil
}

// WriteName rewrites only the name field of a slot, leaving the
// offset/length fields untouched — the exact byte-level effect a
// rename needs.
func (idx *Index) WriteName(slot int, name string) error {
	if len(name) > NameSize {
		return fmt.Errorf("directory: name %q exceeds %d bytes", name, NameSize)
	}

	var raw [NameSize]byte
	copy(raw[:], name)
	if _, err := idx.store.WriteAt(raw[:], int64(slot)*EntrySize); err != nil {
		return utils.WrapError("writing directory name field", err)
	}
	return nil
}

// WriteLength rewrites only the length field of a slot.
func (idx *Index) WriteLength(slot int, length uint32) error {
	base := int64(slot)*EntrySize + NameSize + 4
	if err := utils.WriteUint32(idx.store, base, length, byteOrder); err != nil {
		return utils.WrapError("writing directory length field", err)
	}
	return nil
}

// ClearEntry zeros the name field of a slot. The offset/length fields
// are left as-is: they are ignored once the name is NUL-leading.
func (idx *Index) ClearEntry(slot int) error {
	var raw [NameSize]byte
	if _, err := idx.store.WriteAt(raw[:], int64(slot)*EntrySize); err != nil {
		return utils.WrapError("clearing directory entry", err)
	}
	return nil
}
