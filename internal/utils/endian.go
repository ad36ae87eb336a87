package utils

import "encoding/binary"

// ReadUint32 reads a 32-bit value at the specified offset.
func ReadUint32(r ReaderAt, offset int64, order binary.ByteOrder) (uint32, error) {
	buf := GetBuffer(4)
	defer ReleaseBuffer(buf)

	if _, err := r.ReadAt(buf, offset); err != nil {
		return 0, err
	}
	return order.Uint32(buf), nil
}

// WriteUint32 writes a 32-bit value at the specified offset.
func WriteUint32(w WriterAt, offset int64, value uint32, order binary.ByteOrder) error {
	buf := GetBuffer(4)
	defer ReleaseBuffer(buf)

	order.PutUint32(buf, value)
	_, err := w.WriteAt(buf, offset)
	return err
}

// ReaderAt is a simplified interface for io.ReaderAt.
type ReaderAt interface {
	ReadAt(p []byte, off int64) (n int, err error)
}

// WriterAt is a simplified interface for io.WriterAt.
type WriterAt interface {
	WriteAt(p []byte, off int64) (n int, err error)
}

// ReadWriterAt composes ReaderAt and WriterAt, the access pattern every
// backing-file region needs: random-access byte windows, never a
// sequential stream.
type ReadWriterAt interface {
	ReaderAt
	WriterAt
}
