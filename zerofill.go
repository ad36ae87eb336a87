package filestore

import "github.com/scigolib/filestore/internal/utils"

// zeroFillChunk bounds how much zero buffer we materialize for one
// WriteAt call when zero-filling a large span.
const zeroFillChunk = 64 * 1024

// zeroFill writes length zero bytes starting at offset, in bounded
// chunks so a single large create/resize doesn't allocate the whole
// span at once.
func zeroFill(w utils.WriterAt, offset, length int64) error {
	remaining := length
	at := offset

	chunkSize := int64(zeroFillChunk)
	if remaining < chunkSize {
		chunkSize = remaining
	}
	zero := make([]byte, chunkSize)

	for remaining > 0 {
		n := chunkSize
		if n > remaining {
			n = remaining
		}
		if _, err := w.WriteAt(zero[:n], at); err != nil {
			return utils.WrapError("zero-filling file-data", err)
		}
		at += n
		remaining -= n
	}
	return nil
}
