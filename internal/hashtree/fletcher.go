// Package hashtree owns the hash region: a complete binary tree of
// 16-byte Fletcher digests over the 256-byte blocks of the file-data
// region, kept consistent after every mutation.
package hashtree

import (
	"encoding/binary"
	"fmt"
)

// HashSize is the width, in bytes, of one tree node's digest.
const HashSize = 16

// fletcherModulus is 2^32 - 1, the modulus of each running sum.
const fletcherModulus = (1 << 32) - 1

// Sum128 computes a Fletcher-style 128-bit digest of buf: buf is read
// as little-endian 32-bit words, and four 64-bit accumulators chain
// sum-of-sums across the words, then are truncated to 32 bits each and
// concatenated little-endian.
//
// buf's length must be a multiple of 4. Callers in this package only
// ever pass 256-byte blocks or 32-byte node-concatenations, both of
// which satisfy this trivially.
func Sum128(buf []byte) ([HashSize]byte, error) {
	if len(buf)%4 != 0 {
		return [HashSize]byte{}, fmt.Errorf("hashtree: buffer length %d is not a multiple of 4", len(buf))
	}

	var a, b, c, d uint64
	for i := 0; i < len(buf); i += 4 {
		w := uint64(binary.LittleEndian.Uint32(buf[i : i+4]))
		a = (a + w) % fletcherModulus
		b = (b + a) % fletcherModulus
		c = (c + b) % fletcherModulus
		d = (d + c) % fletcherModulus
	}

	var out [HashSize]byte
	binary.LittleEndian.PutUint32(out[0:4], uint32(a))
	binary.LittleEndian.PutUint32(out[4:8], uint32(b))
	binary.LittleEndian.PutUint32(out[8:12], uint32(c))
	binary.LittleEndian.PutUint32(out[12:16], uint32(d))
	return out, nil
}
