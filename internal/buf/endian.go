// Package buf contains bounds-checked little-endian decoding helpers shared by
// the container and record decoders.
package buf

import (
	"encoding/binary"
	"math"
)

// U16LE reads a little-endian uint16 from b. Returns 0 when b is too short.
func U16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// I32LE reads a little-endian int32 from b. Returns 0 when b is too short.
//
// Sector ids are signed on disk: the chain sentinels live in the negative range.
func I32LE(b []byte) int32 {
	if len(b) < 4 {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// F32LE reads a little-endian IEEE-754 float32 from b. Returns 0 when b is too short.
func F32LE(b []byte) float32 {
	if len(b) < 4 {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// I32sLE decodes len(b)/4 consecutive little-endian int32 values into dst and
// returns the extended slice. Trailing bytes that do not form a full value are
// ignored.
func I32sLE(dst []int32, b []byte) []int32 {
	for len(b) >= 4 {
		dst = append(dst, int32(binary.LittleEndian.Uint32(b)))
		b = b[4:]
	}
	return dst
}
