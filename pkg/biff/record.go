// Package biff splits table streams into tagged records.
//
// A record is a 4-byte little-endian length, a 4-byte ASCII tag and
// length-4 bytes of payload. A level ends at an ENDB tag (or an all-zero
// tag). Some tags open a nested level that runs until its own ENDB; others
// are "streamed": their payload is preceded by a second length and is left
// for the handler to read directly from the stream.
package biff

import (
	"fmt"
	"math"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/vpxkit/internal/buf"
	"github.com/joshuapare/vpxkit/pkg/types"
)

// Tag is a four character record code.
type Tag [4]byte

// T converts a four character string to a Tag. Shorter strings are padded
// with zero bytes.
func T(s string) Tag {
	var t Tag
	copy(t[:], s)
	return t
}

// EndTag closes the current level.
var EndTag = T("ENDB")

func (t Tag) String() string {
	if t == (Tag{}) {
		return "<end>"
	}
	return string(t[:])
}

func (t Tag) isEnd() bool { return t == EndTag || t == (Tag{}) }

// Record is one decoded record. Data aliases the stream window and is only
// valid for the duration of the handler call.
type Record struct {
	Tag Tag
	// Data is the payload. It is empty for streamed tags.
	Data []byte
	// Offset is the stream offset of the payload (for streamed tags, of the
	// secondary length).
	Offset int64
	// Len is the logical payload length.
	Len int
}

func (r Record) short(want int) error {
	return types.Errorf(types.ErrKindCorrupt, "biff: %s at %d: payload %d bytes, need %d", r.Tag, r.Offset, len(r.Data), want)
}

// Int32 decodes the payload as a little-endian int32.
func (r Record) Int32() (int32, error) {
	if len(r.Data) < 4 {
		return 0, r.short(4)
	}
	return buf.I32LE(r.Data), nil
}

// Uint32 decodes the payload as a little-endian uint32.
func (r Record) Uint32() (uint32, error) {
	if len(r.Data) < 4 {
		return 0, r.short(4)
	}
	return buf.U32LE(r.Data), nil
}

// Float32 decodes the payload as a little-endian IEEE float.
func (r Record) Float32() (float32, error) {
	if len(r.Data) < 4 {
		return 0, r.short(4)
	}
	return buf.F32LE(r.Data), nil
}

// Bool decodes a 4-byte boolean; any non-zero value is true.
func (r Record) Bool() (bool, error) {
	v, err := r.Uint32()
	return v != 0, err
}

// Color decodes a packed 0x00BBGGRR value.
func (r Record) Color() (red, green, blue uint8, err error) {
	v, err := r.Uint32()
	if err != nil {
		return 0, 0, 0, err
	}
	return uint8(v), uint8(v >> 8), uint8(v >> 16), nil
}

// Vec2 decodes two consecutive floats.
func (r Record) Vec2() (x, y float32, err error) {
	if len(r.Data) < 8 {
		return 0, 0, r.short(8)
	}
	return buf.F32LE(r.Data), buf.F32LE(r.Data[4:]), nil
}

// Bytes returns a copy of the payload.
func (r Record) Bytes() []byte {
	return append([]byte(nil), r.Data...)
}

// String decodes a length-prefixed single byte string (Windows-1252).
func (r Record) String() (string, error) {
	raw, err := r.prefixed(1)
	if err != nil {
		return "", err
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", types.Wrap(types.ErrKindCorrupt, fmt.Sprintf("biff: %s string", r.Tag), err)
	}
	return string(s), nil
}

// WideString decodes a length-prefixed UTF-16LE string. The prefix counts
// bytes.
func (r Record) WideString() (string, error) {
	raw, err := r.prefixed(2)
	if err != nil {
		return "", err
	}
	s, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "", types.Wrap(types.ErrKindCorrupt, fmt.Sprintf("biff: %s wide string", r.Tag), err)
	}
	return string(s), nil
}

func (r Record) prefixed(unit int) ([]byte, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if n > math.MaxInt32 || int(n)%unit != 0 {
		return nil, types.Errorf(types.ErrKindCorrupt, "biff: %s: bad string length %d", r.Tag, n)
	}
	s, ok := buf.Slice(r.Data, 4, int(n))
	if !ok {
		return nil, r.short(4 + int(n))
	}
	return s, nil
}
