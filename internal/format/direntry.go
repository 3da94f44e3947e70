package format

import (
	"fmt"

	"github.com/joshuapare/vpxkit/internal/buf"
	"golang.org/x/text/encoding/unicode"
)

// DirEntry is one 128-byte directory record.
//
//	Offset  Size  Field
//	0x00    64    Name (UTF-16LE, NUL terminated)
//	0x40    2     Name length in bytes, including the NUL
//	0x42    1     Kind (0 empty, 1 storage, 2 stream, 5 root)
//	0x43    1     Red/black colour (kept, never used for lookups)
//	0x44    4     Left sibling (-1 = none)
//	0x48    4     Right sibling (-1 = none)
//	0x4C    4     First child (-1 = none)
//	0x74    4     Start sector
//	0x78    4     Stream size
type DirEntry struct {
	Name        string
	Kind        Kind
	Color       uint8
	Left        int32
	Right       int32
	Child       int32
	StartSector int32
	Size        uint32
}

// IsStorage reports whether the entry can hold children.
func (e DirEntry) IsStorage() bool { return e.Kind == KindStorage || e.Kind == KindRoot }

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeDirEntry decodes a single directory record. Empty entries decode
// without looking at the name.
func DecodeDirEntry(b []byte) (DirEntry, error) {
	if len(b) < DirEntrySize {
		return DirEntry{}, fmt.Errorf("dir entry: %w (have %d, need %d)", ErrTruncated, len(b), DirEntrySize)
	}
	e := DirEntry{
		Kind:        Kind(b[DirKindOffset]),
		Color:       b[DirColorOffset],
		Left:        buf.I32LE(b[DirLeftOffset:]),
		Right:       buf.I32LE(b[DirRightOffset:]),
		Child:       buf.I32LE(b[DirChildOffset:]),
		StartSector: buf.I32LE(b[DirStartOffset:]),
		Size:        buf.U32LE(b[DirSizeOffset:]),
	}
	if e.Kind == KindEmpty {
		return e, nil
	}
	name, err := DecodeName(b[DirNameOffset:DirNameOffset+DirNameMaxSize], int(buf.U16LE(b[DirNameLenOffset:])))
	if err != nil {
		return DirEntry{}, err
	}
	e.Name = name
	return e, nil
}

// DecodeName converts the UTF-16LE name field to UTF-8. nameLen is the stored
// byte length including the trailing NUL.
func DecodeName(raw []byte, nameLen int) (string, error) {
	if nameLen < 0 || nameLen > len(raw) || nameLen%DirUTF16CharSize != 0 {
		return "", fmt.Errorf("%w: length %d", ErrBadName, nameLen)
	}
	n := nameLen
	if n >= DirTrailingNULSize && raw[n-1] == 0 && raw[n-2] == 0 {
		n -= DirTrailingNULSize
	}
	if n == 0 {
		return "", nil
	}
	out, err := utf16le.NewDecoder().Bytes(raw[:n])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadName, err)
	}
	return string(out), nil
}
