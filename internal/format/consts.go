// Package format houses low-level decoders for the compound document
// (OLE2 / CFB) container layout. The goal is to keep the parsing focused,
// allocation-light, and independent from the public API so higher-level
// packages can orchestrate the data in a more ergonomic form.
package format

// Signature is the eight-byte magic at the start of every compound document.
//
//	0x00  D0 CF 11 E0 A1 B1 1A E1
var Signature = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}

const (
	// HeaderSize is the size of the fixed preamble. The first sector of the
	// file is reserved for it even when sectors are larger than 512 bytes.
	HeaderSize = 512

	// DirEntrySize is the size of one directory record.
	DirEntrySize = 128

	// MasterHeadEntries is the number of master-table slots stored in the
	// header itself.
	MasterHeadEntries = 109

	// SectorIDSize is the width of one allocation-table slot.
	SectorIDSize = 4
)

// Header field offsets.
const (
	HeaderSignatureOffset   = 0x00 // [8]byte
	HeaderSignatureSize     = 8
	HeaderSectorShiftOffset = 0x1E // uint16, sector size = 1 << v
	HeaderShortShiftOffset  = 0x20 // uint16, short sector size = 1 << v
	HeaderFATCountOffset    = 0x2C // uint32, sectors holding the allocation table
	HeaderDirStartOffset    = 0x30 // int32, first directory sector
	HeaderThresholdOffset   = 0x38 // uint32, streams below this size are short streams
	HeaderShortFATStart     = 0x3C // int32, first short allocation table sector
	HeaderShortFATCount     = 0x40 // uint32
	HeaderMasterStartOffset = 0x44 // int32, first master table sector
	HeaderMasterCountOffset = 0x48 // uint32
	HeaderMasterHeadOffset  = 0x4C // [109]int32
)

// Sector shift limits. Sectors must hold at least one directory entry; short
// sectors must be at least 16 bytes and never larger than a sector.
const (
	MinSectorShift      = 7
	MaxSectorShift      = 16
	MinShortSectorShift = 4
)

// Directory entry field offsets.
const (
	DirNameOffset      = 0x00 // [64]byte UTF-16LE
	DirNameMaxSize     = 64
	DirNameLenOffset   = 0x40 // uint16, bytes including the trailing NUL
	DirKindOffset      = 0x42 // uint8
	DirColorOffset     = 0x43 // uint8
	DirLeftOffset      = 0x44 // int32
	DirRightOffset     = 0x48 // int32
	DirChildOffset     = 0x4C // int32
	DirStartOffset     = 0x74 // int32
	DirSizeOffset      = 0x78 // uint32
	DirUTF16CharSize   = 2
	DirTrailingNULSize = 2
)

// Sector id sentinels. Valid sector ids are non-negative.
const (
	FreeSect      int32 = -1 // 0xFFFFFFFF
	EndOfChain    int32 = -2 // 0xFFFFFFFE
	FATSect       int32 = -3 // 0xFFFFFFFD
	MasterSect    int32 = -4 // 0xFFFFFFFC
	MaxRegularSec int32 = -6 // 0xFFFFFFFA, ids at or above this (as unsigned) are reserved
)

// NoStream marks an absent sibling or child link in a directory entry.
const NoStream int32 = -1

// Kind is the object type stored in a directory entry.
type Kind uint8

const (
	KindEmpty   Kind = 0
	KindStorage Kind = 1
	KindStream  Kind = 2
	KindRoot    Kind = 5
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindStorage:
		return "storage"
	case KindStream:
		return "stream"
	case KindRoot:
		return "root"
	default:
		return "unknown"
	}
}
